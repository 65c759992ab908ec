package server

import (
	"image"
	"image/color"
	"net/url"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolParam(t *testing.T) {
	for _, s := range []string{"y", "yes", "1", "on"} {
		assert.True(t, boolParam(s), "%q should be true", s)
	}
	for _, s := range []string{"", "n", "no", "0", "off", "true", "YES", "On"} {
		assert.False(t, boolParam(s), "%q should be false", s)
	}
}

func TestParseTransformParams(t *testing.T) {
	q, err := url.ParseQuery("width=100&height=50&blur=1.5&sharpen=2&greyscale=yes&flip=1&flop=off")
	require.NoError(t, err)

	p := parseTransformParams(q)
	assert.Equal(t, 100, p.Width)
	assert.Equal(t, 50, p.Height)
	assert.Equal(t, 1.5, p.Blur)
	assert.Equal(t, 2.0, p.Sharpen)
	assert.True(t, p.Greyscale)
	assert.True(t, p.Flip)
	assert.False(t, p.Flop)
}

func TestParseTransformParams_BadValues(t *testing.T) {
	q, err := url.ParseQuery("width=abc&height=-10&blur=x")
	require.NoError(t, err)

	p := parseTransformParams(q)
	assert.Zero(t, p.Width)
	assert.Zero(t, p.Height)
	assert.Zero(t, p.Blur)
}

func TestApplyTransforms_ExactResize(t *testing.T) {
	src := imaging.New(80, 80, color.White)

	out := applyTransforms(src, transformParams{Width: 100, Height: 50})
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())
}

func TestApplyTransforms_WidthOnlyKeepsAspect(t *testing.T) {
	src := imaging.New(80, 40, color.White)

	out := applyTransforms(src, transformParams{Width: 100})
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())
}

func TestApplyTransforms_NoParamsIsIdentity(t *testing.T) {
	src := imaging.New(33, 44, color.White)

	out := applyTransforms(src, transformParams{})
	assert.Equal(t, image.Rect(0, 0, 33, 44), out.Bounds())
}

func TestApplyTransforms_FlipMovesPixels(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{255, 0, 0, 255})

	out := applyTransforms(src, transformParams{Flip: true})
	r, _, _, a := out.At(0, 1).RGBA()
	assert.NotZero(t, a)
	assert.NotZero(t, r, "red pixel should move to the bottom on vertical flip")
}

func TestApplyTransforms_Greyscale(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			src.Set(x, y, color.NRGBA{200, 10, 10, 255})
		}
	}

	out := applyTransforms(src, transformParams{Greyscale: true})
	r, g, b, _ := out.At(2, 2).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestFormatFromName(t *testing.T) {
	f, err := formatFromName("a.png")
	require.NoError(t, err)
	assert.Equal(t, imaging.PNG, f)

	f, err = formatFromName("B.JPG")
	require.NoError(t, err)
	assert.Equal(t, imaging.JPEG, f)

	_, err = formatFromName("a.gif")
	assert.Error(t, err)
}
