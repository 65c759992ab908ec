package server

import (
	"bytes"
	"image"
	"image/color"
	"net/url"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThumbnailOptionsDefaults(t *testing.T) {
	opts := thumbnailOptionsFromQuery(url.Values{})
	assert.Equal(t, 300, opts.Width)
	assert.Equal(t, 200, opts.Height)
	assert.Equal(t, 5, opts.Border)
	assert.Equal(t, 24, opts.TextSize)
	assert.Equal(t, "#fcfcfc", opts.BgColor)
	assert.Equal(t, "#ddd", opts.FgColor)
	assert.Equal(t, "#aaa", opts.TextColor)
}

func TestThumbnailOptionsOverrides(t *testing.T) {
	q, err := url.ParseQuery("width=50&height=40&border=2&textsize=10&bgcolor=%23ffffff")
	require.NoError(t, err)

	opts := thumbnailOptionsFromQuery(q)
	assert.Equal(t, 50, opts.Width)
	assert.Equal(t, 40, opts.Height)
	assert.Equal(t, 2, opts.Border)
	assert.Equal(t, 10, opts.TextSize)
	assert.Equal(t, "#ffffff", opts.BgColor)
}

func TestThumbnailOptionsZeroFallsBack(t *testing.T) {
	q, err := url.ParseQuery("width=0&height=abc")
	require.NoError(t, err)

	opts := thumbnailOptionsFromQuery(q)
	assert.Equal(t, 300, opts.Width)
	assert.Equal(t, 200, opts.Height)
}

func TestRenderThumbnailSize(t *testing.T) {
	opts := thumbnailOptionsFromQuery(url.Values{"width": {"50"}, "height": {"40"}})

	img, err := renderThumbnail(opts)
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	// Must round-trip through the encoder it is served with.
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	decoded, _, err := image.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 50, decoded.Bounds().Dx())
	assert.Equal(t, 40, decoded.Bounds().Dy())
}

func TestRenderThumbnailUsesFrameColor(t *testing.T) {
	opts := thumbnailOptionsFromQuery(url.Values{
		"width": {"60"}, "height": {"60"}, "fgcolor": {"#ff0000"},
	})

	img, err := renderThumbnail(opts)
	require.NoError(t, err)

	// A corner pixel sits on the full-bleed frame rectangle.
	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Greater(t, r, uint32(0x8000))
	assert.Less(t, g, uint32(0x4000))
	assert.Less(t, b, uint32(0x4000))
}

func TestParseHexColor(t *testing.T) {
	fallback := color.NRGBA{1, 2, 3, 0xff}

	assert.Equal(t, color.NRGBA{0xdd, 0xdd, 0xdd, 0xff}, parseHexColor("#ddd", fallback))
	assert.Equal(t, color.NRGBA{0xfc, 0xfc, 0xfc, 0xff}, parseHexColor("#fcfcfc", fallback))
	assert.Equal(t, color.NRGBA{0xff, 0x00, 0x00, 0xff}, parseHexColor("#FF0000", fallback))
	assert.Equal(t, fallback, parseHexColor("red", fallback))
	assert.Equal(t, fallback, parseHexColor("", fallback))
	assert.Equal(t, fallback, parseHexColor("#zzz", fallback))
}
