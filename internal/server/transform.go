package server

import (
	"fmt"
	"image"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

type transformParams struct {
	Width     int
	Height    int
	Blur      float64
	Sharpen   float64
	Greyscale bool
	Flip      bool
	Flop      bool
}

func parseTransformParams(q url.Values) transformParams {
	return transformParams{
		Width:     intParam(q.Get("width")),
		Height:    intParam(q.Get("height")),
		Blur:      floatParam(q.Get("blur")),
		Sharpen:   floatParam(q.Get("sharpen")),
		Greyscale: boolParam(q.Get("greyscale")),
		Flip:      boolParam(q.Get("flip")),
		Flop:      boolParam(q.Get("flop")),
	}
}

// applyTransforms runs the filter chain in its fixed order, each step
// conditional and independent. Resize forces the exact target dimensions
// (distorting if needed) when both sides are positive; with one side zero
// the aspect ratio is preserved.
func applyTransforms(src image.Image, p transformParams) image.Image {
	out := src
	if p.Width > 0 || p.Height > 0 {
		out = imaging.Resize(out, p.Width, p.Height, imaging.Lanczos)
	}
	if p.Flip {
		out = imaging.FlipV(out)
	}
	if p.Flop {
		out = imaging.FlipH(out)
	}
	if p.Blur > 0 {
		out = imaging.Blur(out, p.Blur)
	}
	if p.Sharpen != 0 {
		out = imaging.Sharpen(out, p.Sharpen)
	}
	if p.Greyscale {
		out = imaging.Grayscale(out)
	}
	return out
}

func formatFromName(name string) (imaging.Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return imaging.PNG, nil
	case ".jpg":
		return imaging.JPEG, nil
	}
	return imaging.Format(-1), fmt.Errorf("unsupported image name %q", name)
}

// boolParam accepts exactly y/yes/1/on as true; anything else is false,
// never an error.
func boolParam(s string) bool {
	switch s {
	case "y", "yes", "1", "on":
		return true
	}
	return false
}

func intParam(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func floatParam(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
