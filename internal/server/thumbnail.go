package server

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog/log"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

type thumbnailOptions struct {
	Width     int
	Height    int
	Border    int
	TextSize  int
	BgColor   string
	FgColor   string
	TextColor string
}

// Zero and unparseable values fall back to the defaults, matching the
// `+q || default` behavior of the original service.
func thumbnailOptionsFromQuery(q url.Values) thumbnailOptions {
	return thumbnailOptions{
		Width:     intParamDefault(q.Get("width"), 300),
		Height:    intParamDefault(q.Get("height"), 200),
		Border:    intParamDefault(q.Get("border"), 5),
		TextSize:  intParamDefault(q.Get("textsize"), 24),
		BgColor:   stringDefault(q.Get("bgcolor"), "#fcfcfc"),
		FgColor:   stringDefault(q.Get("fgcolor"), "#ddd"),
		TextColor: stringDefault(q.Get("textcolor"), "#aaa"),
	}
}

func (s *Server) handleThumbnail(format imaging.Format) gin.HandlerFunc {
	contentType := "image/png"
	if format == imaging.JPEG {
		contentType = "image/jpeg"
	}
	return func(c *gin.Context) {
		opts := thumbnailOptionsFromQuery(c.Request.URL.Query())
		img, err := renderThumbnail(opts)
		if err != nil {
			log.Warn().Err(err).Msg("thumbnail render failed")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Header("Content-Type", contentType)
		c.Status(http.StatusOK)
		if err := imaging.Encode(c.Writer, img, format); err != nil {
			log.Warn().Err(err).Msg("streaming thumbnail failed")
		}
	}
}

// renderThumbnail draws the placeholder: fgcolor frame, inset bgcolor panel,
// an X across the panel, a text band and the centered "W x H" label. The
// vector parts are rasterized from generated SVG; the label is drawn
// separately because the SVG rasterizer has no text support.
func renderThumbnail(o thumbnailOptions) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(thumbnailSVG(o)))
	if err != nil {
		return nil, fmt.Errorf("parse thumbnail svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(o.Width), float64(o.Height))

	dst := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	scanner := rasterx.NewScannerGV(o.Width, o.Height, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(o.Width, o.Height, scanner), 1.0)

	if err := drawLabel(dst, o); err != nil {
		return nil, err
	}
	return dst, nil
}

func thumbnailSVG(o thumbnailOptions) string {
	return fmt.Sprintf(`<svg width="%[1]d" height="%[2]d" xmlns="http://www.w3.org/2000/svg">
  <rect x="0" y="0" width="%[1]d" height="%[2]d" fill="%[4]s" />
  <rect x="%[3]d" y="%[3]d" width="%[6]d" height="%[7]d" fill="%[5]s" />
  <line x1="%[8]d" y1="%[8]d" x2="%[9]d" y2="%[10]d" stroke-width="%[3]d" stroke="%[4]s" />
  <line x1="%[9]d" y1="%[8]d" x2="%[8]d" y2="%[10]d" stroke-width="%[3]d" stroke="%[4]s" />
  <rect x="%[3]d" y="%[11]d" width="%[6]d" height="%[12]d" fill="%[5]s" />
</svg>`,
		o.Width, o.Height, o.Border, o.FgColor, o.BgColor,
		o.Width-o.Border*2, o.Height-o.Border*2,
		o.Border*2, o.Width-o.Border*2, o.Height-o.Border*2,
		(o.Height-o.TextSize)/2, o.TextSize)
}

func drawLabel(dst *image.RGBA, o thumbnailOptions) error {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse label font: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: float64(o.TextSize)})
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(parseHexColor(o.TextColor, color.NRGBA{0xaa, 0xaa, 0xaa, 0xff})),
		Face: face,
	}
	label := fmt.Sprintf("%d x %d", o.Width, o.Height)
	m := face.Metrics()
	d.Dot = fixed.Point26_6{
		X: (fixed.I(o.Width) - d.MeasureString(label)) / 2,
		Y: (fixed.I(o.Height) + m.Ascent - m.Descent) / 2,
	}
	d.DrawString(label)
	return nil
}

// parseHexColor reads #rgb and #rrggbb strings; anything else yields the
// fallback.
func parseHexColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		n, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b)
		if err != nil || n != 3 {
			return fallback
		}
		return color.NRGBA{r * 0x11, g * 0x11, b * 0x11, 0xff}
	case 6:
		n, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b)
		if err != nil || n != 3 {
			return fallback
		}
		return color.NRGBA{r, g, b, 0xff}
	}
	return fallback
}

func intParamDefault(s string, def int) int {
	if v := intParam(s); v > 0 {
		return v
	}
	return def
}

func stringDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
