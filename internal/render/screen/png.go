package screen

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"certportal/internal/render/layout"
)

type fontVariant struct {
	bold, italic bool
}

// fontSet holds the parsed Go fonts. Parsed fonts are read-only and shared;
// faces carry glyph caches and are created per paint.
type fontSet map[fontVariant]*truetype.Font

var loadFonts = sync.OnceValues(func() (fontSet, error) {
	sources := map[fontVariant][]byte{
		{}:                         goregular.TTF,
		{bold: true}:               gobold.TTF,
		{italic: true}:             goitalic.TTF,
		{bold: true, italic: true}: gobolditalic.TTF,
	}
	set := make(fontSet, len(sources))
	for variant, ttf := range sources {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font: %w", err)
		}
		set[variant] = f
	}
	return set, nil
})

type faceKey struct {
	variant fontVariant
	size    float64
}

// faceCache is scoped to one paint.
type faceCache struct {
	fonts fontSet
	faces map[faceKey]font.Face
}

func (c *faceCache) face(bold, italic bool, size float64) font.Face {
	key := faceKey{variant: fontVariant{bold: bold, italic: italic}, size: size}
	if f, ok := c.faces[key]; ok {
		return f
	}
	f := truetype.NewFace(c.fonts[key.variant], &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	c.faces[key] = f
	return f
}

// WritePNG rasterises the composition. The pending overlay is painted last
// so it hides everything beneath it.
func (r *Renderer) WritePNG(ctx context.Context, w io.Writer, comp *Composition) error {
	start := time.Now()
	fonts, err := loadFonts()
	if err != nil {
		return err
	}
	faces := &faceCache{fonts: fonts, faces: make(map[faceKey]font.Face)}

	dc := gg.NewContext(int(comp.Width), int(comp.Height))
	for _, e := range comp.Elements {
		paintElement(dc, faces, e)
	}
	if o := comp.Overlay; o != nil {
		dc.DrawRectangle(0, 0, o.W, o.H)
		dc.SetColor(rgba(o.Fill))
		dc.Fill()
		dc.SetColor(rgba(o.Ink))
		dc.SetFontFace(faces.face(true, false, 44))
		dc.DrawStringAnchored(o.Title, o.W/2, o.H/2, 0.5, 0)
		dc.SetFontFace(faces.face(false, false, 22))
		dc.DrawStringAnchored(o.Message, o.W/2, o.H/2+48, 0.5, 0)
	}

	if err := dc.EncodePNG(w); err != nil {
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "failed to encode certificate snapshot", "error", err)
		}
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if r.metrics != nil {
		r.metrics.ObserveRender("png", start)
	}
	return nil
}

func paintElement(dc *gg.Context, faces *faceCache, e Element) {
	switch e.Kind {
	case KindText:
		dc.SetFontFace(faces.face(e.Bold, e.Italic, e.FontSize))
		dc.SetColor(rgba(*e.Fill))
		dc.DrawStringAnchored(e.Text, e.X, e.Y, anchorX(e.Align), 0)
	case KindRect:
		dc.DrawRectangle(e.X, e.Y, e.W, e.H)
		fillAndStroke(dc, e)
	case KindCircle:
		dc.DrawCircle(e.X, e.Y, e.R)
		fillAndStroke(dc, e)
	case KindLine:
		dc.DrawLine(e.X, e.Y, e.X2, e.Y2)
		fillAndStroke(dc, e)
	}
}

func fillAndStroke(dc *gg.Context, e Element) {
	if e.Fill != nil && e.Kind != KindLine {
		dc.SetColor(rgba(*e.Fill))
		if e.Stroke != nil {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if e.Stroke != nil {
		dc.SetColor(rgba(*e.Stroke))
		dc.SetLineWidth(max(e.StrokeWidth, 1))
		dc.Stroke()
	}
	dc.ClearPath()
}

func anchorX(a layout.Align) float64 {
	switch a {
	case layout.AlignCenter:
		return 0.5
	case layout.AlignRight:
		return 1
	default:
		return 0
	}
}

func rgba(c layout.Color) color.Color {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
