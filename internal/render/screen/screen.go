// Package screen paints certificate layouts for the browser: an HTML page
// with an inline SVG and a PNG snapshot. Pending certificates are covered
// by an opaque overlay and cannot be exported.
package screen

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"certportal/internal/certificate/metrics"
	"certportal/internal/certificate/models"
	"certportal/internal/render/document"
	"certportal/internal/render/layout"
	id "certportal/pkg/domain"
	dErrors "certportal/pkg/domain-errors"
)

// PixelsPerMM is the preview scale.
const PixelsPerMM = 4.0

const (
	OverlayTitle   = "Awaiting approval"
	OverlayMessage = "This certificate becomes available once an administrator approves it."
)

type ElementKind string

const (
	KindText   ElementKind = "text"
	KindRect   ElementKind = "rect"
	KindCircle ElementKind = "circle"
	KindLine   ElementKind = "line"
)

// Element is one layout primitive scaled to pixels. Lines run from (X, Y)
// to (X2, Y2).
type Element struct {
	Kind        ElementKind
	Role        layout.Role
	X, Y        float64
	W, H, R     float64
	X2, Y2      float64
	Text        string
	FontSize    float64
	Bold        bool
	Italic      bool
	Align       layout.Align
	Fill        *layout.Color
	Stroke      *layout.Color
	StrokeWidth float64
}

func (e Element) IsText() bool   { return e.Kind == KindText }
func (e Element) IsRect() bool   { return e.Kind == KindRect }
func (e Element) IsCircle() bool { return e.Kind == KindCircle }
func (e Element) IsLine() bool   { return e.Kind == KindLine }

// Anchor is the SVG text-anchor value for the element's alignment.
func (e Element) Anchor() string {
	switch e.Align {
	case layout.AlignCenter:
		return "middle"
	case layout.AlignRight:
		return "end"
	default:
		return "start"
	}
}

func (e Element) FillCSS() string   { return cssColor(e.Fill) }
func (e Element) StrokeCSS() string { return cssColor(e.Stroke) }

func (e Element) FontWeight() string {
	if e.Bold {
		return "bold"
	}
	return "normal"
}

func (e Element) FontStyle() string {
	if e.Italic {
		return "italic"
	}
	return "normal"
}

// Overlay covers the whole composition while a certificate is pending.
type Overlay struct {
	W, H    float64
	Title   string
	Message string
	Fill    layout.Color
	Ink     layout.Color
}

// Export describes the export action. It is disabled unless approved.
type Export struct {
	Enabled  bool
	Href     string
	Filename string
}

// Composition is a scaled, paint-ready certificate.
type Composition struct {
	Width, Height float64
	Title         string
	DisplayID     string
	Elements      []Element
	Overlay       *Overlay
	Export        Export
}

// Texts returns the text contents of the layout elements in paint order.
// Overlay text is not part of the certificate and is excluded.
func (c *Composition) Texts() []string {
	var out []string
	for _, e := range c.Elements {
		if e.IsText() {
			out = append(out, e.Text)
		}
	}
	return out
}

// Renderer builds compositions and writes them as HTML or PNG. It holds no
// per-certificate state and is safe for concurrent use.
type Renderer struct {
	branding    layout.Branding
	exportRoute func(id.CertificateID) string
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

type Option func(*Renderer)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Renderer) {
		r.metrics = m
	}
}

// WithExportRoute overrides the link used by the export action.
func WithExportRoute(route func(id.CertificateID) string) Option {
	return func(r *Renderer) {
		r.exportRoute = route
	}
}

func New(branding layout.Branding, opts ...Option) *Renderer {
	r := &Renderer{
		branding: branding,
		exportRoute: func(certID id.CertificateID) string {
			return fmt.Sprintf("/certificates/%s/export", certID)
		},
		tracer: otel.Tracer("certportal/render"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compose lays out the certificate and scales every primitive, in order,
// into a screen element.
func (r *Renderer) Compose(ctx context.Context, view *models.CertificateView) (*Composition, error) {
	if view == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "certificate view is required")
	}
	_, span := r.tracer.Start(ctx, "screen.Compose", trace.WithAttributes(
		attribute.String("certificate_id", view.ID.String()),
		attribute.String("status", string(view.Status)),
	))
	defer span.End()

	doc := layout.Build(layout.FromView(view), r.branding)
	comp := &Composition{
		Width:     doc.Width * PixelsPerMM,
		Height:    doc.Height * PixelsPerMM,
		Title:     doc.Title,
		DisplayID: doc.DisplayID,
		Elements:  make([]Element, 0, len(doc.Primitives)),
	}
	for _, p := range doc.Primitives {
		comp.Elements = append(comp.Elements, scale(p))
	}

	if doc.Approved {
		comp.Export = Export{
			Enabled:  true,
			Href:     r.exportRoute(view.ID),
			Filename: document.Filename(r.branding, view),
		}
	} else {
		comp.Overlay = &Overlay{
			W:       comp.Width,
			H:       comp.Height,
			Title:   OverlayTitle,
			Message: OverlayMessage,
			Fill:    layout.ColorShadow,
			Ink:     layout.ColorNavy,
		}
	}
	return comp, nil
}

func scale(p layout.Primitive) Element {
	if t := p.Text; t != nil {
		return Element{
			Kind:     KindText,
			Role:     t.Role,
			X:        t.X * PixelsPerMM,
			Y:        t.Y * PixelsPerMM,
			Text:     t.Content,
			FontSize: t.Size.Millimetres() * PixelsPerMM,
			Bold:     t.Bold(),
			Italic:   t.Italic(),
			Align:    t.Align,
			Fill:     &t.Color,
		}
	}

	s := p.Shape
	e := Element{
		Role:        s.Role,
		X:           s.X * PixelsPerMM,
		Y:           s.Y * PixelsPerMM,
		Fill:        s.Fill,
		Stroke:      s.Stroke,
		StrokeWidth: s.StrokeWidth * PixelsPerMM,
	}
	switch s.Kind {
	case layout.ShapeCircle:
		e.Kind = KindCircle
		e.R = s.R * PixelsPerMM
	case layout.ShapeLine:
		e.Kind = KindLine
		e.X2 = (s.X + s.W) * PixelsPerMM
		e.Y2 = (s.Y + s.H) * PixelsPerMM
	default:
		e.Kind = KindRect
		e.W = s.W * PixelsPerMM
		e.H = s.H * PixelsPerMM
	}
	return e
}

func cssColor(c *layout.Color) string {
	if c == nil {
		return "none"
	}
	return c.Hex()
}
