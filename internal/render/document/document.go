// Package document exports approved certificates as single-page A4
// landscape PDFs painted from the shared layout.
package document

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"certportal/internal/certificate/metrics"
	"certportal/internal/certificate/models"
	"certportal/internal/render/layout"
	dErrors "certportal/pkg/domain-errors"
	strutil "certportal/pkg/platform/strings"
)

const ContentType = "application/pdf"

// Artifact is a rendered export.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Exporter renders PDFs. It is stateless and safe for concurrent use; each
// export gets its own fpdf document.
type Exporter struct {
	branding layout.Branding
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Exporter)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Exporter) {
		e.metrics = m
	}
}

func New(branding layout.Branding, opts ...Option) *Exporter {
	e := &Exporter{
		branding: branding,
		tracer:   otel.Tracer("certportal/render"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders the certificate. Pending certificates fail with a
// precondition error and produce nothing.
func (e *Exporter) Export(ctx context.Context, view *models.CertificateView) (*Artifact, error) {
	if view == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "certificate view is required")
	}
	ctx, span := e.tracer.Start(ctx, "document.Export", trace.WithAttributes(
		attribute.String("certificate_id", view.ID.String()),
	))
	defer span.End()

	if err := view.CanExport(); err != nil {
		if e.metrics != nil {
			e.metrics.IncrementExportBlocked()
		}
		return nil, err
	}

	start := time.Now()
	doc := layout.Build(layout.FromView(view), e.branding)
	body, err := e.render(doc, view)
	if err != nil {
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "failed to render certificate PDF",
				"certificate_id", view.ID.String(),
				"error", err,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render certificate")
	}
	if e.metrics != nil {
		e.metrics.ObserveRender("pdf", start)
	}

	return &Artifact{
		Filename:    Filename(e.branding, view),
		ContentType: ContentType,
		Body:        body,
	}, nil
}

func (e *Exporter) render(doc *layout.Document, view *models.CertificateView) ([]byte, error) {
	pdf, err := NewPDF()
	if err != nil {
		return nil, err
	}

	// Pin document dates to the issue date so repeated exports are identical.
	stamp := view.CreatedAt
	if view.IssuedAt != nil {
		stamp = *view.IssuedAt
	}
	pdf.SetCreationDate(stamp.UTC())
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(e.branding.WithDefaults().Institution, true)
	pdf.SetSubject(view.CourseTitle, true)
	pdf.SetCreator("certportal", false)

	pdf.AddPage()
	Paint(pdf, doc)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename derives the download name from the institution, learner and
// course. Runs of characters other than letters and digits become "_".
func Filename(branding layout.Branding, view *models.CertificateView) string {
	return strutil.CollapseNonAlnum(branding.WithDefaults().Institution, "_") +
		"_Certificate_" + strutil.CollapseNonAlnum(view.Username, "_") +
		"_" + strutil.CollapseNonAlnum(view.CourseTitle, "_") + ".pdf"
}
