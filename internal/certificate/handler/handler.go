package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"certportal/internal/certificate/models"
	"certportal/internal/certificate/views"
	"certportal/internal/render/document"
	"certportal/internal/render/screen"
	id "certportal/pkg/domain"
	dErrors "certportal/pkg/domain-errors"
	"certportal/pkg/platform/envelope"
	"certportal/pkg/platform/httputil"
	"certportal/pkg/requestcontext"
)

// Service is the certificate lifecycle controller.
type Service interface {
	Create(ctx context.Context, cmd models.CreateCommand) (*models.Certificate, error)
	SetStatus(ctx context.Context, certID id.CertificateID, change models.StatusChange) (*models.Certificate, error)
	Delete(ctx context.Context, certID id.CertificateID) error
	Get(ctx context.Context, certID id.CertificateID) (*models.Certificate, error)
	List(ctx context.Context) ([]*models.Certificate, error)
	RecordExport(ctx context.Context, cert *models.Certificate)
}

// Assembler joins certificates with directory data.
type Assembler interface {
	One(ctx context.Context, cert *models.Certificate) (*models.CertificateView, error)
	Many(ctx context.Context, certs []*models.Certificate) ([]*models.CertificateView, error)
}

// Previewer paints the on-screen certificate.
type Previewer interface {
	Compose(ctx context.Context, view *models.CertificateView) (*screen.Composition, error)
	WriteHTML(ctx context.Context, w io.Writer, comp *screen.Composition) error
	WritePNG(ctx context.Context, w io.Writer, comp *screen.Composition) error
}

// Exporter renders the downloadable document.
type Exporter interface {
	Export(ctx context.Context, view *models.CertificateView) (*document.Artifact, error)
}

// Handler wires certificate endpoints to the lifecycle service and the
// renderers.
type Handler struct {
	service  Service
	views    Assembler
	preview  Previewer
	exporter Exporter
	logger   *slog.Logger
}

// New constructs a certificate handler with its dependencies.
func New(service Service, views Assembler, preview Previewer, exporter Exporter, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		views:    views,
		preview:  preview,
		exporter: exporter,
		logger:   logger,
	}
}

// RegisterAdmin mounts the administrative endpoints. The caller is expected
// to guard the router with the admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/certificates", h.HandleList)
	r.Post("/certificates", h.HandleCreate)
	r.Put("/certificates/{id}", h.HandleUpdateStatus)
	r.Delete("/certificates/{id}", h.HandleDelete)
}

// RegisterLearner mounts the learner-facing endpoints. The caller is
// expected to guard the router with the caller middleware. throttle wraps
// only the rendering routes.
func (h *Handler) RegisterLearner(r chi.Router, throttle ...func(http.Handler) http.Handler) {
	r.Get("/certificates/{id}", h.HandleGet)

	render := r.With(throttle...)
	render.Get("/certificates/{id}/preview", h.HandlePreview)
	render.Get("/certificates/{id}/preview.png", h.HandlePreviewPNG)
	render.Get("/certificates/{id}/export", h.HandleExport)
}

// HandleList handles GET /certificates.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	certs, err := h.service.List(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list certificates", err)
		return
	}
	out, err := h.views.Many(ctx, certs)
	if err != nil {
		h.fail(ctx, w, "failed to assemble certificate list", err)
		return
	}

	h.logger.InfoContext(ctx, "certificates listed",
		"request_id", requestID,
		"count", len(out),
	)
	httputil.WriteJSON(w, http.StatusOK, envelope.Wrap(FromViews(out)))
}

// HandleCreate handles POST /certificates.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateCertificateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cert, err := h.service.Create(ctx, req.Command())
	if err != nil {
		h.fail(ctx, w, "failed to create certificate", err,
			"learner_id", req.UserID,
			"course_id", req.CourseID,
		)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromView(h.viewAfterWrite(ctx, cert)))
}

// HandleUpdateStatus handles PUT /certificates/{id}.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	certID, ok := h.certificateID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cert, err := h.service.SetStatus(ctx, certID, req.Change())
	if err != nil {
		h.fail(ctx, w, "failed to update certificate status", err,
			"certificate_id", certID.String(),
			"status", req.Status,
		)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromView(h.viewAfterWrite(ctx, cert)))
}

// HandleDelete handles DELETE /certificates/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	certID, ok := h.certificateID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, certID); err != nil {
		h.fail(ctx, w, "failed to delete certificate", err, "certificate_id", certID.String())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGet handles GET /certificates/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LearnerFromView(view))
}

// HandlePreview handles GET /certificates/{id}/preview.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	h.renderPreview(w, r, "text/html; charset=utf-8", h.preview.WriteHTML)
}

// HandlePreviewPNG handles GET /certificates/{id}/preview.png.
func (h *Handler) HandlePreviewPNG(w http.ResponseWriter, r *http.Request) {
	h.renderPreview(w, r, "image/png", h.preview.WritePNG)
}

// HandleExport handles GET /certificates/{id}/export. Pending certificates
// get 412 and no document.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	cert, view, ok := h.load(w, r)
	if !ok {
		return
	}

	artifact, err := h.exporter.Export(ctx, view)
	if err != nil {
		h.fail(ctx, w, "certificate export refused", err, "certificate_id", cert.ID.String())
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Body)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Body); err != nil {
		h.logger.WarnContext(ctx, "failed to write certificate export",
			"request_id", requestID,
			"error", err,
		)
		return
	}

	h.service.RecordExport(ctx, cert)
	h.logger.InfoContext(ctx, "certificate exported",
		"request_id", requestID,
		"certificate_id", cert.ID.String(),
		"filename", artifact.Filename,
		"bytes", len(artifact.Body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

type paintFunc func(ctx context.Context, w io.Writer, comp *screen.Composition) error

// renderPreview paints into a buffer first so a failure still produces a
// JSON error instead of a truncated body.
func (h *Handler) renderPreview(w http.ResponseWriter, r *http.Request, contentType string, paint paintFunc) {
	ctx := r.Context()

	view, ok := h.loadView(w, r)
	if !ok {
		return
	}
	comp, err := h.preview.Compose(ctx, view)
	if err != nil {
		h.fail(ctx, w, "failed to compose certificate preview", err)
		return
	}

	var buf bytes.Buffer
	if err := paint(ctx, &buf, comp); err != nil {
		h.fail(ctx, w, "failed to paint certificate preview", dErrors.Wrap(err, dErrors.CodeInternal, "failed to render preview"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) loadView(w http.ResponseWriter, r *http.Request) (*models.CertificateView, bool) {
	_, view, ok := h.load(w, r)
	return view, ok
}

// load fetches the certificate the caller may see and assembles its view.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*models.Certificate, *models.CertificateView, bool) {
	ctx := r.Context()

	certID, ok := h.certificateID(w, r)
	if !ok {
		return nil, nil, false
	}
	cert, err := h.service.Get(ctx, certID)
	if err != nil {
		h.fail(ctx, w, "failed to load certificate", err, "certificate_id", certID.String())
		return nil, nil, false
	}
	view, err := h.views.One(ctx, cert)
	if err != nil {
		h.fail(ctx, w, "failed to assemble certificate", err, "certificate_id", certID.String())
		return nil, nil, false
	}
	return cert, view, true
}

// viewAfterWrite assembles the response for a committed mutation. The write
// already happened, so a directory outage degrades to placeholders rather
// than an error.
func (h *Handler) viewAfterWrite(ctx context.Context, cert *models.Certificate) *models.CertificateView {
	view, err := h.views.One(ctx, cert)
	if err == nil {
		return view
	}
	h.logger.WarnContext(ctx, "directory unavailable after write, using placeholders",
		"request_id", requestcontext.RequestID(ctx),
		"certificate_id", cert.ID.String(),
		"error", err,
	)
	return models.NewView(cert, views.PlaceholderLearner(cert.LearnerID), views.PlaceholderCourse(cert.CourseID))
}

func (h *Handler) certificateID(w http.ResponseWriter, r *http.Request) (id.CertificateID, bool) {
	certID, err := id.ParseCertificateID(chi.URLParam(r, "id"))
	if err != nil {
		// Malformed ids cannot name a certificate.
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "certificate not found"))
		return id.CertificateID{}, false
	}
	return certID, true
}

// fail logs at a level matching the error class and writes the response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable:
		h.logger.ErrorContext(ctx, msg, attrs...)
	default:
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
