package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the certificate module.
type Metrics struct {
	CertificatesCreated  prometheus.Counter
	CertificatesDeleted  prometheus.Counter
	StatusTransitions    *prometheus.CounterVec
	CreateConflicts      prometheus.Counter
	RenderDuration       *prometheus.HistogramVec
	ExportsBlocked       prometheus.Counter
	DirectoryPlaceholder *prometheus.CounterVec
}

// New registers the certificate metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CertificatesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "certportal_certificates_created_total",
			Help: "Total number of certificates created",
		}),
		CertificatesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "certportal_certificates_deleted_total",
			Help: "Total number of certificates deleted",
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certportal_certificate_transitions_total",
			Help: "Certificate status transitions by kind (approved, reverted)",
		}, []string{"transition"}),
		CreateConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "certportal_certificate_create_conflicts_total",
			Help: "Create attempts rejected because the learner/course pair already has a certificate",
		}),
		RenderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certportal_render_duration_seconds",
			Help:    "Duration of certificate renders by output format",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"format"}),
		ExportsBlocked: factory.NewCounter(prometheus.CounterOpts{
			Name: "certportal_exports_blocked_total",
			Help: "Export requests refused because the certificate is not approved",
		}),
		DirectoryPlaceholder: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certportal_directory_placeholders_total",
			Help: "Views rendered with a placeholder because a directory entry was missing",
		}, []string{"kind"}),
	}
}

func (m *Metrics) IncrementCreated() { m.CertificatesCreated.Inc() }

func (m *Metrics) IncrementDeleted() { m.CertificatesDeleted.Inc() }

func (m *Metrics) IncrementConflict() { m.CreateConflicts.Inc() }

func (m *Metrics) IncrementTransition(kind string) { m.StatusTransitions.WithLabelValues(kind).Inc() }

func (m *Metrics) IncrementExportBlocked() { m.ExportsBlocked.Inc() }

func (m *Metrics) IncrementPlaceholder(kind string) {
	m.DirectoryPlaceholder.WithLabelValues(kind).Inc()
}

// ObserveRender records render latency. Call with time.Now() at the start.
func (m *Metrics) ObserveRender(format string, start time.Time) {
	m.RenderDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
}
