package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Relayed  prometheus.Counter
	Failures prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Relayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "certportal_audit_relayed_total",
			Help: "Audit outbox entries published to the broker",
		}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "certportal_audit_relay_failures_total",
			Help: "Audit relay batches that failed and will be retried",
		}),
	}
}

func (m *Metrics) AddRelayed(n int) { m.Relayed.Add(float64(n)) }

func (m *Metrics) IncrementFailure() { m.Failures.Inc() }
