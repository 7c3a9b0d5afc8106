package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the document lifecycle counters. A nil *Metrics records nothing.
type Metrics struct {
	generated      prometheus.Counter
	renderFailures prometheus.Counter
	rollbacks      prometheus.Counter
	creditDenied   prometheus.Counter
	sweepRemoved   prometheus.Counter
}

// NewMetrics creates the lifecycle counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "documents_generated_total",
			Help: "Documents rendered, stored and recorded in history.",
		}),
		renderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "document_render_failures_total",
			Help: "Generation attempts that failed at the remote renderer.",
		}),
		rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credit_rollbacks_total",
			Help: "Limited-mode credit reservations refunded after a render failure.",
		}),
		creditDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credit_reservations_denied_total",
			Help: "Generation attempts rejected for insufficient credits.",
		}),
		sweepRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sweep_removed_total",
			Help: "Expired document records removed by the expiry sweep.",
		}),
	}
	for _, c := range []prometheus.Collector{m.generated, m.renderFailures, m.rollbacks, m.creditDenied, m.sweepRemoved} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) incGenerated() {
	if m != nil {
		m.generated.Inc()
	}
}

func (m *Metrics) incRenderFailure() {
	if m != nil {
		m.renderFailures.Inc()
	}
}

func (m *Metrics) incRollback() {
	if m != nil {
		m.rollbacks.Inc()
	}
}

func (m *Metrics) incCreditDenied() {
	if m != nil {
		m.creditDenied.Inc()
	}
}

func (m *Metrics) addSweepRemoved(n int) {
	if m != nil && n > 0 {
		m.sweepRemoved.Add(float64(n))
	}
}
