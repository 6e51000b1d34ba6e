package talentiq

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts API call outcomes and refreshes. A nil *Metrics is a no-op.
type Metrics struct {
	calls     *prometheus.CounterVec
	refreshes *prometheus.CounterVec
}

// NewMetrics builds the counters and registers them on reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talentiq",
			Subsystem: "client",
			Name:      "calls_total",
			Help:      "API calls by final outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talentiq",
			Subsystem: "client",
			Name:      "refreshes_total",
			Help:      "Token refreshes triggered by a 401, by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.refreshes)
	}
	return m
}

// observe records the final status of a call; 0 means a transport error.
func (m *Metrics) observe(status int) {
	if m == nil {
		return
	}
	switch {
	case status == 0:
		m.calls.WithLabelValues("transport_error").Inc()
	case status == http.StatusNotFound:
		m.calls.WithLabelValues("not_found").Inc()
	case status >= 200 && status < 300:
		m.calls.WithLabelValues("success").Inc()
	default:
		m.calls.WithLabelValues("fail").Inc()
	}
}

func (m *Metrics) refreshed(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.refreshes.WithLabelValues(result).Inc()
}
