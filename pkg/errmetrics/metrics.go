// Package errmetrics counts ClientErrors by kind for Prometheus.
package errmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"kubeclient/pkg/errx"
	"kubeclient/pkg/retry"
)

// KindOther labels errors that are not ClientErrors.
const KindOther = "other"

// Metrics holds the error counters.
//
// Pass an instance registry (prometheus.NewRegistry()), not
// prometheus.DefaultRegisterer, so counters live as long as the client.
type Metrics struct {
	ErrorsTotal          *prometheus.CounterVec
	DiscoveryErrorsTotal *prometheus.CounterVec
	APIStatusTotal       *prometheus.CounterVec
	ActionsTotal         *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeclient_errors_total",
			Help: "Total number of client errors by kind and code",
		}, []string{"kind", "code"}),
		DiscoveryErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeclient_discovery_errors_total",
			Help: "Total number of discovery errors by reason",
		}, []string{"reason"}),
		APIStatusTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeclient_api_errors_total",
			Help: "Total number of API server error responses by reason",
		}, []string{"reason"}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeclient_error_actions_total",
			Help: "Total number of errors by recovery action",
		}, []string{"action"}),
	}
	registry.MustRegister(m.ErrorsTotal, m.DiscoveryErrorsTotal, m.APIStatusTotal, m.ActionsTotal)
	return m
}

// Observe records err. A nil error is ignored.
func (m *Metrics) Observe(err error) {
	if m == nil || err == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(retry.Classify(err).String()).Inc()

	e, ok := errx.As(err)
	if !ok {
		m.ErrorsTotal.WithLabelValues(KindOther, "").Inc()
		return
	}
	m.ErrorsTotal.WithLabelValues(string(e.Kind()), e.Code()).Inc()

	switch e.Kind() {
	case errx.KindDiscovery:
		if d, ok := e.DiscoveryError(); ok {
			m.DiscoveryErrorsTotal.WithLabelValues(string(d.Reason())).Inc()
		}
	case errx.KindAPI:
		reason := string(errx.StatusReason(e))
		if reason == "" {
			reason = "Unknown"
		}
		m.APIStatusTotal.WithLabelValues(reason).Inc()
	}
}
