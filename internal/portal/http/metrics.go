package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the portal's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	actions  *prometheus.CounterVec
	finished *prometheus.CounterVec
}

// NewMetrics registers the portal collectors. activeFlows is sampled on
// every scrape.
func NewMetrics(activeFlows func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: reg,
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memberauth",
			Subsystem: "portal",
			Name:      "login_actions_total",
			Help:      "Login flow actions by action name and resulting status.",
		}, []string{"action", "status"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memberauth",
			Subsystem: "portal",
			Name:      "login_attempts_finished_total",
			Help:      "Login attempts that reached a terminal stage.",
		}, []string{"stage"}),
	}
	reg.MustRegister(m.actions, m.finished)
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "memberauth",
		Subsystem: "portal",
		Name:      "active_flows",
		Help:      "Login flows currently held in memory.",
	}, func() float64 { return float64(activeFlows()) }))

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeAction(action, status string) {
	m.actions.WithLabelValues(action, status).Inc()
}

func (m *Metrics) observeFinished(stage string) {
	m.finished.WithLabelValues(stage).Inc()
}
