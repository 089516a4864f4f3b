// Package metric exposes procsim's Prometheus instrumentation.
package metric

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nvandessel/procsim/internal/namespace"
	"github.com/nvandessel/procsim/internal/signal"
)

const namespaceLabel = "procsim"

// Registry owns a private Prometheus registry with procsim's metrics and the
// Go runtime and process collectors.
type Registry struct {
	registry *prometheus.Registry

	ReadsTotal   *prometheus.CounterVec
	ReadErrors   *prometheus.CounterVec
	TicksTotal   prometheus.Counter
	CounterValue prometheus.Gauge
}

// NewRegistry creates the registry and registers every collector.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		ReadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceLabel,
			Name:      "reads_total",
			Help:      "Variable reads served, by node path.",
		}, []string{"node"}),
		ReadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceLabel,
			Name:      "read_errors_total",
			Help:      "Failed read requests, by reason.",
		}, []string{"reason"}),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceLabel,
			Name:      "counter_ticks_total",
			Help:      "Ticks performed by the counter process.",
		}),
		CounterValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceLabel,
			Name:      "counter_value",
			Help:      "Current value of the simulated counter.",
		}),
	}

	r.registry.MustRegister(
		r.ReadsTotal,
		r.ReadErrors,
		r.TicksTotal,
		r.CounterValue,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// AfterRead implements namespace.Hook.
func (r *Registry) AfterRead(n *namespace.Node, _ signal.Value) {
	r.ReadsTotal.WithLabelValues(n.Path()).Inc()
}

// ObserveReadError counts a read request that could not be served. The
// requested path comes from clients and is not used as a label.
func (r *Registry) ObserveReadError(_ string, err error) {
	r.ReadErrors.WithLabelValues(readErrorReason(err)).Inc()
}

func readErrorReason(err error) string {
	switch {
	case errors.Is(err, namespace.ErrNotFound):
		return "not_found"
	case errors.Is(err, namespace.ErrNotReadable):
		return "not_readable"
	default:
		return "other"
	}
}

// ObserveTick records one counter tick. It matches ticker.Ticker.OnTick.
func (r *Registry) ObserveTick(value int32) {
	r.TicksTotal.Inc()
	r.CounterValue.Set(float64(value))
}
