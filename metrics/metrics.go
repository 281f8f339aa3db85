// Package metrics exports message bus statistics to Prometheus.
//
// The collector owns its own prometheus Registry and reads straight from
// Bus.Stats (and optionally Queue.Stats) at scrape time, so there is no
// sampling loop to run and no drift between the bus counters and what
// Prometheus sees.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/msgbus"
)

// Collector exposes bus statistics on a private prometheus Registry.
type Collector struct {
	reg *prometheus.Registry
}

// Option configures a Collector.
type Option func(*Collector)

// WithQueue additionally exports the queue's admission statistics.
func WithQueue(q *msgbus.Queue) Option {
	return func(c *Collector) {
		c.reg.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "msgbus_queue_enqueued_total",
				Help: "Messages admitted to the emit queue",
			}, func() float64 { return float64(q.Stats().Enqueued) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "msgbus_queue_dropped_total",
				Help: "Messages rejected by a full emit queue",
			}, func() float64 { return float64(q.Stats().Dropped) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "msgbus_queue_drained_total",
				Help: "Messages dispatched by queue drains",
			}, func() float64 { return float64(q.Stats().Drained) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "msgbus_queue_depth",
				Help: "Messages currently pending in the emit queue",
			}, func() float64 { return float64(q.Len()) }),
		)
	}
}

// New creates a collector for the given bus.
func New(bus msgbus.Bus, opts ...Option) *Collector {
	c := &Collector{reg: prometheus.NewRegistry()}

	c.reg.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "msgbus_emitted_total",
			Help: "Emit calls that passed validation",
		}, func() float64 { return float64(bus.Stats().Emitted) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "msgbus_delivered_total",
			Help: "Handler executions completed without fault",
		}, func() float64 { return float64(bus.Stats().Delivered) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "msgbus_handler_faults_total",
			Help: "Handlers that returned errors",
		}, func() float64 { return float64(bus.Stats().HandlerFaults) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "msgbus_handler_panics_total",
			Help: "Handlers that panicked",
		}, func() float64 { return float64(bus.Stats().HandlerPanics) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "msgbus_active_entries",
			Help: "Currently active subscriber entries",
		}, func() float64 { return float64(bus.Stats().ActiveEntries) }),
	)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handler returns an HTTP handler serving the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Registry returns the underlying prometheus registry, for hosts that
// aggregate several registries into one scrape endpoint.
func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}
