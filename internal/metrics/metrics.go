// Package metrics exposes Prometheus collectors for the simulation clock.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles the clock's Prometheus metrics. All methods are safe
// to call on a nil collector.
type SimCollector struct {
	gatherer prometheus.Gatherer

	TicksTotal   prometheus.Counter
	TicksDropped prometheus.Counter
	TickDuration prometheus.Histogram
	Entities     prometheus.Gauge
	EventsTotal  *prometheus.CounterVec
}

// NewSimCollector registers simulation metrics against reg, defaulting to
// the global Prometheus registry when nil. Collectors already registered
// under the same name are reused.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simcore_ticks_total",
		Help: "Fixed simulation ticks executed.",
	}), "simcore_ticks_total")
	if err != nil {
		return nil, err
	}
	dropped, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simcore_ticks_dropped_total",
		Help: "Catch-up ticks discarded because a single advance exceeded the per-call cap.",
	}), "simcore_ticks_dropped_total")
	if err != nil {
		return nil, err
	}
	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simcore_tick_duration_seconds",
		Help:    "Wall-clock time spent processing one tick.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	}), "simcore_tick_duration_seconds")
	if err != nil {
		return nil, err
	}
	entities, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simcore_entities",
		Help: "Entities currently registered with the clock.",
	}), "simcore_entities")
	if err != nil {
		return nil, err
	}
	events, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simcore_events_total",
		Help: "Events appended to the simulation event queue, by kind.",
	}, []string{"kind"}), "simcore_events_total")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:     gatherer,
		TicksTotal:   ticks,
		TicksDropped: dropped,
		TickDuration: duration,
		Entities:     entities,
		EventsTotal:  events,
	}, nil
}

// ObserveTick counts one tick and records how long it took.
func (c *SimCollector) ObserveTick(d time.Duration) {
	if c == nil {
		return
	}
	c.TicksTotal.Inc()
	c.TickDuration.Observe(d.Seconds())
}

func (c *SimCollector) AddDroppedTicks(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.TicksDropped.Add(float64(n))
}

func (c *SimCollector) SetEntities(n int) {
	if c == nil {
		return
	}
	c.Entities.Set(float64(n))
}

func (c *SimCollector) IncEvent(kind string) {
	if c == nil {
		return
	}
	c.EventsTotal.WithLabelValues(kind).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
