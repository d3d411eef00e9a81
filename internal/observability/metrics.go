// Package observability exports simulation metrics to Prometheus.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/firewave/internal/events"
	"github.com/vovakirdan/firewave/internal/session"
)

const namespace = "firewave"

// Collector bundles the firewave metrics. Event counters are driven from the
// session bus; gauges are refreshed from tick snapshots.
type Collector struct {
	gatherer prometheus.Gatherer
	reg      prometheus.Registerer

	FiresIgnited      *prometheus.CounterVec
	FiresExtinguished prometheus.Counter
	FiresWeakened     prometheus.Counter
	Damage            *prometheus.CounterVec
	WavesCompleted    prometheus.Counter
	WaveDuration      prometheus.Histogram
	Experiences       *prometheus.CounterVec

	FiresBurning    prometheus.Gauge
	WaveIndex       prometheus.Gauge
	ActorEfficiency *prometheus.GaugeVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer, reg: reg}
	var err error

	if c.FiresIgnited, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fires_ignited_total",
		Help:      "Fires ignited, labeled by source (direct or cascade).",
	}, []string{"source"})); err != nil {
		return nil, err
	}
	if c.FiresExtinguished, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fires_extinguished_total",
		Help:      "Fires put out by actors.",
	})); err != nil {
		return nil, err
	}
	if c.FiresWeakened, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fires_weakened_total",
		Help:      "Fires that dropped below their weaken threshold.",
	})); err != nil {
		return nil, err
	}
	if c.Damage, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extinguish_amount_total",
		Help:      "Intensity removed from fires, labeled by actor.",
	}, []string{"actor"})); err != nil {
		return nil, err
	}
	if c.WavesCompleted, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "waves_completed_total",
		Help:      "Waves in which every fire was put out.",
	})); err != nil {
		return nil, err
	}
	if c.WaveDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "wave_duration_seconds",
		Help:      "Simulation seconds from wave start to wave completion.",
		Buckets:   []float64{2, 5, 10, 15, 20, 30, 45, 60, 90, 120},
	})); err != nil {
		return nil, err
	}
	if c.Experiences, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "experiences_total",
		Help:      "Ended experiences, labeled by outcome (finished or the stop reason).",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if c.FiresBurning, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fires_burning",
		Help:      "Fires currently burning.",
	})); err != nil {
		return nil, err
	}
	if c.WaveIndex, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "wave_index",
		Help:      "Current wave, zero when idle.",
	})); err != nil {
		return nil, err
	}
	if c.ActorEfficiency, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "actor_efficiency",
		Help:      "Extinguish amount per second of wave time, labeled by actor.",
	}, []string{"actor"})); err != nil {
		return nil, err
	}

	return c, nil
}

// Attach subscribes the collector to the session bus and exports the input
// queue counters. Must be called from the goroutine that owns the session.
func (c *Collector) Attach(s *session.Session) (events.Subscription, error) {
	q := s.Queue()
	if _, err := register(c.reg, prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "input_contributions_total",
		Help:      "Contributions pushed to the input queue.",
	}, func() float64 { return float64(q.Pushed()) })); err != nil {
		return 0, err
	}
	if _, err := register(c.reg, prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "input_dropped_total",
		Help:      "Contributions dropped because the input queue was full.",
	}, func() float64 { return float64(q.Dropped()) })); err != nil {
		return 0, err
	}
	return s.Bus().Subscribe(c.Observe), nil
}

// Observe updates the event counters for one event.
func (c *Collector) Observe(e events.Event) {
	if c == nil {
		return
	}
	switch ev := e.(type) {
	case events.FireIgnited:
		source := "direct"
		if ev.Cascade != 0 {
			source = "cascade"
		}
		c.FiresIgnited.WithLabelValues(source).Inc()
	case events.FireExtinguished:
		c.FiresExtinguished.Inc()
	case events.FireWeakened:
		c.FiresWeakened.Inc()
	case events.FireDamaged:
		c.Damage.WithLabelValues(ev.Actor.String()).Add(ev.Amount)
	case events.WaveCompleted:
		c.WavesCompleted.Inc()
		c.WaveDuration.Observe(ev.Duration)
	case events.ExperienceStopped:
		c.Experiences.WithLabelValues(ev.Reason.String()).Inc()
	case events.ExperienceFinished:
		c.Experiences.WithLabelValues(session.OutcomeFinished).Inc()
	}
}

// OnTick refreshes gauges from a snapshot. It is a session.Runner observer.
func (c *Collector) OnTick(snap session.Snapshot) {
	if c == nil {
		return
	}
	c.FiresBurning.Set(float64(len(snap.Burning())))
	if snap.Running {
		c.WaveIndex.Set(float64(snap.Wave))
	} else {
		c.WaveIndex.Set(0)
	}
	for _, a := range snap.Actors {
		c.ActorEfficiency.WithLabelValues(a.ID.String()).Set(a.Efficiency)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register adds col to reg, reusing an identical collector that is already
// registered.
func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("observability: collector already registered with incompatible type: %w", err)
		}
		var zero T
		return zero, fmt.Errorf("observability: cannot register collector: %w", err)
	}
	return col, nil
}
