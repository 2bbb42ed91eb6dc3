// Package metrics provides Prometheus instrumentation for kashvi-events.
//
// It pre-defines the dispatcher metrics and gives you helpers to register
// your own collectors. The tracer in pkg/event/trace feeds it:
//
//	tracer := trace.New(trace.WithMetrics(true))
//	bus := event.NewBus(tracer.Options()...)
//
// Render the current values with WriteText, or `kashvi-events metrics`.
package metrics

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/shashiranjanraj/kashvi-events/config"
)

// Listener call outcomes, used as the "status" label.
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusPanic = "panic"
)

var namespace = config.MetricsNamespace()

// ─────────────────────────────────────────────
// Built-in dispatcher metrics
// ─────────────────────────────────────────────

var (
	// DispatchTotal counts dispatches by event name.
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dispatched_total",
			Help:      "Total number of dispatched events.",
		},
		[]string{"event"},
	)

	// OrphanedTotal counts dispatches that found no listener.
	OrphanedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "orphaned_total",
			Help:      "Total number of dispatches without any listener.",
		},
		[]string{"event"},
	)

	// ListenerCalls counts listener invocations by outcome.
	ListenerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "listener_calls_total",
			Help:      "Total listener invocations.",
		},
		[]string{"event", "status"}, // "ok" | "error" | "panic"
	)

	// ListenerDuration tracks how long each listener takes.
	ListenerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "listener_duration_seconds",
			Help:      "Duration of listener invocations in seconds.",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		},
		[]string{"event", "listener"},
	)

	// PropagationStopped counts dispatches ended early by a listener.
	PropagationStopped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "propagation_stopped_total",
			Help:      "Total dispatches whose propagation was stopped.",
		},
		[]string{"event"},
	)

	// ListenersSkipped counts listeners that did not run, by reason.
	ListenersSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "listeners_skipped_total",
			Help:      "Total listeners skipped during a dispatch.",
		},
		[]string{"event", "reason"}, // "stopped" | "not_callable"
	)
)

// ─────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────

// DefaultRegistry is the Prometheus registry used by kashvi-events.
// Register your own metrics against this.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	// Go runtime metrics (GC, goroutines, memory)
	DefaultRegistry.MustRegister(collectors.NewGoCollector())

	DefaultRegistry.MustRegister(
		DispatchTotal,
		OrphanedTotal,
		ListenerCalls,
		ListenerDuration,
		PropagationStopped,
		ListenersSkipped,
	)
}

// Register lets you add your own prometheus.Collector to the registry.
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

// ─────────────────────────────────────────────
// Helpers for the tracer
// ─────────────────────────────────────────────

// RecordDispatch counts a dispatch of name that found n listeners.
func RecordDispatch(name string, n int) {
	DispatchTotal.WithLabelValues(name).Inc()
	if n == 0 {
		OrphanedTotal.WithLabelValues(name).Inc()
	}
}

// ObserveListener records one listener call with a simple timer:
//
//	start := time.Now()
//	err := b.Call(entry, name, e)
//	metrics.ObserveListener(name, listener, status, start)
func ObserveListener(name, listener, status string, start time.Time) {
	ListenerCalls.WithLabelValues(name, status).Inc()
	ListenerDuration.WithLabelValues(name, listener).Observe(time.Since(start).Seconds())
}

// RecordStop counts a stopped dispatch and the listeners it left out.
func RecordStop(name string, skipped int) {
	PropagationStopped.WithLabelValues(name).Inc()
	ListenersSkipped.WithLabelValues(name, "stopped").Add(float64(skipped))
}

// RecordNotCallable counts a listener skipped because it could not be invoked.
func RecordNotCallable(name string) {
	ListenersSkipped.WithLabelValues(name, "not_callable").Inc()
}

// ─────────────────────────────────────────────
// Text exposition
// ─────────────────────────────────────────────

// WriteText writes the kashvi-events metric families in the Prometheus text
// format. Runtime metrics are left out.
func WriteText(w io.Writer) error {
	families, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range Families(families) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Families keeps the families owned by this package, sorted by name.
func Families(all []*dto.MetricFamily) []*dto.MetricFamily {
	prefix := "events_"
	if namespace != "" {
		prefix = namespace + "_" + prefix
	}
	out := make([]*dto.MetricFamily, 0, len(all))
	for _, mf := range all {
		if strings.HasPrefix(mf.GetName(), prefix) {
			out = append(out, mf)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}
