// Package telemetry wires this core's ambient observability stack:
// structured logging (logrus), metrics (prometheus client_golang), and
// tracing spans (otel), the way cri-resource-manager and AleutianFOSS wire
// these concerns.
package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Metrics is the set of prometheus collectors the host supervisor updates
// after every dispatch batch and re-root.
type Metrics struct {
	RootVisits            prometheus.Gauge
	LiveNodes             prometheus.Gauge
	DispatchDuration       prometheus.Histogram
	AllocFailuresTotal     prometheus.Counter
	MemoryPressureTotal    prometheus.Counter
	RerootTotal            prometheus.Counter
	ReadbackTimeoutTotal   prometheus.Counter
}

// NewMetrics registers and returns the collector set against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// global registry across test runs.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RootVisits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gpumcts_root_visits",
			Help: "Visit count of the current search root.",
		}),
		LiveNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gpumcts_live_nodes",
			Help: "Number of nodes currently reachable from the root.",
		}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gpumcts_dispatch_duration_seconds",
			Help:    "Wall-clock duration of one kernel dispatch batch.",
			Buckets: prometheus.DefBuckets,
		}),
		AllocFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gpumcts_alloc_failures_total",
			Help: "Node-pool allocation failures across all dispatches.",
		}),
		MemoryPressureTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gpumcts_memory_pressure_events_total",
			Help: "MEMORY_PRESSURE urgent events observed.",
		}),
		RerootTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gpumcts_reroot_total",
			Help: "Completed re-root operations.",
		}),
		ReadbackTimeoutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gpumcts_readback_timeout_total",
			Help: "Stats-readback operations that exceeded their timeout.",
		}),
	}
	reg.MustRegister(
		m.RootVisits, m.LiveNodes, m.DispatchDuration,
		m.AllocFailuresTotal, m.MemoryPressureTotal, m.RerootTotal, m.ReadbackTimeoutTotal,
	)
	return m
}

// Logger returns a logrus logger preconfigured the way the supervisor logs
// throughout its lifecycle (text formatter, field-based context).
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

// tracerProvider is a sampling-everything SDK provider with no exporter
// attached: this release never ships spans anywhere, but registering a
// real sdktrace.TracerProvider (rather than leaving otel's global no-op)
// means StartSpan produces real span contexts any future exporter wiring
// can pick up without touching call sites.
var tracerProvider = sdktrace.NewTracerProvider(
	sdktrace.WithSampler(sdktrace.AlwaysSample()),
)

func init() {
	otel.SetTracerProvider(tracerProvider)
}

// Tracer is the package-wide otel tracer the supervisor uses to wrap each
// RunIterations dispatch in a span; stats readback and re-root are not
// traced.
var Tracer = tracerProvider.Tracer("github.com/aryanbdps9/gpumcts/supervisor")

// StartSpan is a thin helper so callers don't need to import otel/trace
// directly for the common case.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, name)
}
