package graphql

import (
	"time"

	"github.com/jensneuse/abstractlogger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

// Tracer instruments the work done for a query.
// Implementations must call fn exactly once and be safe for concurrent use.
type Tracer interface {
	Trace(key string, data map[string]interface{}, fn func())
}

type NoopTracer struct{}

func (NoopTracer) Trace(_ string, _ map[string]interface{}, fn func()) {
	fn()
}

// Tracers combines tracers, the first one is the outermost.
func Tracers(tracers ...Tracer) Tracer {
	return multiTracer(tracers)
}

type multiTracer []Tracer

func (m multiTracer) Trace(key string, data map[string]interface{}, fn func()) {
	if len(m) == 0 {
		fn()
		return
	}
	m[0].Trace(key, data, func() {
		m[1:].Trace(key, data, fn)
	})
}

// LoggerTracer logs every traced call at debug level and counts them.
type LoggerTracer struct {
	logger abstractlogger.Logger
	calls  *atomic.Int64
	nanos  *atomic.Int64
}

func NewLoggerTracer(logger abstractlogger.Logger) *LoggerTracer {
	if logger == nil {
		logger = abstractlogger.NoopLogger
	}
	return &LoggerTracer{
		logger: logger,
		calls:  atomic.NewInt64(0),
		nanos:  atomic.NewInt64(0),
	}
}

func (l *LoggerTracer) Trace(key string, data map[string]interface{}, fn func()) {
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	l.calls.Inc()
	l.nanos.Add(elapsed.Nanoseconds())
	l.logger.Debug("trace",
		abstractlogger.String("key", key),
		abstractlogger.Any("data", data),
		abstractlogger.String("duration", elapsed.String()),
	)
}

// Calls returns the number of traced calls.
func (l *LoggerTracer) Calls() int64 {
	return l.calls.Load()
}

// Duration returns the time spent in traced calls.
func (l *LoggerTracer) Duration() time.Duration {
	return time.Duration(l.nanos.Load())
}

// MetricsTracer observes the duration of traced calls in a histogram labeled by key.
type MetricsTracer struct {
	duration *prometheus.HistogramVec
}

func NewMetricsTracer(registerer prometheus.Registerer) (*MetricsTracer, error) {
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gqlstatic",
			Name:      "trace_duration_seconds",
			Help:      "Duration of traced query operations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"key"},
	)
	if err := registerer.Register(duration); err != nil {
		return nil, err
	}
	return &MetricsTracer{duration: duration}, nil
}

func (m *MetricsTracer) Trace(key string, _ map[string]interface{}, fn func()) {
	timer := prometheus.NewTimer(m.duration.WithLabelValues(key))
	defer timer.ObserveDuration()
	fn()
}
