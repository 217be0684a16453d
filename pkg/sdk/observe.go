package labsearch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation outcomes used as the "outcome" metric label.
const (
	outcomeOK          = "ok"
	outcomeInvalid     = "invalid"
	outcomeUnavailable = "unavailable"
	outcomeError       = "error"
)

// outcomeOf folds an operation error into a bounded label value.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrNoValidIndexes), errors.Is(err, ErrUnknownIndex):
		return outcomeInvalid
	case errors.Is(err, ErrEngineUnreachable), errors.Is(err, ErrIndexNotFound):
		return outcomeUnavailable
	default:
		return outcomeError
	}
}

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	failures   *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	const ns, sub = "labsearch", "sdk"
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "operations_total",
			Help: "SDK operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: sub,
			Name:    "operation_duration_seconds",
			Help:    "SDK operation latency.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 1, 2.5, 10, 30},
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "index_failures_total",
			Help: "Failed indexes inside partially successful searches, by kind.",
		}, []string{"index", "kind"}),
	}

	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.failures); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or points c at an identical collector that a
// previous Client already registered on reg.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("labsearch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("labsearch: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer reports SDK operations to an optional slog logger and an optional
// Prometheus registry. A nil *observer is valid and does nothing.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// begin starts timing op; call the returned func with the operation's error.
func (o *observer) begin(op string) func(error) {
	if o == nil {
		return func(error) {}
	}
	start := time.Now()
	return func(err error) { o.finish(op, time.Since(start), err) }
}

func (o *observer) finish(op string, dur time.Duration, err error) {
	outcome := outcomeOf(err)
	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, outcome).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("labsearch operation failed",
			slog.String("op", op), slog.String("outcome", outcome),
			slog.Duration("duration", dur), slog.Any("error", err))
		return
	}
	o.logger.Debug("labsearch operation done", slog.String("op", op), slog.Duration("duration", dur))
}

// partial records each failed index of a search that still returned results.
func (o *observer) partial(res MultiResult) {
	if o == nil {
		return
	}
	for _, r := range res.Failed() {
		kind := string(r.Error.Kind)
		if o.metrics != nil {
			o.metrics.failures.WithLabelValues(r.Index, kind).Inc()
		}
		if o.logger != nil {
			o.logger.Warn("labsearch index failed",
				slog.String("index", r.Index), slog.String("kind", kind),
				slog.String("message", r.Error.Message))
		}
	}
}
