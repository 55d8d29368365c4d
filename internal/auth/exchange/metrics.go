package exchange

import (
	"context"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values other than domain error codes.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics counts exchange attempts by pair and outcome.
type Metrics struct {
	attempts *prometheus.CounterVec
}

// NewMetrics registers the exchange collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authguard",
			Subsystem: "exchange",
			Name:      "attempts_total",
			Help:      "Token exchange attempts by source type, target type and result.",
		}, []string{"from", "to", "result"}),
	}
	if err := reg.Register(m.attempts); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(a Attempt) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(a.From, a.To, a.Result()).Inc()
}

// Attempt describes one finished exchange.
type Attempt struct {
	From     string
	To       string
	EntityID string
	SourceIP string
	ClientID string
	// Err is nil on success.
	Err error
	At  time.Time
}

func (a Attempt) Success() bool { return a.Err == nil }

// Result is "success", the domain error code, or "error".
func (a Attempt) Result() string {
	if a.Err == nil {
		return ResultSuccess
	}
	if code := domain.CodeOf(a.Err); code != "" {
		return code
	}
	return ResultError
}

// AttemptRecorder receives every attempt after it completes, e.g. to feed
// a lockout policy or an audit log.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, a Attempt)
}

// AttemptRecorderFunc adapts a function to AttemptRecorder.
type AttemptRecorderFunc func(ctx context.Context, a Attempt)

func (f AttemptRecorderFunc) RecordAttempt(ctx context.Context, a Attempt) { f(ctx, a) }

// Counter returns the attempt counter for one label set.
func (m *Metrics) Counter(from, to, result string) prometheus.Counter {
	return m.attempts.WithLabelValues(from, to, result)
}
