package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/observability/metrics"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// Sink receives lead events.
type Sink interface {
	Name() string
	Send(ctx context.Context, ev LeadEvent) error
}

// Forwarder fans an event out to every configured sink.
type Forwarder struct {
	sinks   []Sink
	metrics *metrics.BotMetrics
	logger  *logging.Logger
}

// NewForwarder drops nil sinks.
func NewForwarder(sinks []Sink, m *metrics.BotMetrics, logger *logging.Logger) *Forwarder {
	if logger == nil {
		logger = logging.Default()
	}
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Forwarder{sinks: kept, metrics: m, logger: logger}
}

// Len reports the number of active sinks.
func (f *Forwarder) Len() int {
	return len(f.sinks)
}

// Forward sends ev to every sink and returns the joined failures. One sink
// failing does not stop the others.
func (f *Forwarder) Forward(ctx context.Context, ev LeadEvent) error {
	var errs []error
	for _, s := range f.sinks {
		err := s.Send(ctx, ev)
		f.metrics.ObserveLead(s.Name(), err)
		if err != nil {
			f.logger.Warn("lead forward failed", "sink", s.Name(), "sender_id", ev.From, "intent", ev.Intent, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		f.logger.Debug("lead forwarded", "sink", s.Name(), "sender_id", ev.From, "intent", ev.Intent)
	}
	return errors.Join(errs...)
}
