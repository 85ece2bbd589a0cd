package whatsapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/observability/metrics"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// ErrSendSkipped is returned when the token guard blocks a send.
var ErrSendSkipped = errors.New("whatsapp: send skipped, token invalid or not configured")

type textSender interface {
	SendText(ctx context.Context, to, body string) (*SendResponse, error)
}

// Sender sends text replies through the Cloud API behind a TokenGuard.
type Sender struct {
	client  textSender
	guard   *TokenGuard
	metrics *metrics.BotMetrics
	logger  *logging.Logger
}

func NewSender(client textSender, guard *TokenGuard, m *metrics.BotMetrics, logger *logging.Logger) *Sender {
	if client == nil || guard == nil {
		panic("whatsapp: sender requires client and token guard")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Sender{client: client, guard: guard, metrics: m, logger: logger}
}

// SendText delivers body to a rider. Auth failures flip the guard so later
// sends short-circuit until the next successful Validate.
func (s *Sender) SendText(ctx context.Context, to, body string) error {
	if !s.guard.Valid() {
		s.logger.Warn("whatsapp: skipping send, token invalid or not set", "to", to)
		s.metrics.ObserveOutbound("skipped")
		return ErrSendSkipped
	}
	resp, err := s.client.SendText(ctx, to, body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsAuthError() {
			s.guard.MarkInvalid(err)
			s.metrics.ObserveOutbound("auth_error")
			return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
		s.metrics.ObserveOutbound("error")
		s.logger.Error("whatsapp: send failed", "to", to, "error", err)
		return err
	}
	s.metrics.ObserveOutbound("sent")
	s.logger.Info("whatsapp: message sent", "to", to, "message_id", resp.MessageID())
	return nil
}
