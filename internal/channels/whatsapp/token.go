package whatsapp

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// ErrTokenInvalid marks a credential the Graph API rejected.
var ErrTokenInvalid = errors.New("whatsapp: access token invalid or expired")

type tokenChecker interface {
	Configured() bool
	CheckToken(ctx context.Context) error
}

// TokenGuard remembers whether the access token was last seen working. Sends
// are skipped while it reports invalid; Validate re-arms it.
type TokenGuard struct {
	checker tokenChecker
	valid   atomic.Bool
	logger  *logging.Logger
}

// NewTokenGuard starts invalid until the first Validate succeeds.
func NewTokenGuard(checker tokenChecker, logger *logging.Logger) *TokenGuard {
	if checker == nil {
		panic("whatsapp: token checker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TokenGuard{checker: checker, logger: logger}
}

// Valid reports the last known token health.
func (g *TokenGuard) Valid() bool {
	return g != nil && g.valid.Load()
}

// Validate probes the Graph API and records the outcome. Network failures
// count as invalid, matching a failed send.
func (g *TokenGuard) Validate(ctx context.Context) bool {
	if !g.checker.Configured() {
		g.logger.Warn("whatsapp: token or phone id missing, sends disabled")
		g.valid.Store(false)
		return false
	}
	if err := g.checker.CheckToken(ctx); err != nil {
		g.logger.Error("whatsapp: token check failed", "error", err)
		g.valid.Store(false)
		return false
	}
	if !g.valid.Swap(true) {
		g.logger.Info("whatsapp: token OK")
	}
	return true
}

// MarkInvalid flips the guard after a send was rejected for auth reasons.
func (g *TokenGuard) MarkInvalid(err error) {
	if g.valid.Swap(false) {
		g.logger.Error("whatsapp: token expired or invalid, rotate the token", "error", err)
	}
}
