// Package dedupe suppresses webhook redeliveries and rapid repeats from the same rider.
//
// Message-ID dedupe is exact and always on. The content window is a
// supplementary anti-spam check over (sender, text[, intent]).
package dedupe

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/kv"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

const (
	DefaultWindow       = 45 * time.Second
	DefaultMessageIDTTL = 24 * time.Hour

	messageKeyPrefix = "msgid:"
	contentKeyPrefix = "dedupe:"
)

// Entry is the last inbound message seen from a sender.
type Entry struct {
	Text       string    `json:"text"`
	Intent     string    `json:"intent"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// Options tunes a Suppressor. Zero values pick the defaults.
type Options struct {
	Window       time.Duration
	MessageIDTTL time.Duration
	MatchIntent  bool
}

// Suppressor answers "have we already handled this?" for inbound messages.
type Suppressor struct {
	store        kv.Store
	window       time.Duration
	messageIDTTL time.Duration
	matchIntent  bool
	now          func() time.Time
	logger       *logging.Logger
}

// New wires a Suppressor over the given store.
func New(store kv.Store, opts Options, logger *logging.Logger) *Suppressor {
	if store == nil {
		panic("dedupe: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.MessageIDTTL <= 0 {
		opts.MessageIDTTL = DefaultMessageIDTTL
	}
	return &Suppressor{
		store:        store,
		window:       opts.Window,
		messageIDTTL: opts.MessageIDTTL,
		matchIntent:  opts.MatchIntent,
		now:          time.Now,
		logger:       logger,
	}
}

// WithClock overrides the time source (tests).
func (s *Suppressor) WithClock(now func() time.Time) *Suppressor {
	if now != nil {
		s.now = now
	}
	return s
}

// Window returns the content dedupe window.
func (s *Suppressor) Window() time.Duration {
	return s.window
}

// SeenMessage claims a provider message ID and reports whether it was already claimed.
// Empty IDs are never duplicates. Store failures are logged and treated as unseen.
func (s *Suppressor) SeenMessage(ctx context.Context, messageID string) bool {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return false
	}
	claimed, err := s.store.SetNX(ctx, messageKeyPrefix+messageID, []byte("1"), s.messageIDTTL)
	if err != nil {
		s.logger.Warn("dedupe: message id claim failed", "message_id", messageID, "error", err)
		return false
	}
	return !claimed
}

// IsDuplicate reports whether text repeats the sender's previous message inside the
// window. The stored entry is overwritten with the current message on every call.
func (s *Suppressor) IsDuplicate(ctx context.Context, sender, text, intent string) bool {
	if sender == "" {
		return false
	}
	key := contentKeyPrefix + sender
	now := s.now()

	var prev *Entry
	raw, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		var e Entry
		if jerr := json.Unmarshal(raw, &e); jerr != nil {
			s.logger.Warn("dedupe: discarding unreadable entry", "sender_id", sender, "error", jerr)
		} else {
			prev = &e
		}
	case errors.Is(err, kv.ErrNotFound):
	default:
		s.logger.Warn("dedupe: load entry failed", "sender_id", sender, "error", err)
	}

	next, _ := json.Marshal(Entry{Text: text, Intent: intent, LastSeenAt: now})
	// Kept past the window so boundary checks read the real timestamp.
	if err := s.store.Set(ctx, key, next, 2*s.window); err != nil {
		s.logger.Warn("dedupe: save entry failed", "sender_id", sender, "error", err)
	}

	if prev == nil || prev.Text != text {
		return false
	}
	if s.matchIntent && prev.Intent != intent {
		return false
	}
	return now.Sub(prev.LastSeenAt) < s.window
}
