// Package leads forwards a record of every answered conversation to the
// automation and analytics systems downstream of the bot.
package leads

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// highIntents are the labels that signal purchase intent.
var highIntents = map[string]bool{
	"order": true,
	"price": true,
	"bulk":  true,
}

// LeadEvent is a write-once record of one bot reply.
type LeadEvent struct {
	ID            string    `json:"id"`
	From          string    `json:"from"`
	Text          string    `json:"text"`
	AIReply       string    `json:"aiReply"`
	UserLang      string    `json:"userLang"`
	Intent        string    `json:"intent"`
	Timestamp     time.Time `json:"timestamp"`
	HighIntent    bool      `json:"highIntent,omitempty"`
	TrackingToken string    `json:"trackingToken,omitempty"`
}

// NewEvent stamps an event with an id, and flags purchase intent with a
// tracking token for attribution.
func NewEvent(from, text, reply, lang, intent string, at time.Time) LeadEvent {
	ev := LeadEvent{
		ID:        uuid.NewString(),
		From:      from,
		Text:      text,
		AIReply:   reply,
		UserLang:  lang,
		Intent:    intent,
		Timestamp: at.UTC(),
	}
	if IsHighIntent(intent) {
		ev.HighIntent = true
		ev.TrackingToken = strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	return ev
}

// IsHighIntent reports whether intent signals purchase intent.
func IsHighIntent(intent string) bool {
	return highIntents[intent]
}
