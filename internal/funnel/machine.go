// Package funnel tracks where each rider is in the scripted sales conversation.
package funnel

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/kv"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// Step is a funnel state.
type Step string

const (
	StepIdle               Step = "IDLE"
	StepAwaitingOrderInput Step = "AWAITING_ORDER_INPUT"

	DefaultTTL = 30 * 24 * time.Hour

	keyPrefix = "funnel:"
)

// UserState is the persisted per-rider record.
type UserState struct {
	Step       Step      `json:"step"`
	LastIntent string    `json:"lastIntent,omitempty"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// Idle returns a fresh IDLE state.
func Idle() UserState {
	return UserState{Step: StepIdle}
}

// Machine loads and saves UserState over a kv.Store.
type Machine struct {
	store  kv.Store
	ttl    time.Duration
	now    func() time.Time
	logger *logging.Logger
}

// New creates a Machine. ttl <= 0 uses DefaultTTL.
func New(store kv.Store, ttl time.Duration, logger *logging.Logger) *Machine {
	if store == nil {
		panic("funnel: store required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Machine{store: store, ttl: ttl, now: time.Now, logger: logger}
}

// WithClock overrides the time source (tests).
func (m *Machine) WithClock(now func() time.Time) *Machine {
	if now != nil {
		m.now = now
	}
	return m
}

func key(sender string) string {
	return keyPrefix + sender
}

// Load returns the rider's state and whether this is their first contact.
// Store failures degrade to IDLE and not-first-contact so nobody is welcomed twice.
func (m *Machine) Load(ctx context.Context, sender string) (UserState, bool) {
	raw, err := m.store.Get(ctx, key(sender))
	if errors.Is(err, kv.ErrNotFound) {
		return Idle(), true
	}
	if err != nil {
		m.logger.Warn("funnel: load state failed", "sender_id", sender, "error", err)
		return Idle(), false
	}
	var st UserState
	if err := json.Unmarshal(raw, &st); err != nil {
		m.logger.Warn("funnel: unreadable state", "sender_id", sender, "error", err)
		return Idle(), false
	}
	if st.Step == "" {
		st.Step = StepIdle
	}
	return st, false
}

// Save persists the state, stamping LastSeenAt.
func (m *Machine) Save(ctx context.Context, sender string, st UserState) error {
	if st.Step == "" {
		st.Step = StepIdle
	}
	st.LastSeenAt = m.now()
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, key(sender), raw, m.ttl); err != nil {
		m.logger.Warn("funnel: save state failed", "sender_id", sender, "error", err)
		return err
	}
	return nil
}

// Transition applies the funnel rules for one inbound message:
// IDLE + track waits for order input, AWAITING_ORDER_INPUT always returns to IDLE
// once the input is consumed, and everything else stays put.
func Transition(st UserState, intent string) UserState {
	next := st
	next.LastIntent = intent
	switch st.Step {
	case StepAwaitingOrderInput:
		next.Step = StepIdle
	default:
		if intent == "track" {
			next.Step = StepAwaitingOrderInput
		} else {
			next.Step = StepIdle
		}
	}
	return next
}
