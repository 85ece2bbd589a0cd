// Package bot decides how the WhatsApp bot answers each inbound message and
// delivers the answer.
package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/funnel"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/generative"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/hours"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/intent"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/language"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/leads"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/orders"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/replies"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// Reply labels recorded on lead events and metrics.
const (
	LabelSafety        = "info_sparks"
	LabelGreeting      = "greeting"
	LabelWelcome       = "welcome"
	LabelTrackPrompt   = "track_prompt"
	LabelTrackResult   = "track_result"
	LabelTrackNotFound = "track_not_found"
	LabelGenerative    = "openai"
	LabelRefusal       = "refusal"
	LabelFallback      = "fallback"
	LabelSilent        = "silent"
)

// Replier answers open questions. *generative.Client satisfies it.
type Replier interface {
	Reply(ctx context.Context, text string, lang language.Tag) string
}

// Input is everything the selector needs about one inbound message.
type Input struct {
	Sender       string
	Text         string
	Lang         language.Tag
	Intent       intent.Tag
	State        funnel.UserState
	FirstContact bool
	Now          time.Time
}

// Outcome is the selected reply. No messages means stay silent.
type Outcome struct {
	Label      string
	Intent     intent.Tag
	Messages   []string
	NextStep   funnel.Step
	Escalate   bool
	AfterHours bool
	HighIntent bool
}

// Silent reports whether nothing should be sent.
func (o Outcome) Silent() bool {
	return len(o.Messages) == 0
}

// Reply joins the messages for lead records.
func (o Outcome) Reply() string {
	return strings.Join(o.Messages, "\n\n")
}

// SelectorOptions toggles the conservative reply policies.
type SelectorOptions struct {
	SilentDrop            bool
	WelcomeOnFirstContact bool
}

// Selector picks a reply using a fixed priority:
// safety question, pending order lookup, quick command, keyword intent,
// first-contact welcome, refusal, generative answer for questions, then
// silence (or the support message when silent drop is off).
type Selector struct {
	catalog *replies.Catalog
	replier Replier
	orders  orders.Finder
	hours   hours.Window
	opts    SelectorOptions
	logger  *logging.Logger
}

// NewSelector builds a Selector. replier and finder may be nil.
func NewSelector(catalog *replies.Catalog, replier Replier, finder orders.Finder, window hours.Window, opts SelectorOptions, logger *logging.Logger) *Selector {
	if catalog == nil {
		panic("bot: reply catalog required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Selector{
		catalog: catalog,
		replier: replier,
		orders:  finder,
		hours:   window,
		opts:    opts,
		logger:  logger,
	}
}

// Select returns the outcome for in.
func (s *Selector) Select(ctx context.Context, in Input) Outcome {
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	firstContact := in.FirstContact && s.opts.WelcomeOnFirstContact

	if intent.IsSafetyQuestion(in.Text) {
		return s.canned(in, LabelSafety, replies.Safety, nil)
	}

	if in.State.Step == funnel.StepAwaitingOrderInput {
		return s.orderLookup(ctx, in)
	}

	tag, quick := intent.QuickCommand(in.Text)
	if !quick {
		tag = in.Intent
	}
	if tag != intent.Unknown && tag != "" {
		out := s.intentReply(in, tag)
		if firstContact && tag != intent.Greeting {
			welcome := s.catalog.Text(replies.Welcome, in.Lang)
			if welcome != "" {
				out.Messages = append([]string{welcome}, out.Messages...)
			}
		}
		if firstContact && tag == intent.Greeting {
			out.Label = LabelWelcome
		}
		return out
	}

	if firstContact {
		return s.canned(in, LabelWelcome, replies.Welcome, nil)
	}

	if generative.Refuses(in.Text) {
		return s.canned(in, LabelRefusal, replies.Refusal, nil)
	}

	if intent.LooksLikeQuestion(in.Text) && s.replier != nil {
		if text := s.replier.Reply(ctx, in.Text, in.Lang); text != "" {
			out := s.outcome(in, LabelGenerative)
			out.Messages = []string{text}
			return out
		}
		if s.opts.SilentDrop {
			return s.outcome(in, LabelSilent)
		}
		return s.canned(in, LabelFallback, replies.Support, nil)
	}

	if s.opts.SilentDrop {
		s.logger.Debug("bot: dropping non-question chatter", "sender_id", in.Sender, "text", logging.Snippet(in.Text, 200))
		return s.outcome(in, LabelSilent)
	}
	return s.canned(in, LabelFallback, replies.Support, nil)
}

func (s *Selector) orderLookup(ctx context.Context, in Input) Outcome {
	out := s.outcome(in, LabelTrackNotFound)
	q, ok := orders.ParseQuery(in.Text)
	if ok && s.orders != nil {
		order, err := s.orders.Lookup(ctx, q)
		switch {
		case err == nil:
			tracking := order.TrackingURL
			if tracking == "" {
				tracking = s.catalog.Links().Tracking
			}
			out.Label = LabelTrackResult
			out.Messages = s.render(replies.OrderStatus, in.Lang, map[string]string{
				"OrderName":     order.Name,
				"OrderStatus":   order.Status(),
				"OrderTracking": tracking,
			})
			return out
		case !errors.Is(err, orders.ErrNotFound):
			s.logger.Warn("bot: order lookup failed", "sender_id", in.Sender, "kind", q.Kind, "error", err)
		}
	}
	out.Messages = s.render(replies.OrderNotFound, in.Lang, nil)
	return out
}

func (s *Selector) intentReply(in Input, tag intent.Tag) Outcome {
	key, label := templateFor(tag)
	out := s.outcome(in, label)
	out.Intent = tag
	out.NextStep = funnel.Transition(in.State, string(tag)).Step
	out.HighIntent = leads.IsHighIntent(string(tag))
	if tag == intent.Human {
		out.Escalate = true
		if s.hours.Open(in.Now) {
			key = replies.HumanOpen
		} else {
			key = replies.HumanClosed
			out.AfterHours = true
		}
		out.Messages = s.render(key, in.Lang, map[string]string{"Hours": s.hours.Describe()})
		return out
	}
	out.Messages = s.render(key, in.Lang, nil)
	return out
}

func templateFor(tag intent.Tag) (replies.Key, string) {
	switch tag {
	case intent.Demo:
		return replies.Demo, string(tag)
	case intent.Order:
		return replies.Order, string(tag)
	case intent.Price:
		return replies.Price, string(tag)
	case intent.What:
		return replies.What, string(tag)
	case intent.Track:
		return replies.TrackPrompt, LabelTrackPrompt
	case intent.Return:
		return replies.Return, string(tag)
	case intent.Install:
		return replies.Install, string(tag)
	case intent.Warranty:
		return replies.Warranty, string(tag)
	case intent.Lifespan:
		return replies.Lifespan, string(tag)
	case intent.ShoeDamage:
		return replies.ShoeDamage, string(tag)
	case intent.COD:
		return replies.COD, string(tag)
	case intent.Bulk:
		return replies.Bulk, string(tag)
	case intent.Human:
		return replies.HumanOpen, string(tag)
	case intent.Help:
		return replies.Help, string(tag)
	case intent.Greeting:
		return replies.Welcome, LabelGreeting
	}
	return replies.Support, LabelFallback
}

func (s *Selector) canned(in Input, label string, key replies.Key, extra map[string]string) Outcome {
	out := s.outcome(in, label)
	out.Messages = s.render(key, in.Lang, extra)
	return out
}

// outcome starts an Outcome that leaves the rider IDLE.
func (s *Selector) outcome(in Input, label string) Outcome {
	return Outcome{Label: label, Intent: in.Intent, NextStep: funnel.StepIdle}
}

func (s *Selector) render(key replies.Key, lang language.Tag, extra map[string]string) []string {
	text, err := s.catalog.Render(key, lang, extra)
	if err != nil {
		s.logger.Error("bot: render reply failed", "template", key, "lang", lang, "error", err)
		return nil
	}
	return []string{text}
}
