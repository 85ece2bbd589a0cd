package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/channels/whatsapp"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/leads"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/notify"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/tasks"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// MessageSender delivers one text message. *whatsapp.Sender satisfies it.
type MessageSender interface {
	SendText(ctx context.Context, to, body string) error
}

// LeadForwarder records an answered conversation downstream.
type LeadForwarder interface {
	Forward(ctx context.Context, ev leads.LeadEvent) error
}

// EscalationNotifier tells the support team a rider wants a human.
type EscalationNotifier interface {
	Notify(ctx context.Context, esc notify.Escalation) error
}

// DispatcherDeps groups the dispatcher collaborators. Leads and Escalator
// are optional.
type DispatcherDeps struct {
	Engine    *Engine
	Sender    MessageSender
	Leads     LeadForwarder
	Escalator EscalationNotifier
	// Inbound runs whole messages off the webhook request.
	Inbound *tasks.Runner
	// Background runs lead forwarding and escalation emails.
	Background *tasks.Runner
	Logger     *logging.Logger
}

// Dispatcher turns engine results into outbound sends and side tasks.
type Dispatcher struct {
	engine     *Engine
	sender     MessageSender
	leads      LeadForwarder
	escalator  EscalationNotifier
	inbound    *tasks.Runner
	background *tasks.Runner
	logger     *logging.Logger
}

// NewDispatcher validates deps.
func NewDispatcher(deps DispatcherDeps) (*Dispatcher, error) {
	if deps.Engine == nil {
		return nil, errors.New("bot: engine is required")
	}
	if deps.Sender == nil {
		return nil, errors.New("bot: sender is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	inbound := deps.Inbound
	if inbound == nil {
		inbound = tasks.NewRunner(0, nil, logger)
	}
	background := deps.Background
	if background == nil {
		background = inbound
	}
	return &Dispatcher{
		engine:     deps.Engine,
		sender:     deps.Sender,
		leads:      deps.Leads,
		escalator:  deps.Escalator,
		inbound:    inbound,
		background: background,
		logger:     logger,
	}, nil
}

// Submit processes msg in the background so the webhook can answer at once.
// It matches the whatsapp.WebhookHandler callback signature.
func (d *Dispatcher) Submit(msg whatsapp.InboundMessage) {
	d.inbound.Go("process_message", func(ctx context.Context) error {
		return d.Process(ctx, msg)
	})
}

// Process runs the engine and sends the selected reply. Send failures are
// returned; lead and escalation side tasks never affect the result.
func (d *Dispatcher) Process(ctx context.Context, msg whatsapp.InboundMessage) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("bot: process panicked", "sender_id", msg.SenderID, "panic", rec, "stack", string(debug.Stack()))
			err = fmt.Errorf("bot: process panicked: %v", rec)
		}
	}()

	res := d.engine.Handle(ctx, msg)
	if res.Skipped() {
		return nil
	}
	out := res.Outcome

	var sendErrs []error
	for _, body := range out.Messages {
		if err := d.sender.SendText(ctx, msg.SenderID, body); err != nil {
			if errors.Is(err, whatsapp.ErrSendSkipped) {
				d.logger.Warn("bot: send skipped", "sender_id", msg.SenderID, "label", out.Label)
				break
			}
			sendErrs = append(sendErrs, err)
		}
	}

	if !out.Silent() {
		d.forwardLead(res)
	}
	if out.Escalate {
		d.escalate(res)
	}
	return errors.Join(sendErrs...)
}

func (d *Dispatcher) forwardLead(res Result) {
	if d.leads == nil {
		return
	}
	ev := leads.NewEvent(
		res.Message.SenderID,
		res.Message.Text,
		res.Outcome.Reply(),
		string(res.Lang),
		res.Outcome.Label,
		res.Message.ReceivedAt,
	)
	d.background.Go("lead_forward", func(ctx context.Context) error {
		return d.leads.Forward(ctx, ev)
	})
}

func (d *Dispatcher) escalate(res Result) {
	if d.escalator == nil {
		d.logger.Warn("bot: human requested but escalation email not configured", "sender_id", res.Message.SenderID)
		return
	}
	esc := notify.Escalation{
		SenderID:   res.Message.SenderID,
		SenderName: res.Message.SenderName,
		Lang:       string(res.Lang),
		Text:       res.Message.Text,
		At:         res.Message.ReceivedAt,
		AfterHours: res.Outcome.AfterHours,
	}
	d.background.Go("escalation_email", func(ctx context.Context) error {
		return d.escalator.Notify(ctx, esc)
	})
}

// Wait drains in-flight messages and side tasks.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if err := d.inbound.Wait(ctx); err != nil {
		return err
	}
	if d.background != d.inbound {
		return d.background.Wait(ctx)
	}
	return nil
}
