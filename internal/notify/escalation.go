package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Escalation describes a rider who asked for a human.
type Escalation struct {
	SenderID   string
	SenderName string
	Lang       string
	Text       string
	At         time.Time
	AfterHours bool
}

// Escalator emails escalations to the support inbox.
type Escalator struct {
	sender EmailSender
	to     string
}

// NewEscalator returns nil when there is no sender or recipient.
func NewEscalator(sender EmailSender, to string) *Escalator {
	if sender == nil || strings.TrimSpace(to) == "" {
		return nil
	}
	return &Escalator{sender: sender, to: to}
}

// Notify sends one escalation email.
func (e *Escalator) Notify(ctx context.Context, esc Escalation) error {
	if e == nil {
		return errors.New("notify: escalation email not configured")
	}
	return e.sender.Send(ctx, EmailMessage{
		To:      e.to,
		Subject: fmt.Sprintf("WhatsApp rider wants a human: +%s", strings.TrimPrefix(esc.SenderID, "+")),
		Body:    escalationBody(esc),
	})
}

func escalationBody(esc Escalation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rider: +%s\n", strings.TrimPrefix(esc.SenderID, "+"))
	if esc.SenderName != "" {
		fmt.Fprintf(&b, "Name: %s\n", esc.SenderName)
	}
	fmt.Fprintf(&b, "Language: %s\n", esc.Lang)
	fmt.Fprintf(&b, "Received: %s\n", esc.At.UTC().Format(time.RFC3339))
	if esc.AfterHours {
		b.WriteString("Arrived outside business hours.\n")
	}
	fmt.Fprintf(&b, "\nLast message:\n%s\n\nReply on WhatsApp: https://wa.me/%s\n", esc.Text, strings.TrimPrefix(esc.SenderID, "+"))
	return b.String()
}
