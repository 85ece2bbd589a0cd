package whatsapp

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// WebhookEvent is the top-level Cloud API callback body.
type WebhookEvent struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
	// Messages is set by relays that post the change value directly.
	Messages []Message `json:"messages,omitempty"`
}

// Entry is one business account entry.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a field update.
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value carries inbound messages and delivery statuses.
type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// Message is one inbound user message.
type Message struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
	Button      *Button      `json:"button,omitempty"`
}

type Text struct {
	Body string `json:"body"`
}

type Interactive struct {
	Type        string `json:"type"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
	ListReply   *Reply `json:"list_reply,omitempty"`
}

type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Button is a quick-reply tap on a template message.
type Button struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

// Status is a delivery receipt; the bot ignores these.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}

// InboundMessage is the normalized result of parsing a webhook event.
type InboundMessage struct {
	SenderID    string
	SenderName  string
	Text        string
	MessageID   string
	ReceivedAt  time.Time
	PhoneNumber string
}

// SendTextRequest is the Cloud API text message payload.
type SendTextRequest struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             Text   `json:"text"`
}

// SendResponse is the Cloud API reply to a send.
type SendResponse struct {
	Contacts []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts,omitempty"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// MessageID returns the first accepted message id, if any.
func (r *SendResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

// APIError is a Graph API error body plus the HTTP status it arrived with.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Code       int    `json:"code"`
	Subcode    int    `json:"error_subcode,omitempty"`
	FBTraceID  string `json:"fbtrace_id,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp: API error %d (status %d): %s", e.Code, e.StatusCode, e.Message)
}

// Graph codes for expired or invalid access tokens.
const (
	codeOAuthException = 190
	codeSessionInvalid = 102
)

// IsAuthError reports whether the credential itself was rejected.
func (e *APIError) IsAuthError() bool {
	if e == nil {
		return false
	}
	return e.Code == codeOAuthException || e.Code == codeSessionInvalid || e.StatusCode == http.StatusUnauthorized
}

// messageText extracts the user-visible text of any supported message kind.
func messageText(m Message) string {
	switch {
	case m.Text != nil && m.Text.Body != "":
		return m.Text.Body
	case m.Interactive != nil && m.Interactive.ButtonReply != nil:
		return m.Interactive.ButtonReply.Title
	case m.Interactive != nil && m.Interactive.ListReply != nil:
		return m.Interactive.ListReply.Title
	case m.Button != nil:
		return m.Button.Text
	}
	return ""
}

func parseTimestamp(v string, fallback time.Time) time.Time {
	secs, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Unix(secs, 0).UTC()
}
