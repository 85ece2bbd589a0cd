package whatsapp

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const samplePayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "WABA",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "metadata": {"display_phone_number": "919000000000", "phone_number_id": "PNID"},
        "contacts": [{"wa_id": "919812345678", "profile": {"name": "Rider"}}],
        "messages": [
          {"id": "wamid.1", "from": "919812345678", "timestamp": "1717243200", "type": "text", "text": {"body": "DEMO"}},
          {"id": "wamid.2", "from": "919812345678", "timestamp": "1717243201", "type": "interactive",
           "interactive": {"type": "button_reply", "button_reply": {"id": "b1", "title": "ORDER"}}},
          {"id": "wamid.3", "from": "919812345678", "type": "image"}
        ]
      }
    }]
  }]
}`

func TestVerifySignature(t *testing.T) {
	secret := "app_secret"
	body := []byte(samplePayload)
	valid := Sign(secret, body)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		want      bool
	}{
		{"valid signature", secret, body, valid, true},
		{"wrong signature", secret, body, "sha256=" + strings.Repeat("0", 64), false},
		{"empty signature", secret, body, "", false},
		{"empty secret", "", body, valid, false},
		{"missing prefix", secret, body, strings.TrimPrefix(valid, "sha256="), false},
		{"tampered body", secret, []byte(`{}`), valid, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySignature(tt.secret, tt.body, tt.signature); got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleVerification(t *testing.T) {
	h := NewWebhookHandler("turbothrill123", "", nil, nil, nil)

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantBody string
	}{
		{"valid challenge", "?hub.mode=subscribe&hub.verify_token=turbothrill123&hub.challenge=CH_1", http.StatusOK, "CH_1"},
		{"wrong token", "?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=CH_1", http.StatusForbidden, ""},
		{"wrong mode", "?hub.mode=unsubscribe&hub.verify_token=turbothrill123&hub.challenge=CH_1", http.StatusForbidden, ""},
		{"no params", "", http.StatusOK, "OK"},
		{"mode only", "?hub.mode=subscribe", http.StatusOK, "OK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleVerification(w, httptest.NewRequest(http.MethodGet, "/webhook"+tt.query, nil))
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Fatalf("expected body %q, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}

type collector struct {
	mu   sync.Mutex
	msgs []InboundMessage
}

func (c *collector) add(m InboundMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
}

func TestHandleInbound(t *testing.T) {
	var got collector
	h := NewWebhookHandler("v", "", got.add, nil, nil)

	w := httptest.NewRecorder()
	h.HandleInbound(w, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(samplePayload)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(got.msgs) != 2 {
		t.Fatalf("expected 2 text messages, got %d", len(got.msgs))
	}
	first := got.msgs[0]
	if first.SenderID != "919812345678" || first.Text != "DEMO" || first.MessageID != "wamid.1" {
		t.Fatalf("unexpected first message %+v", first)
	}
	if first.SenderName != "Rider" || first.PhoneNumber != "PNID" {
		t.Fatalf("expected contact name and phone id, got %+v", first)
	}
	if !first.ReceivedAt.Equal(time.Unix(1717243200, 0)) {
		t.Fatalf("unexpected timestamp %v", first.ReceivedAt)
	}
	if got.msgs[1].Text != "ORDER" {
		t.Fatalf("expected button reply title, got %q", got.msgs[1].Text)
	}
}

func TestHandleInboundSignature(t *testing.T) {
	var got collector
	h := NewWebhookHandler("v", "app_secret", got.add, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(samplePayload))
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")
	h.HandleInbound(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if len(got.msgs) != 0 {
		t.Fatalf("unsigned payload must not be processed")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(samplePayload))
	req.Header.Set("X-Hub-Signature-256", Sign("app_secret", []byte(samplePayload)))
	h.HandleInbound(w, req)
	if w.Code != http.StatusOK || len(got.msgs) != 2 {
		t.Fatalf("expected signed payload accepted, got %d / %d msgs", w.Code, len(got.msgs))
	}
}

func TestHandleInboundEdgeCases(t *testing.T) {
	var got collector
	h := NewWebhookHandler("v", "", got.add, nil, nil)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"malformed json", `{"entry":`, http.StatusInternalServerError},
		{"no messages", `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"statuses":[{"id":"x","status":"read"}]}}]}]}`, http.StatusOK},
		{"empty object", `{}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleInbound(w, httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(tt.body)))
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
	if len(got.msgs) != 0 {
		t.Fatalf("expected no messages, got %d", len(got.msgs))
	}
}

func TestHandleInboundRecoversPanic(t *testing.T) {
	h := NewWebhookHandler("v", "", func(InboundMessage) { panic("boom") }, nil, nil)
	w := httptest.NewRecorder()
	h.HandleInbound(w, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(samplePayload)))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", w.Code)
	}
}

func TestParseWebhookEventFlattenedRelay(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	event := WebhookEvent{Messages: []Message{{ID: "m", From: "91", Text: &Text{Body: "hi"}}}}
	msgs := ParseWebhookEvent(event, now)
	if len(msgs) != 1 || msgs[0].Text != "hi" || !msgs[0].ReceivedAt.Equal(now) {
		t.Fatalf("unexpected parse %+v", msgs)
	}
}

func TestMessageTextVariants(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"text", Message{Text: &Text{Body: "hi"}}, "hi"},
		{"list reply", Message{Interactive: &Interactive{ListReply: &Reply{Title: "TRACK"}}}, "TRACK"},
		{"template button", Message{Button: &Button{Text: "DEMO"}}, "DEMO"},
		{"media", Message{Type: "image"}, ""},
	}
	for _, tt := range tests {
		if got := messageText(tt.msg); got != tt.want {
			t.Errorf("%s: got %q want %q", tt.name, got, tt.want)
		}
	}
}
