package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/observability/metrics"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

const maxWebhookBody = 1 << 20

// WebhookHandler handles Cloud API verification and inbound deliveries.
type WebhookHandler struct {
	verifyToken string
	appSecret   string
	onMessage   func(msg InboundMessage)
	metrics     *metrics.BotMetrics
	logger      *logging.Logger
	now         func() time.Time
}

// NewWebhookHandler creates a handler. onMessage is called once per parsed
// message and must not block. An empty appSecret disables signature checks.
func NewWebhookHandler(verifyToken, appSecret string, onMessage func(InboundMessage), m *metrics.BotMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		onMessage:   onMessage,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// HandleVerification answers the GET subscription handshake. Requests without
// hub.mode/hub.verify_token are plain liveness probes and get "OK".
func (h *WebhookHandler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "" || token == "" {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
		return
	}
	if mode == "subscribe" && token == h.verifyToken {
		h.logger.Info("whatsapp: webhook verified")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, challenge)
		return
	}
	h.logger.Warn("whatsapp: webhook verification rejected", "mode", mode)
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleInbound accepts POST deliveries. It answers 200 once the body parses
// and hands each message to onMessage.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	started := h.now()
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("whatsapp: webhook handler panic", "panic", rec, "stack", string(debug.Stack()))
			h.metrics.ObserveInbound("panic")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		h.metrics.ObserveWebhookLatency(r.Method, h.now().Sub(started).Seconds())
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if h.appSecret != "" && !VerifySignature(h.appSecret, body, r.Header.Get("X-Hub-Signature-256")) {
		h.logger.Warn("whatsapp: invalid webhook signature")
		h.metrics.ObserveInbound("bad_signature")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("whatsapp: decode webhook body", "error", err)
		h.metrics.ObserveInbound("decode_error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	messages := ParseWebhookEvent(event, h.now())
	if len(messages) == 0 {
		h.logger.Debug("whatsapp: no messages found in payload", "object", event.Object)
		h.metrics.ObserveInbound("empty")
	}
	for _, msg := range messages {
		h.metrics.ObserveInbound("accepted")
		if h.onMessage != nil {
			h.onMessage(msg)
		}
	}
	w.WriteHeader(http.StatusOK)
}

// ParseWebhookEvent flattens every entry/change/message into InboundMessages.
// Messages without a sender or text (media, reactions) are skipped.
func ParseWebhookEvent(event WebhookEvent, now time.Time) []InboundMessage {
	var out []InboundMessage
	add := func(m Message, meta Metadata, contacts []Contact) {
		text := messageText(m)
		if m.From == "" || text == "" {
			return
		}
		msg := InboundMessage{
			SenderID:    m.From,
			Text:        text,
			MessageID:   m.ID,
			ReceivedAt:  parseTimestamp(m.Timestamp, now),
			PhoneNumber: meta.PhoneNumberID,
		}
		for _, c := range contacts {
			if c.WaID == m.From {
				msg.SenderName = c.Profile.Name
			}
		}
		out = append(out, msg)
	}

	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				add(m, change.Value.Metadata, change.Value.Contacts)
			}
		}
	}
	for _, m := range event.Messages {
		add(m, Metadata{}, nil)
	}
	return out
}

// VerifySignature checks the X-Hub-Signature-256 header ("sha256=<hex>").
func VerifySignature(appSecret string, body []byte, signature string) bool {
	if appSecret == "" || signature == "" {
		return false
	}
	const prefix = "sha256="
	if len(signature) <= len(prefix) || signature[:len(prefix)] != prefix {
		return false
	}
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature[len(prefix):]))
}

// Sign returns the X-Hub-Signature-256 value for body.
func Sign(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
