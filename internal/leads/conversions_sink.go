package leads

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
)

const defaultGraphAPIBase = "https://graph.facebook.com/v16.0"

// ConversionsSink reports high-intent leads to the Meta Conversions API as
// "Lead" events. Other events are ignored.
type ConversionsSink struct {
	pixelID      string
	accessToken  string
	graphAPIBase string
	httpClient   *http.Client
}

// NewConversionsSink returns nil unless both pixel id and token are set.
func NewConversionsSink(pixelID, accessToken string, timeout time.Duration) *ConversionsSink {
	if pixelID == "" || accessToken == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ConversionsSink{
		pixelID:      pixelID,
		accessToken:  accessToken,
		graphAPIBase: defaultGraphAPIBase,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// SetGraphAPIBase overrides the Graph API base URL (useful for testing).
func (s *ConversionsSink) SetGraphAPIBase(base string) {
	s.graphAPIBase = strings.TrimRight(base, "/")
}

func (s *ConversionsSink) Name() string { return "meta_capi" }

type capiEvent struct {
	EventName        string         `json:"event_name"`
	EventTime        int64          `json:"event_time"`
	EventID          string         `json:"event_id"`
	ActionSource     string         `json:"action_source"`
	MessagingChannel string         `json:"messaging_channel"`
	UserData         map[string]any `json:"user_data"`
	CustomData       map[string]any `json:"custom_data,omitempty"`
}

func (s *ConversionsSink) Send(ctx context.Context, ev LeadEvent) error {
	if !ev.HighIntent {
		return nil
	}
	payload := map[string]any{
		"data": []capiEvent{{
			EventName:        "Lead",
			EventTime:        ev.Timestamp.Unix(),
			EventID:          ev.ID,
			ActionSource:     "business_messaging",
			MessagingChannel: "whatsapp",
			UserData:         map[string]any{"ph": []string{HashPhone(ev.From)}},
			CustomData: map[string]any{
				"intent":         ev.Intent,
				"tracking_token": ev.TrackingToken,
				"language":       ev.UserLang,
			},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("leads: marshal capi event: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s/events?access_token=%s", s.graphAPIBase, s.pixelID, url.QueryEscape(s.accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("leads: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("leads: post capi event: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("leads: capi returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// HashPhone normalizes a phone number to digits and returns its SHA-256 hex.
func HashPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	sum := sha256.Sum256([]byte(digits))
	return hex.EncodeToString(sum[:])
}
