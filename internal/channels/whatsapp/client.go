package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultGraphAPIBase = "https://graph.facebook.com/v16.0"
	defaultHTTPTimeout  = 10 * time.Second
	maxResponseBody     = 64 << 10
)

// Client talks to the WhatsApp Cloud API for one business phone number.
type Client struct {
	token        string
	phoneID      string
	graphAPIBase string
	httpClient   *http.Client
}

// NewClient creates a Cloud API client. timeout <= 0 uses 10s.
func NewClient(token, phoneID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Client{
		token:        token,
		phoneID:      phoneID,
		graphAPIBase: DefaultGraphAPIBase,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// SetGraphAPIBase overrides the Graph API base URL (useful for testing).
func (c *Client) SetGraphAPIBase(base string) {
	if base = strings.TrimRight(base, "/"); base != "" {
		c.graphAPIBase = base
	}
}

// Configured reports whether both the token and phone number id are set.
func (c *Client) Configured() bool {
	return c != nil && c.token != "" && c.phoneID != ""
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) (*SendResponse, error) {
	payload, err := json.Marshal(SendTextRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             Text{Body: body},
	})
	if err != nil {
		return nil, fmt.Errorf("whatsapp: marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.graphAPIBase, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: send message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: read response: %w", err)
	}

	var sendResp SendResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &sendResp); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("whatsapp: unmarshal response: %w", err)
		}
	}
	if apiErr := apiErrorFrom(resp.StatusCode, sendResp.Error, respBody); apiErr != nil {
		return &sendResp, apiErr
	}
	return &sendResp, nil
}

// CheckToken asks the Graph API for the phone number object, which only
// succeeds with a live token.
func (c *Client) CheckToken(ctx context.Context) error {
	url := fmt.Sprintf("%s/%s", c.graphAPIBase, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("whatsapp: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: check token: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("whatsapp: read response: %w", err)
	}
	var body struct {
		Error *APIError `json:"error"`
	}
	_ = json.Unmarshal(respBody, &body)
	if apiErr := apiErrorFrom(resp.StatusCode, body.Error, respBody); apiErr != nil {
		return apiErr
	}
	return nil
}

// apiErrorFrom returns an *APIError for an error body or a non-2xx status.
func apiErrorFrom(status int, parsed *APIError, raw []byte) error {
	if parsed != nil {
		parsed.StatusCode = status
		return parsed
	}
	if status < 200 || status >= 300 {
		return &APIError{StatusCode: status, Message: strings.TrimSpace(string(raw))}
	}
	return nil
}
