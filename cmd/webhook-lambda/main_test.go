package main

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

func event(method, path, query, body string, headers map[string]string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath:        path,
		RawQueryString: query,
		Body:           body,
		Headers:        headers,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   method,
				Path:     path,
				SourceIP: "203.0.113.9",
			},
		},
	}
}

func TestHandleRejectsUnknownPath(t *testing.T) {
	cfg := config{upstreamBaseURL: "http://example.com", upstreamTimeout: time.Second}
	resp, err := handle(context.Background(), cfg, &http.Client{}, event(http.MethodPost, "/webhooks/unknown", "", "", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestHandleRejectsOtherMethods(t *testing.T) {
	cfg := config{upstreamBaseURL: "http://example.com", upstreamTimeout: time.Second}
	resp, _ := handle(context.Background(), cfg, &http.Client{}, event(http.MethodPut, "/webhook", "", "", nil))
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	resp, _ = handle(context.Background(), cfg, &http.Client{}, event(http.MethodPost, "/health", "", "", nil))
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST /health, got %d", resp.StatusCode)
	}
}

func TestHandleForwardsVerificationQuery(t *testing.T) {
	var gotQuery, gotMethod string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(r.URL.Query().Get("hub.challenge")))
	}))
	defer upstream.Close()

	cfg := config{upstreamBaseURL: upstream.URL, upstreamTimeout: time.Second}
	query := "hub.mode=subscribe&hub.verify_token=t&hub.challenge=777"
	resp, err := handle(context.Background(), cfg, upstream.Client(), event(http.MethodGet, "/webhook", query, "", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || resp.Body != "777" {
		t.Fatalf("expected challenge echo, got %d %q", resp.StatusCode, resp.Body)
	}
	if gotMethod != http.MethodGet || gotQuery != query {
		t.Fatalf("unexpected upstream request %s ?%s", gotMethod, gotQuery)
	}
}

func TestHandleForwardsSignedPost(t *testing.T) {
	var gotBody, gotSig, gotCT, gotIP string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotSig = r.Header.Get("X-Hub-Signature-256")
		gotCT = r.Header.Get("Content-Type")
		gotIP = r.Header.Get("X-Real-Ip")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	payload := `{"object":"whatsapp_business_account"}`
	evt := event(http.MethodPost, "/webhook", "", base64.StdEncoding.EncodeToString([]byte(payload)), map[string]string{
		"Content-Type":        "application/json",
		"X-Hub-Signature-256": "sha256=abc",
	})
	evt.IsBase64Encoded = true

	cfg := config{upstreamBaseURL: upstream.URL, upstreamTimeout: time.Second}
	resp, err := handle(context.Background(), cfg, upstream.Client(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotBody != payload || gotSig != "sha256=abc" || gotCT != "application/json" {
		t.Fatalf("request not forwarded intact: body=%q sig=%q ct=%q", gotBody, gotSig, gotCT)
	}
	if gotIP != "203.0.113.9" {
		t.Fatalf("expected source ip forwarded, got %q", gotIP)
	}
	if resp.Headers["content-type"] != "text/plain" {
		t.Fatalf("expected content type relayed, got %v", resp.Headers)
	}
}

func TestHandleUpstreamDown(t *testing.T) {
	cfg := config{upstreamBaseURL: "http://127.0.0.1:1", upstreamTimeout: 200 * time.Millisecond}
	resp, err := handle(context.Background(), cfg, &http.Client{Timeout: 200 * time.Millisecond}, event(http.MethodGet, "/health", "", "", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestHandleInvalidBase64(t *testing.T) {
	cfg := config{upstreamBaseURL: "http://example.com", upstreamTimeout: time.Second}
	evt := event(http.MethodPost, "/webhook", "", "%%%", nil)
	evt.IsBase64Encoded = true
	resp, _ := handle(context.Background(), cfg, &http.Client{}, evt)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error without UPSTREAM_BASE_URL")
	}

	t.Setenv("UPSTREAM_BASE_URL", "https://bot.example.com/")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.upstreamBaseURL != "https://bot.example.com" || cfg.upstreamTimeout != 3*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}

	t.Setenv("UPSTREAM_TIMEOUT", "soon")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error for bad timeout")
	}
}
