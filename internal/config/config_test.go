package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "VERIFY_TOKEN", "OPENAI_MODEL", "MAX_TOKENS", "TEMPERATURE", "DEDUPE_WINDOW", "STATE_BACKEND", "SUPPORT_CONTACT", "ESCALATION_EMAIL", "PHONE_ID", "PHONE_NUMBER_ID", "WHATSAPP_TOKEN", "SILENT_DROP", "MAKE_WEBHOOK_URL", "FLIPKART_LINK", "DEMO_VIDEO_LINK"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "3000" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.VerifyToken != "turbothrill123" {
		t.Fatalf("expected default verify token, got %s", cfg.VerifyToken)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected default model, got %s", cfg.OpenAIModel)
	}
	if cfg.MaxTokens != 200 || cfg.Temperature != 0.45 {
		t.Fatalf("unexpected sampling defaults %d %v", cfg.MaxTokens, cfg.Temperature)
	}
	if cfg.DedupeWindow != 45*time.Second {
		t.Fatalf("expected 45s dedupe window, got %s", cfg.DedupeWindow)
	}
	if cfg.StateBackend != "memory" {
		t.Fatalf("expected memory backend, got %s", cfg.StateBackend)
	}
	if cfg.FlipkartLink != DefaultFlipkartLink || cfg.DemoVideoLink != DefaultDemoVideoLink {
		t.Fatalf("expected default links")
	}
	if cfg.LeadWebhookURL != DefaultLeadWebhook {
		t.Fatalf("expected default lead webhook, got %s", cfg.LeadWebhookURL)
	}
	if cfg.EscalationEmail != "Support@turbothrill.in" {
		t.Fatalf("expected escalation email to follow support contact, got %s", cfg.EscalationEmail)
	}
	if !cfg.SilentDrop {
		t.Fatalf("expected silent drop enabled by default")
	}
	if cfg.WhatsAppConfigured() {
		t.Fatalf("expected whatsapp unconfigured without token")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WHATSAPP_TOKEN", "tok")
	t.Setenv("PHONE_ID", "")
	t.Setenv("PHONE_NUMBER_ID", "1234")
	t.Setenv("GRAPH_API_BASE", "https://graph.facebook.com/v19.0/")
	t.Setenv("TEMPERATURE", "0.7")
	t.Setenv("DEDUPE_WINDOW", "30s")
	t.Setenv("SILENT_DROP", "false")
	t.Setenv("STATE_BACKEND", " Redis ")
	t.Setenv("SUPPORT_CONTACT", "help@example.com")
	t.Setenv("ESCALATION_EMAIL", "")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.PhoneID != "1234" {
		t.Fatalf("expected PHONE_NUMBER_ID alias, got %s", cfg.PhoneID)
	}
	if !cfg.WhatsAppConfigured() {
		t.Fatalf("expected whatsapp configured")
	}
	if cfg.GraphAPIBase != "https://graph.facebook.com/v19.0" {
		t.Fatalf("expected trimmed graph base, got %s", cfg.GraphAPIBase)
	}
	if cfg.Temperature != 0.7 {
		t.Fatalf("expected temperature override, got %v", cfg.Temperature)
	}
	if cfg.DedupeWindow != 30*time.Second {
		t.Fatalf("expected dedupe override, got %s", cfg.DedupeWindow)
	}
	if cfg.SilentDrop {
		t.Fatalf("expected silent drop disabled")
	}
	if cfg.StateBackend != "redis" {
		t.Fatalf("expected normalized backend, got %q", cfg.StateBackend)
	}
	if cfg.EscalationEmail != "help@example.com" {
		t.Fatalf("expected escalation email from support contact, got %s", cfg.EscalationEmail)
	}
}

func TestGenerativeMaxTokens(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 120},
		{80, 80},
		{200, 200},
		{500, 200},
	}
	for _, tt := range tests {
		cfg := &Config{MaxTokens: tt.in}
		if got := cfg.GenerativeMaxTokens(); got != tt.want {
			t.Fatalf("GenerativeMaxTokens(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_TOKENS", "lots")
	t.Setenv("TEMPERATURE", "warm")
	t.Setenv("TOKEN_CHECK_INTERVAL", "soon")
	cfg := Load()
	if cfg.MaxTokens != 200 || cfg.Temperature != 0.45 || cfg.TokenCheckInterval != 15*time.Minute {
		t.Fatalf("expected defaults for malformed values, got %d %v %s", cfg.MaxTokens, cfg.Temperature, cfg.TokenCheckInterval)
	}
}
