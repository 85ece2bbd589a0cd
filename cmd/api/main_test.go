package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/app/bootstrap"
	appconfig "github.com/konainfatima28/Turbothrill-Webhook-Test/internal/config"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

func TestNewServerTimeouts(t *testing.T) {
	srv := newServer("3000", http.NotFoundHandler())
	if srv.Addr != ":3000" {
		t.Fatalf("unexpected addr %q", srv.Addr)
	}
	if srv.ReadTimeout != 15*time.Second || srv.WriteTimeout != 15*time.Second {
		t.Fatalf("unexpected timeouts %v/%v", srv.ReadTimeout, srv.WriteTimeout)
	}
}

func TestServerWithZeroConfigExposesMetrics(t *testing.T) {
	t.Setenv("STATE_BACKEND", "memory")
	t.Setenv("MAKE_WEBHOOK_URL", "")
	cfg := appconfig.Load()
	cfg.LeadWebhookURL = ""

	reg := prometheus.NewRegistry()
	logger := logging.NewWithFormat("error", "text", io.Discard)
	app, err := bootstrap.BuildApp(context.Background(), cfg, aws.Config{}, reg, logger)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer app.Close()

	srv := httptest.NewServer(app.Handler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "TurboBot webhook running") {
		t.Fatalf("unexpected root body %q", body)
	}

	app.Metrics.ObserveInbound("handled")
	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "turbothrill_whatsapp_inbound_messages_total") {
		t.Fatalf("expected inbound counter to be exported")
	}
}
