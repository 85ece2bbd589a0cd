package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/konainfatima28/Turbothrill-Webhook-Test/internal/config"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/generative"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/kv"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/language"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/replies"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewWithFormat("error", "text", io.Discard)
}

func baseConfig() *appconfig.Config {
	return &appconfig.Config{
		StateBackend:          "memory",
		VerifyToken:           "verify",
		GraphAPIBase:          "https://graph.example.test",
		SweepSchedule:         "@every 5m",
		BusinessHoursStart:    "10:00",
		BusinessHoursEnd:      "19:00",
		BusinessHoursTimezone: "Asia/Kolkata",
		ProductPrice:          498,
		RateLimitRPS:          10,
		RateLimitBurst:        10,
		SilentDrop:            true,
		ContentDedupe:         true,
		TokenCheckInterval:    15 * time.Minute,
	}
}

func TestBuildStore(t *testing.T) {
	ctx := context.Background()

	store, closer, err := BuildStore(ctx, baseConfig(), aws.Config{}, quietLogger())
	require.NoError(t, err)
	defer closer()
	_, ok := store.(*kv.MemoryStore)
	assert.True(t, ok)

	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.StateBackend = "redis"
	cfg.RedisAddr = mr.Addr()
	store, closer, err = BuildStore(ctx, cfg, aws.Config{}, quietLogger())
	require.NoError(t, err)
	defer closer()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	assert.True(t, mr.Exists(redisKeyPrefix+"k"))

	cfg = baseConfig()
	cfg.StateBackend = "postgres"
	_, _, err = BuildStore(ctx, cfg, aws.Config{}, quietLogger())
	assert.Error(t, err, "postgres without DATABASE_URL")

	cfg.StateBackend = "etcd"
	_, _, err = BuildStore(ctx, cfg, aws.Config{}, quietLogger())
	assert.Error(t, err)
}

func TestBuildLLMClient(t *testing.T) {
	ctx := context.Background()
	cfg := baseConfig()

	cfg.LLMProvider = "openai"
	client, err := BuildLLMClient(ctx, cfg, aws.Config{}, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, client, "no key disables generative replies")

	cfg.OpenAIKey = "sk-test"
	client, err = BuildLLMClient(ctx, cfg, aws.Config{}, quietLogger())
	require.NoError(t, err)
	assert.NotNil(t, client)

	cfg.LLMFallbackProvider = "bedrock"
	cfg.BedrockModelID = "anthropic.claude-3-haiku"
	client, err = BuildLLMClient(ctx, cfg, aws.Config{Region: "ap-south-1"}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &generative.FallbackLLMClient{}, client)

	cfg.LLMProvider = "mystery"
	_, err = BuildLLMClient(ctx, cfg, aws.Config{}, quietLogger())
	assert.Error(t, err)
}

func TestBedrockReplierUsesConfiguredModel(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"output":{"message":{"role":"assistant","content":[{"text":"Haan bro, boot pe fit hota hai"}]}},`+
			`"stopReason":"end_turn","usage":{"inputTokens":3,"outputTokens":6,"totalTokens":9},"metrics":{"latencyMs":5}}`)
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.LLMProvider = "bedrock"
	cfg.BedrockModelID = "anthropic.claude-3-haiku"
	cfg.OpenAIModel = "gpt-4o-mini"
	awsCfg := aws.Config{
		Region:       "ap-south-1",
		Credentials:  credentials.NewStaticCredentialsProvider("test", "test", ""),
		BaseEndpoint: aws.String(srv.URL),
	}

	llm, err := BuildLLMClient(context.Background(), cfg, awsCfg, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, llm)

	catalog := replies.New(replies.Links{Flipkart: "https://fk.example/p", Demo: "https://ig.example/reel", Price: "498"})
	replier := buildReplier(cfg, llm, catalog, nil, quietLogger())
	got := replier.Reply(context.Background(), "boot pe fit hoga kya?", language.Hindi)

	assert.Equal(t, "/model/anthropic.claude-3-haiku/converse", gotPath)
	assert.Equal(t, "Haan bro, boot pe fit hota hai", got)
}

func TestBuildEmailSender(t *testing.T) {
	cfg := baseConfig()
	sender, err := BuildEmailSender(cfg, aws.Config{}, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, sender)

	cfg.EmailProvider = "sendgrid"
	sender, err = BuildEmailSender(cfg, aws.Config{}, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, sender, "missing key disables sendgrid")

	cfg.EmailProvider = "stub"
	sender, err = BuildEmailSender(cfg, aws.Config{}, quietLogger())
	require.NoError(t, err)
	assert.NotNil(t, sender)

	cfg.EmailProvider = "pigeon"
	_, err = BuildEmailSender(cfg, aws.Config{}, quietLogger())
	assert.Error(t, err)
}

func TestBuildLeadSinks(t *testing.T) {
	cfg := baseConfig()
	assert.Empty(t, BuildLeadSinks(cfg, aws.Config{}))

	cfg.LeadWebhookURL = "https://hooks.example.test/lead"
	cfg.MetaPixelID = "pixel"
	cfg.MetaCAPIToken = "token"
	cfg.LeadQueueURL = "https://sqs.ap-south-1.amazonaws.com/1/leads"
	sinks := BuildLeadSinks(cfg, aws.Config{Region: "ap-south-1"})
	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"webhook", "sqs", "meta_capi"}, names)
}

func TestBuildAppServesRoutes(t *testing.T) {
	app, err := BuildApp(context.Background(), baseConfig(), aws.Config{}, prometheus.NewRegistry(), quietLogger())
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, 3, app.Scheduler.Len(), "state sweep, rate limiter sweep, token check")

	h := app.Handler(nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","whatsapp_token_valid":false}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify&hub.challenge=abc", nil))
	assert.Equal(t, "abc", rr.Body.String())

	require.NoError(t, app.Shutdown(context.Background()))
}

func TestDrainTimeoutCoversInFlightWork(t *testing.T) {
	cfg := baseConfig()
	cfg.TaskTimeout = 10 * time.Second
	app, err := BuildApp(context.Background(), cfg, aws.Config{}, prometheus.NewRegistry(), quietLogger())
	require.NoError(t, err)
	defer app.Close()

	assert.Greater(t, app.DrainTimeout(), inboundTimeout+cfg.TaskTimeout)
}

func TestBuildAppRequiresConfig(t *testing.T) {
	_, err := BuildApp(context.Background(), nil, aws.Config{}, nil, nil)
	assert.Error(t, err)
}
