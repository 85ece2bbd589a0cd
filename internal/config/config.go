package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultFlipkartLink  = "https://www.flipkart.com/turbo-thrill-v5-obsidian-feet-slider-bikers-riders-1-piece-flint-fire-starter/p/itmec22d01cb0e22?pid=FRFH5YDBA7YZ4GGS"
	DefaultDemoVideoLink = "https://www.instagram.com/reel/C6V-j1RyQfk/?igsh=MjlzNDBxeTRrNnlz"
	DefaultLeadWebhook   = "https://turbothrill-n8n.onrender.com/webhook/lead-logger"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// WhatsApp Cloud API
	WhatsAppToken      string
	PhoneID            string
	AppSecret          string
	VerifyToken        string
	GraphAPIBase       string
	TokenCheckInterval time.Duration
	OutboundTimeout    time.Duration

	// Generative fallback
	LLMProvider         string
	LLMFallbackProvider string
	OpenAIKey           string
	OpenAIBaseURL       string
	OpenAIModel         string
	MaxTokens           int
	Temperature         float64
	GeminiAPIKey        string
	GeminiModel         string
	BedrockModelID      string
	LLMTimeout          time.Duration

	// Links and copy
	FlipkartLink   string
	DemoVideoLink  string
	SupportContact string
	TrackingLink   string
	ProductPrice   int

	// Lead forwarding
	LeadWebhookURL    string
	LeadWebhookSecret string
	LeadQueueURL      string
	MetaPixelID       string
	MetaCAPIToken     string
	TaskTimeout       time.Duration

	// Dedupe and user state
	DedupeWindow          time.Duration
	DedupeMatchIntent     bool
	ContentDedupe         bool
	MessageIDTTL          time.Duration
	SweepSchedule         string
	StateBackend          string
	UserStateTTL          time.Duration
	RedisAddr             string
	RedisPassword         string
	RedisTLS              bool
	DynamoDBTable         string
	DatabaseURL           string
	SilentDrop            bool
	WelcomeOnFirstContact bool

	// Order lookup
	ShopifyStoreDomain string
	ShopifyAccessToken string
	ShopifyAPIVersion  string

	// Business hours for human handoff
	BusinessHoursStart    string
	BusinessHoursEnd      string
	BusinessHoursTimezone string

	// Escalation email
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	EscalationEmail   string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	support := getEnv("SUPPORT_CONTACT", "Support@turbothrill.in")
	return &Config{
		Port:      getEnv("PORT", "3000"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		WhatsAppToken:      getEnv("WHATSAPP_TOKEN", ""),
		PhoneID:            getEnv("PHONE_ID", getEnv("PHONE_NUMBER_ID", "")),
		AppSecret:          getEnv("APP_SECRET", ""),
		VerifyToken:        getEnv("VERIFY_TOKEN", "turbothrill123"),
		GraphAPIBase:       strings.TrimRight(getEnv("GRAPH_API_BASE", "https://graph.facebook.com/v16.0"), "/"),
		TokenCheckInterval: getEnvAsDuration("TOKEN_CHECK_INTERVAL", 15*time.Minute),
		OutboundTimeout:    getEnvAsDuration("OUTBOUND_TIMEOUT", 10*time.Second),

		LLMProvider:         strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "openai"))),
		LLMFallbackProvider: strings.ToLower(strings.TrimSpace(getEnv("LLM_FALLBACK_PROVIDER", ""))),
		OpenAIKey:           getEnv("OPENAI_KEY", ""),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		MaxTokens:           getEnvAsInt("MAX_TOKENS", 200),
		Temperature:         getEnvAsFloat("TEMPERATURE", 0.45),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),
		LLMTimeout:          getEnvAsDuration("LLM_TIMEOUT", 12*time.Second),

		FlipkartLink:   getEnv("FLIPKART_LINK", DefaultFlipkartLink),
		DemoVideoLink:  getEnv("DEMO_VIDEO_LINK", DefaultDemoVideoLink),
		SupportContact: support,
		TrackingLink:   getEnv("TRACKING_LINK", "https://www.flipkart.com/account/orders"),
		ProductPrice:   getEnvAsInt("PRODUCT_PRICE", 498),

		LeadWebhookURL:    getEnv("MAKE_WEBHOOK_URL", DefaultLeadWebhook),
		LeadWebhookSecret: getEnv("MAKE_WEBHOOK_SECRET", ""),
		LeadQueueURL:      getEnv("LEAD_QUEUE_URL", ""),
		MetaPixelID:       getEnv("META_PIXEL_ID", ""),
		MetaCAPIToken:     getEnv("META_CAPI_TOKEN", ""),
		TaskTimeout:       getEnvAsDuration("TASK_TIMEOUT", 10*time.Second),

		DedupeWindow:          getEnvAsDuration("DEDUPE_WINDOW", 45*time.Second),
		DedupeMatchIntent:     getEnvAsBool("DEDUPE_MATCH_INTENT", false),
		ContentDedupe:         getEnvAsBool("CONTENT_DEDUPE", true),
		MessageIDTTL:          getEnvAsDuration("MESSAGE_ID_TTL", 24*time.Hour),
		SweepSchedule:         getEnv("SWEEP_SCHEDULE", "@every 5m"),
		StateBackend:          strings.ToLower(strings.TrimSpace(getEnv("STATE_BACKEND", "memory"))),
		UserStateTTL:          getEnvAsDuration("USER_STATE_TTL", 30*24*time.Hour),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisTLS:              getEnvAsBool("REDIS_TLS", false),
		DynamoDBTable:         getEnv("DYNAMODB_TABLE", "turbothrill_user_state"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		SilentDrop:            getEnvAsBool("SILENT_DROP", true),
		WelcomeOnFirstContact: getEnvAsBool("WELCOME_ON_FIRST_CONTACT", true),

		ShopifyStoreDomain: getEnv("SHOPIFY_STORE_DOMAIN", ""),
		ShopifyAccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIVersion:  getEnv("SHOPIFY_API_VERSION", "2024-01"),

		BusinessHoursStart:    getEnv("BUSINESS_HOURS_START", "10:00"),
		BusinessHoursEnd:      getEnv("BUSINESS_HOURS_END", "19:00"),
		BusinessHoursTimezone: getEnv("BUSINESS_HOURS_TZ", "Asia/Kolkata"),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ""))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "TurboThrill Bot"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		EscalationEmail:   getEnv("ESCALATION_EMAIL", support),

		AWSRegion:           getEnv("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 40),
	}
}

// WhatsAppConfigured reports whether outbound sends can be attempted at all.
func (c *Config) WhatsAppConfigured() bool {
	return strings.TrimSpace(c.WhatsAppToken) != "" && strings.TrimSpace(c.PhoneID) != ""
}

// GenerativeMaxTokens caps the completion budget at 200 tokens; unset means 120.
func (c *Config) GenerativeMaxTokens() int {
	switch {
	case c.MaxTokens <= 0:
		return 120
	case c.MaxTokens > 200:
		return 200
	default:
		return c.MaxTokens
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
