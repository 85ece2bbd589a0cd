// Package generative is the chat-completion fallback used for open questions
// no canned reply covers.
package generative

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/language"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/observability/metrics"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/replies"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

var tracer = otel.Tracer("turbothrill.generative")

const (
	maxReplyWords    = 90
	maxTokensCeiling = 200
	defaultMaxTokens = 120
	defaultTimeout   = 12 * time.Second
)

// SystemPrompt is the persona every completion runs under.
const SystemPrompt = `You are Turbo Thrill's WhatsApp assistant for THRILL V5 Spark Slider.

Rules:
- Reply ONLY when user clearly asks something or triggers a command.
- Style: short, Hinglish, casual, biker tone.
- Always keep messages 2–4 lines, no long paragraphs.
- Never ask for personal details.
- Push actions: DEMO (video), ORDER (Flipkart), PRICE, safety, usage, fit, return, etc.`

// FewShot demonstrates tone and language switching.
var FewShot = []ChatMessage{
	{Role: ChatRoleUser, Content: "Ye safe hai kya?"},
	{Role: ChatRoleAssistant, Content: "Bro ye sirf visual sparks ke liye hai 🔥\nOpen safe space mein use karo, fuel/logon se door.\nDemo chahiye to DEMO likho, order ke liye ORDER."},
	{Role: ChatRoleUser, Content: "Will it fit on riding boots?"},
	{Role: ChatRoleAssistant, Content: "Mostly riding boots pe fit ho jata hai bro 👍\nStrap area flat ho to best grip aata hai.\nDemo ke liye DEMO, order ke liye ORDER likho."},
}

var disallowedPhrases = []string{
	"how to make",
	"explode",
	"detonate",
	"arson",
	"poison",
	"create fire",
	"manufacture",
}

var demoLinkPattern = regexp.MustCompile(`(?i)\[\s*watch demo\s*\]\([^)]*\)`)

// Options tunes completion requests. The model is left to each provider.
type Options struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client wraps an LLMClient with the pre-filter and post-processing rules.
type Client struct {
	llm     LLMClient
	catalog *replies.Catalog
	opts    Options
	metrics *metrics.BotMetrics
	logger  *logging.Logger
}

// NewClient builds a Client. llm may be nil, in which case Reply only ever
// refuses or returns "".
func NewClient(llm LLMClient, catalog *replies.Catalog, opts Options, m *metrics.BotMetrics, logger *logging.Logger) *Client {
	if catalog == nil {
		panic("generative: reply catalog required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.MaxTokens > maxTokensCeiling {
		opts.MaxTokens = maxTokensCeiling
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{llm: llm, catalog: catalog, opts: opts, metrics: m, logger: logger}
}

// Enabled reports whether a provider is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.llm != nil
}

// Refuses reports whether text asks for something the bot must not answer.
func Refuses(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range disallowedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Reply answers an open question. It returns the refusal for disallowed
// requests, "" when no provider is configured, and the fallback sales
// message when the provider fails. It never returns an error.
func (c *Client) Reply(ctx context.Context, text string, lang language.Tag) string {
	if Refuses(text) {
		return c.catalog.Text(replies.Refusal, language.English)
	}
	if !c.Enabled() {
		c.logger.Warn("generative: no provider configured, skipping completion")
		return ""
	}

	ctx, span := tracer.Start(ctx, "generative.reply")
	defer span.End()
	span.SetAttributes(attribute.String("turbothrill.lang", string(lang)))

	callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	started := time.Now()
	resp, err := c.llm.Complete(callCtx, c.buildRequest(text, lang))
	c.metrics.ObserveCompletion(time.Since(started).Seconds(), err)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("generative: completion failed", "error", err, "lang", lang)
		return c.fallback()
	}

	out := c.postProcess(resp.Text)
	if out == "" {
		return c.fallback()
	}
	return out
}

func (c *Client) buildRequest(text string, lang language.Tag) LLMRequest {
	user := text
	if lang == language.Hindi {
		user = "(Reply in Hinglish) " + text
	}
	msgs := make([]ChatMessage, 0, len(FewShot)+1)
	msgs = append(msgs, FewShot...)
	msgs = append(msgs, ChatMessage{Role: ChatRoleUser, Content: user})
	return LLMRequest{
		System:      []string{SystemPrompt},
		Messages:    msgs,
		MaxTokens:   int32(c.opts.MaxTokens),
		Temperature: float32(c.opts.Temperature),
	}
}

func (c *Client) postProcess(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if demo := c.catalog.Links().Demo; demo != "" {
		text = demoLinkPattern.ReplaceAllLiteralString(text, demo)
	}
	return TrimWords(text, maxReplyWords)
}

func (c *Client) fallback() string {
	return c.catalog.Text(replies.Fallback, language.English)
}

// TrimWords keeps the first max space-separated words and appends "..." when
// anything was cut. Line breaks inside words are preserved.
func TrimWords(text string, max int) string {
	words := strings.Split(text, " ")
	if max <= 0 || len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ") + "..."
}
