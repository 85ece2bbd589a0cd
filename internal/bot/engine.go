package bot

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/channels/whatsapp"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/dedupe"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/funnel"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/intent"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/language"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/observability/metrics"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

var tracer = otel.Tracer("turbothrill.bot")

// Skip reasons reported by Engine.Handle.
const (
	SkipEmpty            = "empty"
	SkipDuplicateMessage = "duplicate_message_id"
	SkipDuplicateContent = "duplicate_content"
)

// Result is what the engine decided for one inbound message.
type Result struct {
	Message    whatsapp.InboundMessage
	Lang       language.Tag
	Intent     intent.Tag
	Outcome    Outcome
	SkipReason string
}

// Skipped reports whether the message was dropped before reply selection.
func (r Result) Skipped() bool {
	return r.SkipReason != ""
}

// EngineOptions configures the engine.
type EngineOptions struct {
	ContentDedupe bool
}

// Engine runs the reply pipeline for one message: message-id dedupe,
// language detection, intent classification, content dedupe, funnel load,
// reply selection and funnel save.
type Engine struct {
	suppressor *dedupe.Suppressor
	classifier *intent.Classifier
	funnel     *funnel.Machine
	selector   *Selector
	opts       EngineOptions
	now        func() time.Time
	metrics    *metrics.BotMetrics
	logger     *logging.Logger
}

// NewEngine wires the pipeline. classifier nil uses the default rule table.
func NewEngine(suppressor *dedupe.Suppressor, classifier *intent.Classifier, machine *funnel.Machine, selector *Selector, opts EngineOptions, m *metrics.BotMetrics, logger *logging.Logger) *Engine {
	if suppressor == nil || machine == nil || selector == nil {
		panic("bot: suppressor, funnel and selector are required")
	}
	if classifier == nil {
		classifier = intent.NewClassifier(intent.DefaultRules())
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		suppressor: suppressor,
		classifier: classifier,
		funnel:     machine,
		selector:   selector,
		opts:       opts,
		now:        time.Now,
		metrics:    m,
		logger:     logger,
	}
}

// WithClock overrides the time source (tests).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	if now != nil {
		e.now = now
	}
	return e
}

// Handle decides the reply for msg. It never fails; collaborator errors
// degrade to defaults inside the pipeline.
func (e *Engine) Handle(ctx context.Context, msg whatsapp.InboundMessage) Result {
	ctx, span := tracer.Start(ctx, "bot.handle")
	defer span.End()
	span.SetAttributes(attribute.String("whatsapp.message_id", msg.MessageID))

	res := Result{Message: msg}
	text := strings.TrimSpace(msg.Text)
	if text == "" || msg.SenderID == "" {
		res.SkipReason = SkipEmpty
		e.metrics.ObserveInbound("empty")
		return res
	}

	if e.suppressor.SeenMessage(ctx, msg.MessageID) {
		res.SkipReason = SkipDuplicateMessage
		e.metrics.ObserveDuplicate("message_id")
		e.metrics.ObserveInbound("duplicate")
		e.logger.Info("bot: duplicate message id", "sender_id", msg.SenderID, "message_id", msg.MessageID)
		return res
	}

	res.Lang = language.Detect(text)
	res.Intent = e.classifier.Classify(text)
	span.SetAttributes(
		attribute.String("turbothrill.lang", string(res.Lang)),
		attribute.String("turbothrill.intent", string(res.Intent)),
	)

	if e.opts.ContentDedupe && e.suppressor.IsDuplicate(ctx, msg.SenderID, text, string(res.Intent)) {
		res.SkipReason = SkipDuplicateContent
		e.metrics.ObserveDuplicate("content")
		e.metrics.ObserveInbound("duplicate")
		e.logger.Info("bot: duplicate content suppressed", "sender_id", msg.SenderID, "intent", res.Intent)
		return res
	}

	state, first := e.funnel.Load(ctx, msg.SenderID)
	out := e.selector.Select(ctx, Input{
		Sender:       msg.SenderID,
		Text:         text,
		Lang:         res.Lang,
		Intent:       res.Intent,
		State:        state,
		FirstContact: first,
		Now:          e.now(),
	})
	res.Outcome = out

	next := state
	next.Step = out.NextStep
	next.LastIntent = string(res.Intent)
	// Save failures are logged by the machine; the reply still goes out.
	_ = e.funnel.Save(ctx, msg.SenderID, next)

	e.metrics.ObserveReply(out.Label)
	if out.Silent() {
		e.metrics.ObserveInbound("silent")
	} else {
		e.metrics.ObserveInbound("handled")
	}
	e.logger.Info("bot: reply selected",
		"sender_id", msg.SenderID,
		"message_id", msg.MessageID,
		"lang", res.Lang,
		"intent", res.Intent,
		"label", out.Label,
		"step", next.Step,
		"first_contact", first,
		"text", logging.Snippet(text, 200),
	)
	return res
}
