package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/api/router"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/bot"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/channels/whatsapp"
	appconfig "github.com/konainfatima28/Turbothrill-Webhook-Test/internal/config"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/dedupe"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/funnel"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/hours"
	httpmiddleware "github.com/konainfatima28/Turbothrill-Webhook-Test/internal/http/middleware"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/intent"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/kv"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/notify"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/observability/metrics"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/orders"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/replies"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/tasks"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// inboundTimeout bounds one message end to end: completion, lookup and sends.
const inboundTimeout = 45 * time.Second

// App is the fully wired bot.
type App struct {
	Config      *appconfig.Config
	Logger      *logging.Logger
	Metrics     *metrics.BotMetrics
	Store       kv.Store
	Catalog     *replies.Catalog
	Engine      *bot.Engine
	Dispatcher  *bot.Dispatcher
	TokenGuard  *whatsapp.TokenGuard
	Webhook     *whatsapp.WebhookHandler
	RateLimiter *httpmiddleware.RateLimiter
	Tasks       *tasks.Runner
	Scheduler   *tasks.Scheduler

	closers []func()
}

// BuildApp wires every component from cfg. reg may be nil to use the
// default Prometheus registerer.
func BuildApp(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, reg prometheus.Registerer, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	app := &App{Config: cfg, Logger: logger, Metrics: metrics.NewBotMetrics(reg)}

	store, closeStore, err := BuildStore(ctx, cfg, awsCfg, logger)
	if err != nil {
		return nil, err
	}
	app.Store = store
	app.closers = append(app.closers, closeStore)

	app.Catalog = replies.New(replies.Links{
		Flipkart: cfg.FlipkartLink,
		Demo:     cfg.DemoVideoLink,
		Support:  cfg.SupportContact,
		Tracking: cfg.TrackingLink,
		Price:    strconv.Itoa(cfg.ProductPrice),
	})

	llm, err := BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	if closer, ok := llm.(interface{ Close() error }); ok {
		app.closers = append(app.closers, func() { _ = closer.Close() })
	}
	replier := buildReplier(cfg, llm, app.Catalog, app.Metrics, logger)

	window, err := hours.Parse(cfg.BusinessHoursStart, cfg.BusinessHoursEnd, cfg.BusinessHoursTimezone)
	if err != nil {
		logger.Warn("invalid business hours, treating support as always open", "error", err)
		window = hours.AlwaysOpen()
	}

	finder := orders.NewShopifyClient(cfg.ShopifyStoreDomain, cfg.ShopifyAccessToken, cfg.ShopifyAPIVersion, cfg.OutboundTimeout, logger)
	if finder == nil {
		logger.Warn("shopify not configured; order lookups always report not found")
	}

	selector := bot.NewSelector(app.Catalog, replier, finder, window, bot.SelectorOptions{
		SilentDrop:            cfg.SilentDrop,
		WelcomeOnFirstContact: cfg.WelcomeOnFirstContact,
	}, logger)
	suppressor := dedupe.New(store, dedupe.Options{
		Window:       cfg.DedupeWindow,
		MessageIDTTL: cfg.MessageIDTTL,
		MatchIntent:  cfg.DedupeMatchIntent,
	}, logger)
	machine := funnel.New(store, cfg.UserStateTTL, logger)
	app.Engine = bot.NewEngine(suppressor, intent.NewClassifier(intent.DefaultRules()), machine, selector,
		bot.EngineOptions{ContentDedupe: cfg.ContentDedupe}, app.Metrics, logger)

	waClient := whatsapp.NewClient(cfg.WhatsAppToken, cfg.PhoneID, cfg.OutboundTimeout)
	waClient.SetGraphAPIBase(cfg.GraphAPIBase)
	app.TokenGuard = whatsapp.NewTokenGuard(waClient, logger)
	sender := whatsapp.NewSender(waClient, app.TokenGuard, app.Metrics, logger)

	app.Tasks = tasks.NewRunner(cfg.TaskTimeout, app.Metrics, logger)
	deps := bot.DispatcherDeps{
		Engine:     app.Engine,
		Sender:     sender,
		Leads:      BuildLeadForwarder(cfg, awsCfg, app.Metrics, logger),
		Inbound:    tasks.NewRunner(inboundTimeout, app.Metrics, logger),
		Background: app.Tasks,
		Logger:     logger,
	}
	emailSender, err := BuildEmailSender(cfg, awsCfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	if esc := notify.NewEscalator(emailSender, cfg.EscalationEmail); esc != nil {
		deps.Escalator = esc
	}
	app.Dispatcher, err = bot.NewDispatcher(deps)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Webhook = whatsapp.NewWebhookHandler(cfg.VerifyToken, cfg.AppSecret, app.Dispatcher.Submit, app.Metrics, logger)
	if cfg.AppSecret == "" {
		logger.Warn("APP_SECRET not set; webhook signatures are not verified")
	}
	app.RateLimiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	app.Scheduler = tasks.NewScheduler(app.Tasks, logger)
	if err := app.scheduleJobs(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) scheduleJobs() error {
	cfg := a.Config
	if sweeper, ok := a.Store.(kv.Sweeper); ok {
		err := a.Scheduler.Add("state_sweep", cfg.SweepSchedule, func(ctx context.Context) error {
			removed, err := sweeper.Sweep(ctx)
			if err != nil {
				return err
			}
			if removed > 0 {
				a.Logger.Debug("swept expired state", "removed", removed)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	err := a.Scheduler.Add("rate_limiter_sweep", cfg.SweepSchedule, func(context.Context) error {
		a.RateLimiter.Sweep()
		return nil
	})
	if err != nil {
		return err
	}
	if cfg.TokenCheckInterval > 0 {
		spec := "@every " + cfg.TokenCheckInterval.String()
		return a.Scheduler.Add("token_check", spec, func(ctx context.Context) error {
			a.TokenGuard.Validate(ctx)
			return nil
		})
	}
	return nil
}

// Handler returns the HTTP routes. metricsHandler serves /metrics when set.
func (a *App) Handler(metricsHandler http.Handler) http.Handler {
	return router.New(&router.Config{
		Logger:         a.Logger,
		Metrics:        a.Metrics,
		Webhook:        a.Webhook,
		TokenValid:     a.TokenGuard.Valid,
		MetricsHandler: metricsHandler,
		RateLimiter:    a.RateLimiter,
	})
}

// DrainTimeout is how long Shutdown may need: one inbound message plus the
// background tasks it submits, with a little slack for the HTTP server.
func (a *App) DrainTimeout() time.Duration {
	return inboundTimeout + a.Config.TaskTimeout + 5*time.Second
}

// Shutdown stops the scheduler, drains in-flight work and releases backends.
func (a *App) Shutdown(ctx context.Context) error {
	a.Scheduler.Stop(ctx)
	err := a.Dispatcher.Wait(ctx)
	a.Close()
	return err
}

// Close releases backend connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
