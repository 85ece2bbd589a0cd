package bootstrap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/konainfatima28/Turbothrill-Webhook-Test/internal/config"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/leads"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/notify"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/observability/metrics"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// BuildEmailSender returns the EMAIL_PROVIDER sender, or nil when email is
// not configured.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "":
		logger.Warn("no email provider configured; human escalations are logged only")
		return nil, nil
	case "stub":
		return notify.NewStubEmailSender(logger), nil
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			logger.Warn("SENDGRID_API_KEY missing; escalation email disabled")
			return nil, nil
		}
		return sender, nil
	case "ses":
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			logger.Warn("SES_FROM_EMAIL missing; escalation email disabled")
			return nil, nil
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
	}
}

// BuildLeadSinks returns every configured lead sink.
func BuildLeadSinks(cfg *appconfig.Config, awsCfg aws.Config) []leads.Sink {
	var sinks []leads.Sink
	if s := leads.NewWebhookSink(cfg.LeadWebhookURL, cfg.LeadWebhookSecret, cfg.OutboundTimeout); s != nil {
		sinks = append(sinks, s)
	}
	if cfg.LeadQueueURL != "" {
		if s := leads.NewSQSSink(sqs.NewFromConfig(awsCfg), cfg.LeadQueueURL); s != nil {
			sinks = append(sinks, s)
		}
	}
	if s := leads.NewConversionsSink(cfg.MetaPixelID, cfg.MetaCAPIToken, cfg.OutboundTimeout); s != nil {
		s.SetGraphAPIBase(cfg.GraphAPIBase)
		sinks = append(sinks, s)
	}
	return sinks
}

// BuildLeadForwarder wraps the configured sinks.
func BuildLeadForwarder(cfg *appconfig.Config, awsCfg aws.Config, m *metrics.BotMetrics, logger *logging.Logger) *leads.Forwarder {
	if logger == nil {
		logger = logging.Default()
	}
	sinks := BuildLeadSinks(cfg, awsCfg)
	if len(sinks) == 0 {
		logger.Warn("no lead sinks configured; lead events are dropped")
	}
	return leads.NewForwarder(sinks, m, logger)
}
