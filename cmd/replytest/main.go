// Command replytest runs messages through the reply engine offline and
// prints what the bot would send. Nothing is sent to WhatsApp.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/app/bootstrap"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/bot"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/channels/whatsapp"
	appconfig "github.com/konainfatima28/Turbothrill-Webhook-Test/internal/config"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var from string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "replytest [message]",
		Short: "Print the bot's reply to a message without sending it",
		Long: "Runs a message through language detection, intent classification, dedupe, " +
			"the funnel and reply selection. With no arguments each line of stdin is a " +
			"new message from the same rider, so multi-step flows like TRACK can be tried.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg := appconfig.Load()
			cfg.StateBackend = "memory"
			cfg.LeadWebhookURL = ""

			logger := logging.NewWithFormat(logLevel, "text", cmd.ErrOrStderr())
			app, err := bootstrap.BuildApp(cmd.Context(), cfg, aws.Config{}, prometheus.NewRegistry(), logger)
			if err != nil {
				return err
			}
			defer app.Close()

			if len(args) > 0 {
				return run(cmd.Context(), app.Engine, from, []string{strings.Join(args, " ")}, cmd.OutOrStdout())
			}
			return runLines(cmd.Context(), app.Engine, from, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&from, "from", "919999999999", "sender WhatsApp id")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level for engine logs on stderr")
	return cmd
}

func runLines(ctx context.Context, engine *bot.Engine, from string, in io.Reader, out io.Writer) error {
	var lines []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return run(ctx, engine, from, lines, out)
}

func run(ctx context.Context, engine *bot.Engine, from string, texts []string, out io.Writer) error {
	for i, text := range texts {
		res := engine.Handle(ctx, whatsapp.InboundMessage{
			SenderID:   from,
			Text:       text,
			MessageID:  fmt.Sprintf("replytest.%d.%d", time.Now().UnixNano(), i),
			ReceivedAt: time.Now(),
		})
		printResult(out, res)
	}
	return nil
}

func printResult(out io.Writer, res bot.Result) {
	fmt.Fprintf(out, "> %s\n", res.Message.Text)
	if res.Skipped() {
		fmt.Fprintf(out, "  skipped: %s\n\n", res.SkipReason)
		return
	}
	fmt.Fprintf(out, "  lang=%s intent=%s label=%s next=%s\n", res.Lang, res.Intent, res.Outcome.Label, res.Outcome.NextStep)
	if res.Outcome.Silent() {
		fmt.Fprintln(out, "  (no reply)")
	}
	for _, m := range res.Outcome.Messages {
		fmt.Fprintf(out, "  < %s\n", strings.ReplaceAll(m, "\n", "\n    "))
	}
	fmt.Fprintln(out)
}
