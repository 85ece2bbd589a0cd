package tasks

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// Scheduler runs housekeeping jobs (store sweeps, token revalidation) on cron
// specs. Each tick goes through the Runner so it shares its timeout and
// panic handling.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	logger *logging.Logger
}

func NewScheduler(runner *Runner, logger *logging.Logger) *Scheduler {
	if runner == nil {
		panic("tasks: runner required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:   cron.New(cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		runner: runner,
		logger: logger,
	}
}

// Add registers fn under spec ("@every 5m", "0 */15 * * * *").
func (s *Scheduler) Add(name, spec string, fn Func) error {
	_, err := s.cron.AddFunc(spec, func() {
		_ = s.runner.Run(name, fn)
	})
	if err != nil {
		return fmt.Errorf("tasks: schedule %s (%q): %w", name, spec, err)
	}
	s.logger.Info("scheduled job", "task", name, "spec", spec)
	return nil
}

// Len reports the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
