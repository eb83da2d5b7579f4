package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/SleepTheGod/Cryptozoo/internal/config"
)

// YieldTicker credits one period of passive income.
type YieldTicker interface {
	Tick() int64
}

// SummaryLogger logs the current portfolio summary.
type SummaryLogger interface {
	LogSummary()
}

// Scheduler manages the recurring game tasks.
type Scheduler struct {
	cron     *cron.Cron
	yield    YieldTicker
	reports  SummaryLogger
	game     config.GameConfig
	report   config.ReportingConfig
	logger   *zap.Logger
	entryIDs []cron.EntryID
}

// NewScheduler creates a new scheduler instance. reports may be nil.
func NewScheduler(cfg config.Config, yield YieldTicker, reports SummaryLogger, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Ticks never overlap; a tick that is still running skips the next firing.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	return &Scheduler{
		cron:    c,
		yield:   yield,
		reports: reports,
		game:    cfg.Game,
		report:  cfg.Reporting,
		logger:  logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("yield_schedule", s.game.YieldSchedule))

	id, err := s.cron.AddFunc(s.game.YieldSchedule, s.accrueYield)
	if err != nil {
		s.logger.Error("failed to schedule yield accrual", zap.Error(err))
	} else {
		s.entryIDs = append(s.entryIDs, id)
	}

	if s.reports != nil {
		id, err := s.cron.AddFunc(s.report.CronSchedule, s.reports.LogSummary)
		if err != nil {
			s.logger.Error("failed to schedule portfolio summary", zap.Error(err))
		} else {
			s.entryIDs = append(s.entryIDs, id)
		}
	}

	s.cron.Start()
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.entryIDs)
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) accrueYield() {
	if amount := s.yield.Tick(); amount > 0 {
		s.logger.Debug("yield tick", zap.Int64("credited", amount))
	}
}
