package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/uzhavar360/backend/internal/config"
	"github.com/uzhavar360/backend/internal/repository/ledger"
	"github.com/uzhavar360/backend/internal/service/summary"
)

// Scheduler manages the daily summary dispatch.
type Scheduler struct {
	cron       *cron.Cron
	ledger     ledger.Ledger
	summarySvc *summary.Service
	cfg        config.SummaryConfig
	logger     *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured
// timezone; an unknown timezone falls back to the local zone.
func NewScheduler(cfg config.SummaryConfig, l ledger.Ledger, summarySvc *summary.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []cron.Option
	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	} else {
		logger.Warn("unknown timezone, scheduling in local time",
			zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	return &Scheduler{
		cron:       cron.New(opts...),
		ledger:     l,
		summarySvc: summarySvc,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.dispatchDailySummaries); err != nil {
		s.logger.Error("failed to schedule daily summaries", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) dispatchDailySummaries() {
	s.logger.Info("dispatching daily summaries")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	markets, err := s.ledger.ListMarkets(ctx)
	if err != nil {
		s.logger.Error("failed to list markets for summaries", zap.Error(err))
		return
	}

	day := time.Now().UTC()
	for _, market := range markets {
		logs, err := s.summarySvc.GenerateDailySummaries(ctx, market.ID, day)
		if err != nil {
			s.logger.Error("failed to generate summaries",
				zap.String("market_id", market.ID), zap.Error(err))
			continue
		}
		if len(logs) > 0 {
			s.logger.Info("summaries dispatched",
				zap.String("market_id", market.ID), zap.Int("count", len(logs)))
		}
	}
}
