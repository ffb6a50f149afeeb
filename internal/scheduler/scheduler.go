package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/config"
	"github.com/mamadbah2/stocktake/internal/domain/models"
)

// DigestSource produces the periodic stock summary.
type DigestSource interface {
	Digest(ctx context.Context, days int) (string, []models.SummaryRow, error)
}

// SummaryExporter persists summary rows outside the ledger.
type SummaryExporter interface {
	ExportSummary(ctx context.Context, reportDate string, rows []models.SummaryRow) error
}

// Notifier pushes the digest text to a human.
type Notifier interface {
	Notify(ctx context.Context, body string) (string, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	source   DigestSource
	exporter SummaryExporter
	notifier Notifier
	cfg      config.ReportingConfig
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance. exporter and notifier are optional.
func NewScheduler(cfg config.ReportingConfig, loc *time.Location, source DigestSource, exporter SummaryExporter, notifier Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		source:   source,
		exporter: exporter,
		notifier: notifier,
		cfg:      cfg,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the daily summary job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDailySummary); err != nil {
		return fmt.Errorf("schedule daily summary %q: %w", s.cfg.CronSchedule, err)
	}

	s.logger.Info("starting scheduler",
		zap.String("schedule", s.cfg.CronSchedule),
		zap.String("timezone", s.loc.String()),
		zap.Bool("sheets_export", s.exporter != nil),
		zap.Bool("whatsapp_digest", s.notifier != nil))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("daily summary failed", zap.Error(err))
	}
}

// RunOnce computes the summary window and delivers it to the configured sinks.
// Sink failures are logged; only a failure to compute the summary is returned.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.logger.Info("generating daily summary", zap.Int("window_days", s.cfg.WindowDays))

	text, rows, err := s.source.Digest(ctx, s.cfg.WindowDays)
	if err != nil {
		return fmt.Errorf("generate digest: %w", err)
	}

	if s.exporter != nil {
		reportDate := models.Today(s.now(), s.loc)
		if err := s.exporter.ExportSummary(ctx, reportDate, rows); err != nil {
			s.logger.Error("failed to export summary", zap.Error(err))
		}
	}

	if s.notifier != nil {
		if id, err := s.notifier.Notify(ctx, text); err != nil {
			s.logger.Error("failed to send summary digest", zap.Error(err))
		} else {
			s.logger.Info("summary digest sent", zap.String("message_id", id))
		}
	}

	s.logger.Info("daily summary complete", zap.Int("items", len(rows)))
	return nil
}
