package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tradebook/internal/config"
	"tradebook/internal/telegram"
)

const defaultSummaryCron = "0 18 * * 1-5" // after the session, weekdays

// SummaryScheduler pushes a daily journal summary to Telegram on a cron
// schedule.
type SummaryScheduler struct {
	journalConf  config.JournalConf
	telegramConf config.TelegramConf
	statsService *StatsService
	notifier     *telegram.Telegram
	logger       *zap.Logger

	startTime time.Time
	isRunning bool
	stopChan  chan struct{}
	cron      *cron.Cron
}

func NewSummaryScheduler(
	conf *config.Config,
	statsService *StatsService,
	notifier *telegram.Telegram,
	logger *zap.Logger,
) *SummaryScheduler {
	return &SummaryScheduler{
		journalConf:  conf.Journal,
		telegramConf: conf.Telegram,
		statsService: statsService,
		notifier:     notifier,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start blocks until the scheduler is stopped or the context is done.
func (s *SummaryScheduler) Start(ctx context.Context) error {
	if s.isRunning {
		return fmt.Errorf("summary scheduler is already running")
	}
	if s.notifier == nil {
		return fmt.Errorf("summary scheduler requires a telegram notifier")
	}

	s.isRunning = true
	s.startTime = time.Now()

	cronExpr := s.journalConf.SummaryCron
	if cronExpr == "" {
		cronExpr = defaultSummaryCron
	}

	s.logger.Info("summary scheduler started",
		zap.String("cron_expression", cronExpr))

	s.cron = cron.New()
	_, err := s.cron.AddFunc(cronExpr, func() {
		if err := s.PublishSummary(context.Background()); err != nil {
			s.logger.Error("failed to publish daily summary", zap.Error(err))
		}
	})
	if err != nil {
		s.isRunning = false
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.cron.Start()

	select {
	case <-s.stopChan:
		s.logger.Info("summary scheduler stopped by user")
		return nil
	case <-ctx.Done():
		s.logger.Info("summary scheduler stopped by context")
		return ctx.Err()
	}
}

// Stop halts the cron scheduler and waits for a running job to finish.
func (s *SummaryScheduler) Stop() {
	if !s.isRunning {
		return
	}
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	s.isRunning = false
	close(s.stopChan)
	s.logger.Info("summary scheduler stopped")
}

// IsRunning reports whether the scheduler is active.
func (s *SummaryScheduler) IsRunning() bool {
	return s.isRunning
}

// PublishSummary formats the current journal statistics and sends them to
// the configured chat.
func (s *SummaryScheduler) PublishSummary(ctx context.Context) error {
	performance, err := s.statsService.GetPerformanceSummary(ctx)
	if err != nil {
		return fmt.Errorf("failed to load performance summary: %w", err)
	}
	adherence, err := s.statsService.GetAdherenceStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load adherence stats: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("*Journal summary*\n")
	sb.WriteString(fmt.Sprintf("Trades: %d (W %d / L %d / BE %d)\n",
		performance.TotalTrades, performance.Wins, performance.Losses, performance.BreakEven))
	sb.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", performance.WinRate*100))
	sb.WriteString(fmt.Sprintf("Net result: %.2f (costs %.2f)\n", performance.NetResult, performance.TotalCosts))
	if performance.ProfitFactor > 0 {
		sb.WriteString(fmt.Sprintf("Profit factor: %.2f\n", performance.ProfitFactor))
	}
	sb.WriteString(fmt.Sprintf("Stop respected: %.1f%%, target hit: %.1f%%\n",
		adherence.StopAdherencePct, adherence.TargetAdherencePct))
	sb.WriteString(fmt.Sprintf("Plan adherence: %.1f%%", adherence.AvgPlanAdherencePct))

	if err := s.notifier.Notify(s.telegramConf.ChatID, sb.String()); err != nil {
		return fmt.Errorf("failed to send summary: %w", err)
	}

	s.logger.Info("daily summary published",
		zap.Int("trades", performance.TotalTrades),
		zap.Float64("net_result", performance.NetResult))
	return nil
}
