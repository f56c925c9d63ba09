package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/sla"
)

// Settings supplies the persisted scheduler configuration
type Settings interface {
	CheckFrequencyMinutes(ctx context.Context) (int, error)
}

// cronLogger adapts zap.Logger to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err))
}

// Scheduler drives the SLA scan pipeline on a fixed interval. Overlap
// protection lives in the monitor's idle/scanning guard, which this shares
// with the manual dashboard trigger; a tick that fires mid-scan is skipped.
type Scheduler struct {
	logger   *zap.Logger
	cron     *cron.Cron
	monitor  *sla.Monitor
	settings Settings

	mu      sync.Mutex
	ctx     context.Context
	entryID cron.EntryID
	minutes int
}

// NewScheduler creates a scheduler for the given monitor
func NewScheduler(monitor *sla.Monitor, settings Settings, logger *zap.Logger) *Scheduler {
	cl := &cronLogger{logger: logger.Named("cron")}
	return &Scheduler{
		logger:   logger.Named("scheduler"),
		cron:     cron.New(cron.WithChain(cron.Recover(cl))),
		monitor:  monitor,
		settings: settings,
	}
}

// Start reads the configured frequency and begins ticking
func (s *Scheduler) Start(ctx context.Context) error {
	minutes, err := s.settings.CheckFrequencyMinutes(ctx)
	if err != nil {
		return fmt.Errorf("failed to read check frequency: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx
	if err := s.scheduleLocked(minutes); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("frequency_minutes", minutes))
	return nil
}

// Stop stops the scheduler and waits for a running tick to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// Reschedule changes the tick interval, taking effect immediately
func (s *Scheduler) Reschedule(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("frequency must be positive, got %d", minutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if minutes == s.minutes {
		return nil
	}

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}
	if err := s.scheduleLocked(minutes); err != nil {
		return err
	}

	s.logger.Info("Rescheduled SLA checks", zap.Int("frequency_minutes", minutes))
	return nil
}

// scheduleLocked registers the tick job; caller holds s.mu
func (s *Scheduler) scheduleLocked(minutes int) error {
	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", minutes), s.tick)
	if err != nil {
		return fmt.Errorf("failed to add scan job: %w", err)
	}
	s.entryID = entryID
	s.minutes = minutes
	return nil
}

// tick runs one scan cycle
func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.monitor.RunCycle(ctx)
	if err != nil {
		if errors.Is(err, sla.ErrScanInProgress) {
			s.logger.Warn("Previous scan still running, skipping tick")
			return
		}
		s.logger.Error("Scan cycle failed", zap.Error(err))
		return
	}

	s.logger.Debug("Tick completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("alerted", result.Alerted))
}
