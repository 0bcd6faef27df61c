package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/domain/billing"
)

// OverdueInvoiceSource loads and saves the invoices the sweeper works on
type OverdueInvoiceSource interface {
	// FindDueForOverdue returns open invoices whose due date has passed
	FindDueForOverdue(ctx context.Context, asOf time.Time, limit int) ([]billing.Invoice, error)
	// SaveWithLock persists the invoice with an optimistic version check
	SaveWithLock(ctx context.Context, invoice *billing.Invoice) error
}

// OverdueSweeperConfig holds configuration for the overdue sweeper
type OverdueSweeperConfig struct {
	// SweepHour is the local hour (24h format) the daily sweep runs at
	SweepHour   int
	SweepMinute int

	// CheckInterval is how often to check whether it is time to run
	CheckInterval time.Duration

	// BatchSize caps how many invoices one sweep processes
	BatchSize int
}

// DefaultOverdueSweeperConfig returns default sweeper configuration
func DefaultOverdueSweeperConfig() OverdueSweeperConfig {
	return OverdueSweeperConfig{
		SweepHour:     1, // 1am
		SweepMinute:   0,
		CheckInterval: time.Minute,
		BatchSize:     500,
	}
}

// OverdueSweeper flags open invoices past their due date as overdue.
// It runs once a day; a version conflict on an individual invoice is
// skipped and picked up again on the next sweep.
type OverdueSweeper struct {
	config OverdueSweeperConfig
	source OverdueInvoiceSource
	logger *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewOverdueSweeper creates a new overdue sweeper
func NewOverdueSweeper(config OverdueSweeperConfig, source OverdueInvoiceSource, logger *zap.Logger) *OverdueSweeper {
	return &OverdueSweeper{
		config: config,
		source: source,
		logger: logger,
	}
}

// Start starts the sweeper loop
func (s *OverdueSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Overdue sweeper started",
		zap.Int("sweep_hour", s.config.SweepHour),
		zap.Int("sweep_minute", s.config.SweepMinute),
		zap.Duration("check_interval", s.config.CheckInterval),
	)

	return nil
}

// Stop stops the sweeper gracefully
func (s *OverdueSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop checks periodically whether it is time to sweep
func (s *OverdueSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndSweep(ctx)
		}
	}
}

// checkAndSweep runs the sweep when the configured time of day is reached
func (s *OverdueSweeper) checkAndSweep(ctx context.Context) {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	s.mu.Lock()
	if s.lastRunDate == currentDate {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if now.Hour() != s.config.SweepHour || now.Minute() != s.config.SweepMinute {
		return
	}

	s.mu.Lock()
	s.lastRunDate = currentDate
	s.mu.Unlock()

	s.logger.Info("Running overdue invoice sweep")
	s.Sweep(ctx, now)
}

// Sweep marks every open invoice past its due date as overdue and
// returns how many invoices were flagged. Exposed so operators can
// trigger it outside the daily schedule.
func (s *OverdueSweeper) Sweep(ctx context.Context, asOf time.Time) int {
	invoices, err := s.source.FindDueForOverdue(ctx, asOf, s.config.BatchSize)
	if err != nil {
		s.logger.Error("Failed to load overdue candidates", zap.Error(err))
		return 0
	}

	flagged := 0
	for idx := range invoices {
		invoice := &invoices[idx]
		if err := invoice.MarkOverdue(asOf); err != nil {
			// Settled or cancelled since the query ran
			continue
		}
		if err := s.source.SaveWithLock(ctx, invoice); err != nil {
			s.logger.Warn("Failed to flag invoice as overdue",
				zap.String("invoice_id", invoice.ID.String()),
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err),
			)
			continue
		}
		flagged++
	}

	s.logger.Info("Overdue sweep finished",
		zap.Int("candidates", len(invoices)),
		zap.Int("flagged", flagged),
	)
	return flagged
}
