package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/monitoring"
)

type TransactionSweeps interface {
	ExpireOverduePayments(ctx context.Context, limit int) (int, error)
	CancelStaleConfirmations(ctx context.Context, limit int) (int, error)
}

type PointSweeps interface {
	ExpirePoints(ctx context.Context, limit int) (int, error)
}

// SweepResult counts what one reconciliation pass handled.
type SweepResult struct {
	ExpiredPayments     int `json:"expiredPayments"`
	CancelledStale      int `json:"cancelledStale"`
	ExpiredPointBatches int `json:"expiredPointBatches"`
}

// Sweeper runs the periodic reconciliation pass: overdue payments, stale
// confirmations and expired point batches. It is the safety net behind the
// read-path expiry, so a transaction nobody ever reads still terminates.
type Sweeper struct {
	transactions TransactionSweeps
	points       PointSweeps
	interval     time.Duration
	batchSize    int
}

func NewSweeper(transactions TransactionSweeps, points PointSweeps, interval time.Duration, batchSize int) *Sweeper {
	return &Sweeper{
		transactions: transactions,
		points:       points,
		interval:     interval,
		batchSize:    batchSize,
	}
}

// Start blocks, sweeping every interval until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	zap.L().Info("reconciliation sweeper started",
		zap.Duration("interval", s.interval),
		zap.Int("batchSize", s.batchSize),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("reconciliation sweeper stopped")

			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single reconciliation pass. Each category is swept
// independently; a failure in one category never blocks the others.
func (s *Sweeper) RunOnce(ctx context.Context) SweepResult {
	var result SweepResult

	expired, err := s.transactions.ExpireOverduePayments(ctx, s.batchSize)
	if err != nil {
		zap.L().Error("overdue payment sweep failed", zap.Error(err))
	}
	result.ExpiredPayments = expired
	monitoring.SweeperProcessed("expired_payments", expired)

	cancelled, err := s.transactions.CancelStaleConfirmations(ctx, s.batchSize)
	if err != nil {
		zap.L().Error("stale confirmation sweep failed", zap.Error(err))
	}
	result.CancelledStale = cancelled
	monitoring.SweeperProcessed("cancelled_stale", cancelled)

	batches, err := s.points.ExpirePoints(ctx, s.batchSize)
	if err != nil {
		zap.L().Error("point expiry sweep failed", zap.Error(err))
	}
	result.ExpiredPointBatches = batches
	monitoring.SweeperProcessed("expired_point_batches", batches)

	if expired+cancelled+batches > 0 {
		zap.L().Info("reconciliation pass finished",
			zap.Int("expiredPayments", expired),
			zap.Int("cancelledStale", cancelled),
			zap.Int("expiredPointBatches", batches),
		)
	}

	return result
}
