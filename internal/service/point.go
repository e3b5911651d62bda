package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/monitoring"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository"
)

var (
	ErrInsufficientPoints = repository.ErrInsufficientPoints
	ErrInvalidPointAmount = repository.ErrInvalidPointAmount
)

// GrantPolicy decides how long a freshly granted batch stays spendable.
type GrantPolicy int

const (
	// GrantPolicyPurchase covers purchase rewards and refunds: one year.
	GrantPolicyPurchase GrantPolicy = iota
	// GrantPolicyBonus covers referral and promotional grants: three months.
	GrantPolicyBonus
)

const (
	purchaseValidityMonths = 12
	bonusValidityMonths    = 3
)

func (p GrantPolicy) ExpiryFrom(now time.Time) time.Time {
	if p == GrantPolicyBonus {
		return now.AddDate(0, bonusValidityMonths, 0)
	}

	return now.AddDate(0, purchaseValidityMonths, 0)
}

type PointRepository interface {
	Grant(ctx context.Context, record domain.PointRecord) (domain.PointRecord, error)
	GetBalance(ctx context.Context, userID uint) (int, error)
	GetHistory(ctx context.Context, userID uint, page, pageSize int) ([]domain.PointRecord, int64, error)
	FindExpirable(ctx context.Context, now time.Time, limit int) ([]repository.ExpirableBatch, error)
	OffsetExpired(ctx context.Context, batchID uint, description string, now time.Time) (int, error)
}

type PointService struct {
	repo PointRepository
	now  func() time.Time
}

func NewPointService(repo PointRepository) *PointService {
	return &PointService{
		repo: repo,
		now:  time.Now,
	}
}

// Grant credits a user with a fresh point batch under the given policy.
func (s *PointService) Grant(ctx context.Context, userID uint, amount int, policy GrantPolicy, description string) (domain.PointRecord, error) {
	now := s.now()
	record, err := s.repo.Grant(ctx, domain.PointRecord{
		UserID:      userID,
		Amount:      amount,
		ExpiresAt:   policy.ExpiryFrom(now),
		Description: description,
		CreatedAt:   now,
	})
	if err != nil {
		return domain.PointRecord{}, fmt.Errorf("s.repo.Grant -> %w", err)
	}

	return record, nil
}

func (s *PointService) GetBalance(ctx context.Context, userID uint) (int, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("s.repo.GetBalance -> %w", err)
	}

	return balance, nil
}

func (s *PointService) GetHistory(ctx context.Context, userID uint, page, pageSize int) ([]domain.PointRecord, int64, error) {
	records, count, err := s.repo.GetHistory(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.GetHistory -> %w", err)
	}

	return records, count, nil
}

// ExpirePoints writes off every batch past its expiry, up to limit batches.
// Each batch is offset independently so one failure does not block the rest.
// Returns the number of batches written off.
func (s *PointService) ExpirePoints(ctx context.Context, limit int) (int, error) {
	now := s.now()
	batches, err := s.repo.FindExpirable(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("s.repo.FindExpirable -> %w", err)
	}

	processed := 0
	for _, batch := range batches {
		description := fmt.Sprintf("Points expired (batch %d)", batch.ID)
		offset, offsetErr := s.repo.OffsetExpired(ctx, batch.ID, description, now)
		if offsetErr != nil {
			zap.L().Error("failed to offset expired point batch",
				zap.Uint("batchID", batch.ID),
				zap.Uint("userID", batch.UserID),
				zap.Error(offsetErr),
			)

			continue
		}

		monitoring.PointsExpired(offset)
		processed++
	}

	return processed, nil
}
