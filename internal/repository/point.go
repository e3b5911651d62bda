package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository/dao"
)

var (
	ErrInsufficientPoints = dao.ErrInsufficientPoints
	ErrInvalidPointAmount = dao.ErrInvalidPointAmount
)

// ExpirableBatch is a positive point batch past its expiry that still holds
// value and needs an offsetting record.
type ExpirableBatch struct {
	ID        uint
	UserID    uint
	ExpiresAt time.Time
	Remaining int
}

type PointRepository struct {
	dao *dao.PointDAO
}

func NewPointRepository(pointDAO *dao.PointDAO) *PointRepository {
	return &PointRepository{
		dao: pointDAO,
	}
}

func (r *PointRepository) Grant(ctx context.Context, record domain.PointRecord) (domain.PointRecord, error) {
	created, err := r.dao.Grant(ctx, nil, pointDomainToDao(record))
	if err != nil {
		return domain.PointRecord{}, fmt.Errorf("r.dao.Grant -> %w", err)
	}

	return pointDaoToDomain(created), nil
}

func (r *PointRepository) GetBalance(ctx context.Context, userID uint) (int, error) {
	balance, err := r.dao.BalanceOf(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.BalanceOf -> %w", err)
	}

	return balance, nil
}

func (r *PointRepository) GetHistory(ctx context.Context, userID uint, page, pageSize int) ([]domain.PointRecord, int64, error) {
	records, count, err := r.dao.History(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.History -> %w", err)
	}

	result := make([]domain.PointRecord, len(records))
	for i, record := range records {
		result[i] = pointDaoToDomain(record)
	}

	return result, count, nil
}

func (r *PointRepository) FindExpirable(ctx context.Context, now time.Time, limit int) ([]ExpirableBatch, error) {
	batches, err := r.dao.FindExpirable(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindExpirable -> %w", err)
	}

	result := make([]ExpirableBatch, len(batches))
	for i, batch := range batches {
		result[i] = ExpirableBatch{
			ID:        batch.ID,
			UserID:    batch.UserID,
			ExpiresAt: batch.ExpiresAt,
			Remaining: batch.Remaining,
		}
	}

	return result, nil
}

func (r *PointRepository) OffsetExpired(ctx context.Context, batchID uint, description string, now time.Time) (int, error) {
	offset, err := r.dao.OffsetExpired(ctx, batchID, description, now)
	if err != nil {
		return 0, fmt.Errorf("r.dao.OffsetExpired -> %w", err)
	}

	return offset, nil
}

func pointDomainToDao(p domain.PointRecord) dao.PointRecord {
	return dao.PointRecord{
		ID:          p.ID,
		UserID:      p.UserID,
		Amount:      p.Amount,
		ExpiresAt:   p.ExpiresAt,
		SourceID:    p.SourceID,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func pointDaoToDomain(p dao.PointRecord) domain.PointRecord {
	return domain.PointRecord{
		ID:          p.ID,
		UserID:      p.UserID,
		Amount:      p.Amount,
		ExpiresAt:   p.ExpiresAt,
		SourceID:    p.SourceID,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}
