package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository"
)

type fakePointRepo struct {
	granted    []domain.PointRecord
	balance    int
	expirable  []repository.ExpirableBatch
	offsetErrs map[uint]error
	offsets    []uint
}

func (f *fakePointRepo) Grant(ctx context.Context, record domain.PointRecord) (domain.PointRecord, error) {
	record.ID = uint(len(f.granted) + 1)
	f.granted = append(f.granted, record)

	return record, nil
}

func (f *fakePointRepo) GetBalance(ctx context.Context, userID uint) (int, error) {
	return f.balance, nil
}

func (f *fakePointRepo) GetHistory(ctx context.Context, userID uint, page, pageSize int) ([]domain.PointRecord, int64, error) {
	return f.granted, int64(len(f.granted)), nil
}

func (f *fakePointRepo) FindExpirable(ctx context.Context, now time.Time, limit int) ([]repository.ExpirableBatch, error) {
	if limit < len(f.expirable) {
		return f.expirable[:limit], nil
	}

	return f.expirable, nil
}

func (f *fakePointRepo) OffsetExpired(ctx context.Context, batchID uint, description string, now time.Time) (int, error) {
	if err := f.offsetErrs[batchID]; err != nil {
		return 0, err
	}

	f.offsets = append(f.offsets, batchID)

	return 100, nil
}

func TestGrantPolicy_ExpiryFrom(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC), GrantPolicyPurchase.ExpiryFrom(now))
	assert.Equal(t, time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC), GrantPolicyBonus.ExpiryFrom(now))
}

func TestPointService_Grant(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakePointRepo{}
	svc := NewPointService(repo)
	svc.now = func() time.Time { return now }

	record, err := svc.Grant(context.Background(), 7, 500, GrantPolicyBonus, "Referral bonus")
	require.NoError(t, err)

	assert.Equal(t, uint(7), record.UserID)
	assert.Equal(t, 500, record.Amount)
	assert.Equal(t, now.AddDate(0, 3, 0), record.ExpiresAt)
}

func TestPointService_ExpirePoints(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("offsets every expirable batch", func(t *testing.T) {
		repo := &fakePointRepo{
			expirable: []repository.ExpirableBatch{
				{ID: 1, UserID: 7, Remaining: 100},
				{ID: 2, UserID: 8, Remaining: 50},
			},
		}
		svc := NewPointService(repo)
		svc.now = func() time.Time { return now }

		processed, err := svc.ExpirePoints(context.Background(), 10)
		require.NoError(t, err)

		assert.Equal(t, 2, processed)
		assert.Equal(t, []uint{1, 2}, repo.offsets)
	})

	t.Run("a failing batch does not block the rest", func(t *testing.T) {
		repo := &fakePointRepo{
			expirable: []repository.ExpirableBatch{
				{ID: 1, UserID: 7, Remaining: 100},
				{ID: 2, UserID: 8, Remaining: 50},
				{ID: 3, UserID: 9, Remaining: 25},
			},
			offsetErrs: map[uint]error{2: errors.New("deadlock")},
		}
		svc := NewPointService(repo)
		svc.now = func() time.Time { return now }

		processed, err := svc.ExpirePoints(context.Background(), 10)
		require.NoError(t, err)

		assert.Equal(t, 2, processed)
		assert.Equal(t, []uint{1, 3}, repo.offsets)
	})

	t.Run("respects the batch limit", func(t *testing.T) {
		repo := &fakePointRepo{
			expirable: []repository.ExpirableBatch{
				{ID: 1}, {ID: 2}, {ID: 3},
			},
		}
		svc := NewPointService(repo)
		svc.now = func() time.Time { return now }

		processed, err := svc.ExpirePoints(context.Background(), 2)
		require.NoError(t, err)

		assert.Equal(t, 2, processed)
	})
}
