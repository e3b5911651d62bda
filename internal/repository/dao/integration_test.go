package dao_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository/dao"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/testutil"
)

func TestEventDAO_Seats(t *testing.T) {
	db := testutil.OpenTestDB(t)
	eventDAO := dao.NewEventDAO(db)
	ctx := context.Background()

	event, err := eventDAO.Insert(ctx, dao.Event{
		OrganizerID:    1,
		Name:           "Go Conference",
		Location:       "Jakarta",
		Price:          50000,
		Capacity:       10,
		AvailableSeats: 10,
		StartsAt:       time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	t.Run("decrement holds seats", func(t *testing.T) {
		require.NoError(t, eventDAO.DecrementSeats(ctx, nil, event.ID, 4))

		stored, getErr := eventDAO.GetByID(ctx, event.ID)
		require.NoError(t, getErr)
		assert.Equal(t, 6, stored.AvailableSeats)
	})

	t.Run("decrement beyond availability fails atomically", func(t *testing.T) {
		err := eventDAO.DecrementSeats(ctx, nil, event.ID, 7)
		assert.ErrorIs(t, err, dao.ErrInsufficientSeats)

		stored, getErr := eventDAO.GetByID(ctx, event.ID)
		require.NoError(t, getErr)
		assert.Equal(t, 6, stored.AvailableSeats)
	})

	t.Run("increment clamps at capacity", func(t *testing.T) {
		require.NoError(t, eventDAO.IncrementSeats(ctx, nil, event.ID, 100))

		stored, getErr := eventDAO.GetByID(ctx, event.ID)
		require.NoError(t, getErr)
		assert.Equal(t, 10, stored.AvailableSeats)
	})
}

func TestTransactionDAO_UpdateStatus(t *testing.T) {
	db := testutil.OpenTestDB(t)
	transactionDAO := dao.NewTransactionDAO(db)
	ctx := context.Background()

	transaction, err := transactionDAO.Insert(ctx, nil, dao.Transaction{
		ReferenceNo:     "ref-1",
		UserID:          1,
		EventID:         1,
		Quantity:        1,
		TotalAmount:     50000,
		Status:          "WAITING_PAYMENT",
		PaymentDeadline: time.Now().Add(2 * time.Hour),
	})
	require.NoError(t, err)

	t.Run("matching from-status wins", func(t *testing.T) {
		err := transactionDAO.UpdateStatus(ctx, nil, transaction.ID, "WAITING_PAYMENT", "WAITING_CONFIRMATION")
		require.NoError(t, err)

		stored, getErr := transactionDAO.GetByID(ctx, transaction.ID)
		require.NoError(t, getErr)
		assert.Equal(t, "WAITING_CONFIRMATION", stored.Status)
	})

	t.Run("stale from-status loses with a conflict", func(t *testing.T) {
		err := transactionDAO.UpdateStatus(ctx, nil, transaction.ID, "WAITING_PAYMENT", "EXPIRED")
		assert.ErrorIs(t, err, dao.ErrStatusConflict)

		stored, getErr := transactionDAO.GetByID(ctx, transaction.ID)
		require.NoError(t, getErr)
		assert.Equal(t, "WAITING_CONFIRMATION", stored.Status)
	})
}

func TestPointDAO_Lifecycle(t *testing.T) {
	db := testutil.OpenTestDB(t)
	userDAO := dao.NewUserDAO(db)
	pointDAO := dao.NewPointDAO(db)
	ctx := context.Background()
	now := time.Now()

	user, err := userDAO.Insert(ctx, nil, dao.User{
		Email:        "alice@example.com",
		Password:     "hashed",
		Name:         "Alice",
		Role:         "customer",
		ReferralCode: "ALICE123",
	})
	require.NoError(t, err)

	soon := now.Add(24 * time.Hour)
	later := now.AddDate(0, 6, 0)

	_, err = pointDAO.Grant(ctx, nil, dao.PointRecord{UserID: user.ID, Amount: 300, ExpiresAt: soon, Description: "first", CreatedAt: now})
	require.NoError(t, err)
	_, err = pointDAO.Grant(ctx, nil, dao.PointRecord{UserID: user.ID, Amount: 500, ExpiresAt: later, Description: "second", CreatedAt: now})
	require.NoError(t, err)

	t.Run("grants add up", func(t *testing.T) {
		balance, balErr := pointDAO.BalanceOf(ctx, user.ID)
		require.NoError(t, balErr)
		assert.Equal(t, 800, balance)
	})

	t.Run("consumption drains the earliest expiring batch first", func(t *testing.T) {
		require.NoError(t, pointDAO.Consume(ctx, nil, user.ID, 450, "purchase", now))

		balance, balErr := pointDAO.BalanceOf(ctx, user.ID)
		require.NoError(t, balErr)
		assert.Equal(t, 350, balance)

		// The soon batch is fully drained, so nothing from it is expirable.
		expirable, expErr := pointDAO.FindExpirable(ctx, soon.Add(time.Second), 10)
		require.NoError(t, expErr)
		assert.Empty(t, expirable)
	})

	t.Run("consuming more than the balance fails", func(t *testing.T) {
		err := pointDAO.Consume(ctx, nil, user.ID, 351, "too much", now)
		assert.ErrorIs(t, err, dao.ErrInsufficientPoints)
	})

	t.Run("expiry offsets the remaining value", func(t *testing.T) {
		afterAll := later.Add(time.Second)

		expirable, expErr := pointDAO.FindExpirable(ctx, afterAll, 10)
		require.NoError(t, expErr)
		require.Len(t, expirable, 1)
		assert.Equal(t, 350, expirable[0].Remaining)

		offset, offErr := pointDAO.OffsetExpired(ctx, expirable[0].ID, "expired", afterAll)
		require.NoError(t, offErr)
		assert.Equal(t, 350, offset)

		balance, balErr := pointDAO.BalanceOf(ctx, user.ID)
		require.NoError(t, balErr)
		assert.Equal(t, 0, balance)

		// Idempotent: nothing left to offset.
		expirable, expErr = pointDAO.FindExpirable(ctx, afterAll, 10)
		require.NoError(t, expErr)
		assert.Empty(t, expirable)
	})

	t.Run("history records every movement", func(t *testing.T) {
		records, total, histErr := pointDAO.History(ctx, user.ID, 1, 20)
		require.NoError(t, histErr)

		// 2 grants, 2 consumption offsets (450 spans both batches), 1 expiry offset.
		assert.EqualValues(t, 5, total)
		assert.Len(t, records, 5)
	})
}

func TestCouponDAO_Usage(t *testing.T) {
	db := testutil.OpenTestDB(t)
	couponDAO := dao.NewCouponDAO(db)
	ctx := context.Background()

	coupon, err := couponDAO.Insert(ctx, nil, dao.Coupon{
		Code:          "SUMMER10",
		DiscountType:  "PERCENTAGE",
		DiscountValue: 10,
		MaxUses:       2,
		IsActive:      true,
		ExpiresAt:     time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	t.Run("usage is capped", func(t *testing.T) {
		require.NoError(t, couponDAO.IncrementUsage(ctx, nil, coupon.ID))
		require.NoError(t, couponDAO.IncrementUsage(ctx, nil, coupon.ID))

		err := couponDAO.IncrementUsage(ctx, nil, coupon.ID)
		assert.ErrorIs(t, err, dao.ErrCouponUsageExceeded)
	})

	t.Run("a refund frees a use", func(t *testing.T) {
		require.NoError(t, couponDAO.DecrementUsage(ctx, nil, coupon.ID))
		require.NoError(t, couponDAO.IncrementUsage(ctx, nil, coupon.ID))
	})

	t.Run("duplicate code is rejected", func(t *testing.T) {
		_, err := couponDAO.Insert(ctx, nil, dao.Coupon{
			Code:          "SUMMER10",
			DiscountType:  "FIXED",
			DiscountValue: 1000,
			IsActive:      true,
			ExpiresAt:     time.Now().AddDate(0, 1, 0),
		})
		assert.ErrorIs(t, err, dao.ErrCouponCodeExists)
	})
}

func TestUserDAO_Insert(t *testing.T) {
	db := testutil.OpenTestDB(t)
	userDAO := dao.NewUserDAO(db)
	ctx := context.Background()

	_, err := userDAO.Insert(ctx, nil, dao.User{
		Email:        "alice@example.com",
		Password:     "hashed",
		ReferralCode: "ALICE123",
	})
	require.NoError(t, err)

	_, err = userDAO.Insert(ctx, nil, dao.User{
		Email:        "alice@example.com",
		Password:     "hashed",
		ReferralCode: "OTHER456",
	})
	assert.ErrorIs(t, err, dao.ErrUserEmailExists)
}
