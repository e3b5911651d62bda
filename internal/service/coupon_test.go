package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
)

func TestEvaluateCoupon(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	eventID := uint(10)
	otherEventID := uint(11)
	userID := uint(5)
	otherUserID := uint(6)

	base := domain.Coupon{
		ID:            1,
		Code:          "SUMMER10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		MaxUses:       100,
		UsedCount:     0,
		IsActive:      true,
		ExpiresAt:     now.AddDate(0, 1, 0),
	}

	t.Run("valid coupon", func(t *testing.T) {
		result := evaluateCoupon(base, userID, eventID, now)
		assert.True(t, result.Valid)
		assert.Equal(t, base.ID, result.Coupon.ID)
	})

	t.Run("inactive wins over every other failure", func(t *testing.T) {
		coupon := base
		coupon.IsActive = false
		coupon.ExpiresAt = now.AddDate(0, -1, 0)
		coupon.UsedCount = coupon.MaxUses

		result := evaluateCoupon(coupon, userID, eventID, now)
		assert.False(t, result.Valid)
		assert.Equal(t, domain.CouponInactive, result.Reason)
	})

	t.Run("expired wins over usage and scope", func(t *testing.T) {
		coupon := base
		coupon.ExpiresAt = now.Add(-time.Second)
		coupon.UsedCount = coupon.MaxUses
		coupon.EventID = &otherEventID

		result := evaluateCoupon(coupon, userID, eventID, now)
		assert.Equal(t, domain.CouponExpired, result.Reason)
	})

	t.Run("expiry boundary is exclusive", func(t *testing.T) {
		coupon := base
		coupon.ExpiresAt = now

		result := evaluateCoupon(coupon, userID, eventID, now)
		assert.Equal(t, domain.CouponExpired, result.Reason)
	})

	t.Run("usage cap reached", func(t *testing.T) {
		coupon := base
		coupon.UsedCount = coupon.MaxUses

		result := evaluateCoupon(coupon, userID, eventID, now)
		assert.Equal(t, domain.CouponUsageLimitReached, result.Reason)
	})

	t.Run("zero max uses means uncapped", func(t *testing.T) {
		coupon := base
		coupon.MaxUses = 0
		coupon.UsedCount = 100000

		result := evaluateCoupon(coupon, userID, eventID, now)
		assert.True(t, result.Valid)
	})

	t.Run("event scope mismatch", func(t *testing.T) {
		coupon := base
		coupon.EventID = &otherEventID

		result := evaluateCoupon(coupon, userID, eventID, now)
		assert.Equal(t, domain.CouponEventScopeMismatch, result.Reason)
	})

	t.Run("user scope mismatch", func(t *testing.T) {
		coupon := base
		coupon.UserID = &otherUserID

		result := evaluateCoupon(coupon, userID, eventID, now)
		assert.Equal(t, domain.CouponUserScopeMismatch, result.Reason)
	})

	t.Run("matching scopes pass", func(t *testing.T) {
		coupon := base
		coupon.EventID = &eventID
		coupon.UserID = &userID

		result := evaluateCoupon(coupon, userID, eventID, now)
		assert.True(t, result.Valid)
	})
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   domain.Coupon
		total    int
		expected int
	}{
		{
			name:     "percentage rounds down",
			coupon:   domain.Coupon{DiscountType: domain.DiscountPercentage, DiscountValue: 10},
			total:    1099,
			expected: 109,
		},
		{
			name:     "full percentage",
			coupon:   domain.Coupon{DiscountType: domain.DiscountPercentage, DiscountValue: 100},
			total:    5000,
			expected: 5000,
		},
		{
			name:     "fixed below total",
			coupon:   domain.Coupon{DiscountType: domain.DiscountFixed, DiscountValue: 2000},
			total:    5000,
			expected: 2000,
		},
		{
			name:     "fixed clamped at total",
			coupon:   domain.Coupon{DiscountType: domain.DiscountFixed, DiscountValue: 9000},
			total:    5000,
			expected: 5000,
		},
		{
			name:     "unknown type gives nothing",
			coupon:   domain.Coupon{DiscountType: "BOGOF", DiscountValue: 50},
			total:    5000,
			expected: 0,
		},
		{
			name:     "zero total",
			coupon:   domain.Coupon{DiscountType: domain.DiscountPercentage, DiscountValue: 50},
			total:    0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateDiscount(tt.coupon, tt.total))
		})
	}
}
