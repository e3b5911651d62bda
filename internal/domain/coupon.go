package domain

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

type Coupon struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`

	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue int          `json:"discount_value"`

	// MaxUses of zero means the coupon is uncapped.
	MaxUses   int  `json:"max_uses"`
	UsedCount int  `json:"used_count"`
	IsActive  bool `json:"is_active"`

	// Optional scope restrictions. A nil field means unrestricted.
	EventID *uint `json:"event_id,omitempty"`
	UserID  *uint `json:"user_id,omitempty"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CouponInvalidReason string

const (
	CouponNotFound           CouponInvalidReason = "NotFound"
	CouponInactive           CouponInvalidReason = "Inactive"
	CouponExpired            CouponInvalidReason = "Expired"
	CouponUsageLimitReached  CouponInvalidReason = "UsageLimitReached"
	CouponEventScopeMismatch CouponInvalidReason = "EventScopeMismatch"
	CouponUserScopeMismatch  CouponInvalidReason = "UserScopeMismatch"
)

type CouponValidation struct {
	Valid  bool                `json:"valid"`
	Reason CouponInvalidReason `json:"reason,omitempty"`
	Coupon Coupon              `json:"coupon,omitempty"`
}
