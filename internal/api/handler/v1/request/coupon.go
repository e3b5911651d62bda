package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var errExpiresAtInPast = errors.New("expiresAt must be in the future")

type CreateCouponRequest struct {
	Code          string    `json:"code"`
	DiscountType  string    `json:"discountType"`
	DiscountValue int       `json:"discountValue"`
	MaxUses       int       `json:"maxUses"`
	EventID       *uint     `json:"eventId,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

func (req *CreateCouponRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(3, 50)),
		validation.Field(&req.DiscountType, validation.Required, validation.In("PERCENTAGE", "FIXED")),
		validation.Field(&req.DiscountValue, validation.Required, validation.Min(1)),
		validation.Field(&req.MaxUses, validation.Min(0)),
		validation.Field(&req.ExpiresAt, validation.Required),
	)
	if err != nil {
		return err
	}

	if req.DiscountType == "PERCENTAGE" && req.DiscountValue > 100 {
		return validation.NewError("validation_discount_value", "percentage discount cannot exceed 100")
	}

	if !req.ExpiresAt.After(time.Now()) {
		return errExpiresAtInPast
	}

	return nil
}
