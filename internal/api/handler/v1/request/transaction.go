package request

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type CreateTransactionRequest struct {
	EventID    uint   `json:"eventId"`
	Quantity   int    `json:"quantity"`
	PointsUsed int    `json:"pointsUsed"`
	CouponCode string `json:"couponCode,omitempty"`
}

func (req *CreateTransactionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&req.PointsUsed, validation.Min(0)),
		validation.Field(&req.CouponCode, validation.Length(0, 50)),
	)
}
