package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var errStartsAtInPast = errors.New("startsAt must be in the future")

type CreateEventRequest struct {
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	Capacity    int       `json:"capacity"`
	StartsAt    time.Time `json:"startsAt"`
}

func (req *CreateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Location, validation.Required),
		validation.Field(&req.Price, validation.Min(0)),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&req.StartsAt, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.StartsAt.After(time.Now()) {
		return errStartsAtInPast
	}

	return nil
}
