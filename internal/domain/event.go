package domain

import "time"

type Event struct {
	ID          uint   `json:"id"`
	OrganizerID uint   `json:"organizer_id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`

	// Price is in the smallest currency unit.
	Price          int       `json:"price"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	StartsAt       time.Time `json:"starts_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
