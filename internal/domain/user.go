package domain

import "time"

const (
	RoleCustomer  = "customer"
	RoleOrganizer = "organizer"
)

type User struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	Password      string    `json:"-"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	ReferralCode  string    `json:"referral_code"`
	PointsBalance int       `json:"points_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
