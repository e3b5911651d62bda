package domain

import "time"

type TransactionStatus string

const (
	StatusWaitingPayment      TransactionStatus = "WAITING_PAYMENT"
	StatusWaitingConfirmation TransactionStatus = "WAITING_CONFIRMATION"
	StatusConfirmed           TransactionStatus = "CONFIRMED"
	StatusRejected            TransactionStatus = "REJECTED"
	StatusExpired             TransactionStatus = "EXPIRED"
	StatusCancelled           TransactionStatus = "CANCELLED"
)

// transitions is the closed transition table of the purchase lifecycle.
// Anything not listed here is an illegal transition.
var transitions = map[TransactionStatus][]TransactionStatus{
	StatusWaitingPayment:      {StatusWaitingConfirmation, StatusExpired},
	StatusWaitingConfirmation: {StatusConfirmed, StatusRejected, StatusCancelled},
}

func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

func (s TransactionStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Refunds reports whether entering this terminal state credits back seats,
// points and coupon usage.
func (s TransactionStatus) Refunds() bool {
	return s == StatusExpired || s == StatusRejected || s == StatusCancelled
}

type Transaction struct {
	ID          uint   `json:"id"`
	ReferenceNo string `json:"reference_no"`
	UserID      uint   `json:"user_id"`
	EventID     uint   `json:"event_id"`

	Quantity    int   `json:"quantity"`
	TotalAmount int   `json:"total_amount"`
	PointsUsed  int   `json:"points_used"`
	CouponID    *uint `json:"coupon_id,omitempty"`

	Status          TransactionStatus `json:"status"`
	PaymentDeadline time.Time         `json:"payment_deadline"`
	PaymentProof    string            `json:"payment_proof,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentOverdue reports whether the transaction is still waiting for payment
// past its deadline and therefore due for the EXPIRED transition.
func (t *Transaction) PaymentOverdue(now time.Time) bool {
	return t.Status == StatusWaitingPayment && now.After(t.PaymentDeadline)
}
