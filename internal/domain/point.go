package domain

import "time"

// PointRecord is an immutable ledger entry. Positive amounts are grants,
// negative amounts are consumptions or expiries. A negative record carries
// SourceID, the positive batch it draws down; the remaining value of a batch
// is its amount plus the sum of all records referencing it.
type PointRecord struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Amount      int       `json:"amount"`
	ExpiresAt   time.Time `json:"expires_at"`
	SourceID    *uint     `json:"source_id,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
