package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrStatusConflict      = errors.New("transaction status changed concurrently")
)

type Transaction struct {
	ID          uint   `gorm:"primaryKey"`
	ReferenceNo string `gorm:"unique;not null"`
	UserID      uint   `gorm:"not null;index"`
	EventID     uint   `gorm:"not null;index"`

	Quantity    int `gorm:"not null"`
	TotalAmount int `gorm:"not null"`
	PointsUsed  int `gorm:"not null;default:0"`
	CouponID    *uint

	Status          string    `gorm:"not null;index"`
	PaymentDeadline time.Time `gorm:"not null"`
	PaymentProof    string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;index"`
}

type TransactionDAO struct {
	db *gorm.DB
}

func NewTransactionDAO(db *gorm.DB) *TransactionDAO {
	return &TransactionDAO{
		db: db,
	}
}

func (d *TransactionDAO) Insert(ctx context.Context, tx *gorm.DB, transaction Transaction) (Transaction, error) {
	result := d.conn(ctx, tx).Create(&transaction)
	if result.Error != nil {
		return Transaction{}, result.Error
	}

	return transaction, nil
}

func (d *TransactionDAO) GetByID(ctx context.Context, id uint) (Transaction, error) {
	var transaction Transaction
	result := d.db.WithContext(ctx).First(&transaction, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Transaction{}, ErrTransactionNotFound
		}

		return Transaction{}, result.Error
	}

	return transaction, nil
}

func (d *TransactionDAO) ListByUserID(ctx context.Context, userID uint) ([]Transaction, error) {
	var transactions []Transaction
	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

func (d *TransactionDAO) ListByEventID(ctx context.Context, eventID uint) ([]Transaction, error) {
	var transactions []Transaction
	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

// UpdateStatus is a compare-and-set on the status column. The from guard
// inside the same statement is what makes racing transitions idempotent: the
// loser affects zero rows and gets ErrStatusConflict instead of re-applying
// side effects.
func (d *TransactionDAO) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from, to string) error {
	result := d.conn(ctx, tx).Model(&Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// SetPaymentProof stores the proof reference and advances the status in one
// guarded statement. The proof is set once; a second upload while still
// waiting for payment simply replaces an unreviewed reference.
func (d *TransactionDAO) SetPaymentProof(ctx context.Context, id uint, proof, from, to string) error {
	result := d.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"payment_proof": proof,
			"status":        to,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

func (d *TransactionDAO) FindOverduePayments(ctx context.Context, now time.Time, limit int) ([]Transaction, error) {
	var transactions []Transaction
	result := d.db.WithContext(ctx).
		Where("status = ? AND payment_deadline < ?", "WAITING_PAYMENT", now).
		Order("payment_deadline ASC").
		Limit(limit).
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

func (d *TransactionDAO) FindStaleConfirmations(ctx context.Context, cutoff time.Time, limit int) ([]Transaction, error) {
	var transactions []Transaction
	result := d.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", "WAITING_CONFIRMATION", cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

func (d *TransactionDAO) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}

	return d.db.WithContext(ctx)
}
