package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository/dao"
)

var (
	ErrTransactionNotFound = dao.ErrTransactionNotFound
	ErrStatusConflict      = dao.ErrStatusConflict
)

// TransactionRepository owns every multi-resource atomic unit of the purchase
// lifecycle. Each method that debits or credits more than one resource runs
// inside a single storage transaction: a crash or a losing race leaves no
// partial debit behind.
type TransactionRepository struct {
	db        *gorm.DB
	dao       *dao.TransactionDAO
	eventDAO  *dao.EventDAO
	pointDAO  *dao.PointDAO
	couponDAO *dao.CouponDAO
}

func NewTransactionRepository(db *gorm.DB, transactionDAO *dao.TransactionDAO, eventDAO *dao.EventDAO, pointDAO *dao.PointDAO, couponDAO *dao.CouponDAO) *TransactionRepository {
	return &TransactionRepository{
		db:        db,
		dao:       transactionDAO,
		eventDAO:  eventDAO,
		pointDAO:  pointDAO,
		couponDAO: couponDAO,
	}
}

// CreatePurchase debits seats, points and coupon usage and inserts the
// transaction row, all in one atomic unit. Any insufficiency rolls the whole
// unit back.
func (r *TransactionRepository) CreatePurchase(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	var created dao.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if txErr := r.eventDAO.DecrementSeats(ctx, tx, transaction.EventID, transaction.Quantity); txErr != nil {
			return fmt.Errorf("r.eventDAO.DecrementSeats -> %w", txErr)
		}

		if transaction.PointsUsed > 0 {
			description := fmt.Sprintf("Points used for transaction %s", transaction.ReferenceNo)
			if txErr := r.pointDAO.Consume(ctx, tx, transaction.UserID, transaction.PointsUsed, description, transaction.CreatedAt); txErr != nil {
				return fmt.Errorf("r.pointDAO.Consume -> %w", txErr)
			}
		}

		if transaction.CouponID != nil {
			if txErr := r.couponDAO.IncrementUsage(ctx, tx, *transaction.CouponID); txErr != nil {
				return fmt.Errorf("r.couponDAO.IncrementUsage -> %w", txErr)
			}
		}

		var txErr error
		created, txErr = r.dao.Insert(ctx, tx, transactionDomainToDao(transaction))
		if txErr != nil {
			return fmt.Errorf("r.dao.Insert -> %w", txErr)
		}

		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	return transactionDaoToDomain(created), nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uint) (domain.Transaction, error) {
	transaction, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("r.dao.GetByID -> %w", err)
	}

	return transactionDaoToDomain(transaction), nil
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	transactions, err := r.dao.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByUserID -> %w", err)
	}

	return transactionsDaoToDomain(transactions), nil
}

func (r *TransactionRepository) ListByEventID(ctx context.Context, eventID uint) ([]domain.Transaction, error) {
	transactions, err := r.dao.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByEventID -> %w", err)
	}

	return transactionsDaoToDomain(transactions), nil
}

// SubmitPaymentProof stores the proof reference and advances the transaction
// to WAITING_CONFIRMATION behind the status guard.
func (r *TransactionRepository) SubmitPaymentProof(ctx context.Context, id uint, proof string) error {
	return r.dao.SetPaymentProof(ctx, id, proof,
		string(domain.StatusWaitingPayment), string(domain.StatusWaitingConfirmation))
}

// Release drives a transaction into a refunding terminal state (EXPIRED,
// REJECTED or CANCELLED) and credits back every resource the purchase
// debited. The status compare-and-set is part of the same atomic unit, so a
// racing trigger loses with ErrStatusConflict and no side effects.
func (r *TransactionRepository) Release(ctx context.Context, transaction domain.Transaction, from, to domain.TransactionStatus, now time.Time) error {
	if !to.Refunds() {
		return fmt.Errorf("status %v does not refund", to)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if txErr := r.dao.UpdateStatus(ctx, tx, transaction.ID, string(from), string(to)); txErr != nil {
			return txErr
		}

		if txErr := r.eventDAO.IncrementSeats(ctx, tx, transaction.EventID, transaction.Quantity); txErr != nil {
			return fmt.Errorf("r.eventDAO.IncrementSeats -> %w", txErr)
		}

		if transaction.PointsUsed > 0 {
			// A fresh grant, not a revival of the consumed records.
			description := fmt.Sprintf("Points refund for %v transaction %s", to, transaction.ReferenceNo)
			if _, txErr := r.pointDAO.Grant(ctx, tx, dao.PointRecord{
				UserID:      transaction.UserID,
				Amount:      transaction.PointsUsed,
				ExpiresAt:   now.AddDate(1, 0, 0),
				Description: description,
				CreatedAt:   now,
			}); txErr != nil {
				return fmt.Errorf("r.pointDAO.Grant -> %w", txErr)
			}
		}

		if transaction.CouponID != nil {
			if txErr := r.couponDAO.DecrementUsage(ctx, tx, *transaction.CouponID); txErr != nil {
				return fmt.Errorf("r.couponDAO.DecrementUsage -> %w", txErr)
			}
		}

		return nil
	})
}

// ConfirmWithReward moves WAITING_CONFIRMATION to CONFIRMED and grants the
// purchase reward in the same atomic unit.
func (r *TransactionRepository) ConfirmWithReward(ctx context.Context, transaction domain.Transaction, reward domain.PointRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if txErr := r.dao.UpdateStatus(ctx, tx, transaction.ID,
			string(domain.StatusWaitingConfirmation), string(domain.StatusConfirmed)); txErr != nil {
			return txErr
		}

		if reward.Amount > 0 {
			if _, txErr := r.pointDAO.Grant(ctx, tx, pointDomainToDao(reward)); txErr != nil {
				return fmt.Errorf("r.pointDAO.Grant -> %w", txErr)
			}
		}

		return nil
	})
}

func (r *TransactionRepository) FindOverduePayments(ctx context.Context, now time.Time, limit int) ([]domain.Transaction, error) {
	transactions, err := r.dao.FindOverduePayments(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindOverduePayments -> %w", err)
	}

	return transactionsDaoToDomain(transactions), nil
}

func (r *TransactionRepository) FindStaleConfirmations(ctx context.Context, cutoff time.Time, limit int) ([]domain.Transaction, error) {
	transactions, err := r.dao.FindStaleConfirmations(ctx, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindStaleConfirmations -> %w", err)
	}

	return transactionsDaoToDomain(transactions), nil
}

func transactionDomainToDao(t domain.Transaction) dao.Transaction {
	return dao.Transaction{
		ID:              t.ID,
		ReferenceNo:     t.ReferenceNo,
		UserID:          t.UserID,
		EventID:         t.EventID,
		Quantity:        t.Quantity,
		TotalAmount:     t.TotalAmount,
		PointsUsed:      t.PointsUsed,
		CouponID:        t.CouponID,
		Status:          string(t.Status),
		PaymentDeadline: t.PaymentDeadline,
		PaymentProof:    t.PaymentProof,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func transactionDaoToDomain(t dao.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:              t.ID,
		ReferenceNo:     t.ReferenceNo,
		UserID:          t.UserID,
		EventID:         t.EventID,
		Quantity:        t.Quantity,
		TotalAmount:     t.TotalAmount,
		PointsUsed:      t.PointsUsed,
		CouponID:        t.CouponID,
		Status:          domain.TransactionStatus(t.Status),
		PaymentDeadline: t.PaymentDeadline,
		PaymentProof:    t.PaymentProof,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func transactionsDaoToDomain(transactions []dao.Transaction) []domain.Transaction {
	result := make([]domain.Transaction, len(transactions))
	for i, transaction := range transactions {
		result[i] = transactionDaoToDomain(transaction)
	}

	return result
}
