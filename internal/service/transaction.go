package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/config"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/mail"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/monitoring"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository"
)

var (
	ErrTransactionNotFound      = repository.ErrTransactionNotFound
	ErrInsufficientSeats        = repository.ErrInsufficientSeats
	ErrInvalidTransactionStatus = errors.New("transaction is not in a status that allows this operation")
	ErrTransactionAccessDenied  = errors.New("transaction belongs to another user")
	ErrPointsExceedTotal        = errors.New("points used exceed the payable amount")
	ErrInvalidQuantity          = errors.New("quantity must be positive")
	ErrEventStarted             = errors.New("event has already started")
)

// CouponInvalidError reports a coupon that failed validation during checkout,
// carrying the reason for the response body.
type CouponInvalidError struct {
	Reason domain.CouponInvalidReason
}

func (e *CouponInvalidError) Error() string {
	return fmt.Sprintf("coupon is not valid: %v", e.Reason)
}

type TransactionRepository interface {
	CreatePurchase(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error)
	GetByID(ctx context.Context, id uint) (domain.Transaction, error)
	ListByUserID(ctx context.Context, userID uint) ([]domain.Transaction, error)
	ListByEventID(ctx context.Context, eventID uint) ([]domain.Transaction, error)
	SubmitPaymentProof(ctx context.Context, id uint, proof string) error
	Release(ctx context.Context, transaction domain.Transaction, from, to domain.TransactionStatus, now time.Time) error
	ConfirmWithReward(ctx context.Context, transaction domain.Transaction, reward domain.PointRecord) error
	FindOverduePayments(ctx context.Context, now time.Time, limit int) ([]domain.Transaction, error)
	FindStaleConfirmations(ctx context.Context, cutoff time.Time, limit int) ([]domain.Transaction, error)
}

type CouponValidator interface {
	Validate(ctx context.Context, code string, userID, eventID uint) (domain.CouponValidation, error)
}

type ProofStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type TransactionService struct {
	repo      TransactionRepository
	eventRepo EventRepository
	userRepo  UserRepository
	coupons   CouponValidator
	storage   ProofStorage
	mailer    mail.Mailer
	business  config.BusinessConfig
	now       func() time.Time
}

func NewTransactionService(
	repo TransactionRepository,
	eventRepo EventRepository,
	userRepo UserRepository,
	coupons CouponValidator,
	storage ProofStorage,
	mailer mail.Mailer,
	business config.BusinessConfig,
) *TransactionService {
	return &TransactionService{
		repo:      repo,
		eventRepo: eventRepo,
		userRepo:  userRepo,
		coupons:   coupons,
		storage:   storage,
		mailer:    mailer,
		business:  business,
		now:       time.Now,
	}
}

// CreateTransaction prices a purchase and opens it in WAITING_PAYMENT.
// Seats, points and coupon usage are debited up front; if any debit fails the
// whole purchase fails and nothing is held.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID, eventID uint, quantity, pointsUsed int, couponCode string) (domain.Transaction, error) {
	if quantity <= 0 {
		return domain.Transaction{}, ErrInvalidQuantity
	}
	if pointsUsed < 0 {
		return domain.Transaction{}, ErrInvalidPointAmount
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.eventRepo.GetByID -> %w", err)
	}

	now := s.now()
	if !event.StartsAt.After(now) {
		return domain.Transaction{}, ErrEventStarted
	}

	gross := event.Price * quantity

	var couponID *uint
	discount := 0
	if couponCode != "" {
		validation, validateErr := s.coupons.Validate(ctx, couponCode, userID, eventID)
		if validateErr != nil {
			return domain.Transaction{}, fmt.Errorf("s.coupons.Validate -> %w", validateErr)
		}

		if !validation.Valid {
			return domain.Transaction{}, &CouponInvalidError{Reason: validation.Reason}
		}

		discount = CalculateDiscount(validation.Coupon, gross)
		id := validation.Coupon.ID
		couponID = &id
	}

	if pointsUsed > gross-discount {
		return domain.Transaction{}, ErrPointsExceedTotal
	}

	transaction := domain.Transaction{
		ReferenceNo:     uuid.NewString(),
		UserID:          userID,
		EventID:         eventID,
		Quantity:        quantity,
		TotalAmount:     gross - discount - pointsUsed,
		PointsUsed:      pointsUsed,
		CouponID:        couponID,
		Status:          domain.StatusWaitingPayment,
		PaymentDeadline: now.Add(s.business.PaymentWindow()),
		CreatedAt:       now,
	}

	created, err := s.repo.CreatePurchase(ctx, transaction)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientSeats),
			errors.Is(err, ErrInsufficientPoints),
			errors.Is(err, ErrCouponUsageExceeded):
			return domain.Transaction{}, err
		}

		return domain.Transaction{}, fmt.Errorf("s.repo.CreatePurchase -> %w", err)
	}

	monitoring.TransactionCreated()

	return created, nil
}

// GetTransaction returns a transaction visible to the given user: its owner
// or the organizer of its event. Reading an overdue WAITING_PAYMENT
// transaction expires it first, so callers never see a stale deadline.
func (s *TransactionService) GetTransaction(ctx context.Context, id uint, user domain.User) (domain.Transaction, error) {
	transaction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	if transaction.UserID != user.ID {
		event, eventErr := s.eventRepo.GetByID(ctx, transaction.EventID)
		if eventErr != nil {
			return domain.Transaction{}, fmt.Errorf("s.eventRepo.GetByID -> %w", eventErr)
		}

		if event.OrganizerID != user.ID {
			return domain.Transaction{}, ErrTransactionAccessDenied
		}
	}

	return s.expireIfOverdue(ctx, transaction)
}

func (s *TransactionService) ListMyTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	transactions, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByUserID -> %w", err)
	}

	return transactions, nil
}

// ListEventTransactions returns every transaction for an event, for its
// organizer only.
func (s *TransactionService) ListEventTransactions(ctx context.Context, eventID, organizerID uint) ([]domain.Transaction, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.eventRepo.GetByID -> %w", err)
	}

	if event.OrganizerID != organizerID {
		return nil, ErrNotEventOrganizer
	}

	transactions, err := s.repo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByEventID -> %w", err)
	}

	return transactions, nil
}

// SubmitPaymentProof uploads the proof and advances WAITING_PAYMENT to
// WAITING_CONFIRMATION. An overdue transaction is expired instead.
func (s *TransactionService) SubmitPaymentProof(ctx context.Context, id, userID uint, file io.Reader, contentType string) (domain.Transaction, error) {
	transaction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	if transaction.UserID != userID {
		return domain.Transaction{}, ErrTransactionAccessDenied
	}

	transaction, err = s.expireIfOverdue(ctx, transaction)
	if err != nil {
		return domain.Transaction{}, err
	}

	if transaction.Status != domain.StatusWaitingPayment {
		return domain.Transaction{}, ErrInvalidTransactionStatus
	}

	key := fmt.Sprintf("payment-proofs/%s", uuid.NewString())
	proof, err := s.storage.Upload(ctx, key, file, contentType)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.storage.Upload -> %w", err)
	}

	if err = s.repo.SubmitPaymentProof(ctx, id, proof); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return domain.Transaction{}, ErrInvalidTransactionStatus
		}

		return domain.Transaction{}, fmt.Errorf("s.repo.SubmitPaymentProof -> %w", err)
	}

	monitoring.TransactionTransitioned(string(domain.StatusWaitingConfirmation), "proof")

	transaction, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return transaction, nil
}

// Confirm accepts the payment and grants the purchase reward. Confirming a
// transaction that is already CONFIRMED is a no-op success so retries and
// double-clicks stay harmless.
func (s *TransactionService) Confirm(ctx context.Context, id, organizerID uint) (domain.Transaction, error) {
	transaction, event, err := s.getForOrganizer(ctx, id, organizerID)
	if err != nil {
		return domain.Transaction{}, err
	}

	if transaction.Status == domain.StatusConfirmed {
		return transaction, nil
	}
	if transaction.Status != domain.StatusWaitingConfirmation {
		return domain.Transaction{}, ErrInvalidTransactionStatus
	}

	now := s.now()
	reward := domain.PointRecord{
		UserID:      transaction.UserID,
		Amount:      transaction.TotalAmount * s.business.RewardPercent / 100,
		ExpiresAt:   GrantPolicyPurchase.ExpiryFrom(now),
		Description: fmt.Sprintf("Reward for transaction %s", transaction.ReferenceNo),
		CreatedAt:   now,
	}

	if err = s.repo.ConfirmWithReward(ctx, transaction, reward); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return s.resolveConflict(ctx, id, domain.StatusConfirmed)
		}

		return domain.Transaction{}, fmt.Errorf("s.repo.ConfirmWithReward -> %w", err)
	}

	monitoring.TransactionTransitioned(string(domain.StatusConfirmed), "organizer")
	s.notify(ctx, transaction, "Payment confirmed",
		fmt.Sprintf("Your payment for <b>%s</b> (transaction %s) has been confirmed. See you there!", event.Name, transaction.ReferenceNo))

	transaction.Status = domain.StatusConfirmed

	return transaction, nil
}

// Reject refuses the payment and credits back everything the purchase
// debited. Rejecting an already REJECTED transaction is a no-op success.
func (s *TransactionService) Reject(ctx context.Context, id, organizerID uint) (domain.Transaction, error) {
	transaction, event, err := s.getForOrganizer(ctx, id, organizerID)
	if err != nil {
		return domain.Transaction{}, err
	}

	if transaction.Status == domain.StatusRejected {
		return transaction, nil
	}
	if transaction.Status != domain.StatusWaitingConfirmation {
		return domain.Transaction{}, ErrInvalidTransactionStatus
	}

	if err = s.repo.Release(ctx, transaction, domain.StatusWaitingConfirmation, domain.StatusRejected, s.now()); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return s.resolveConflict(ctx, id, domain.StatusRejected)
		}

		return domain.Transaction{}, fmt.Errorf("s.repo.Release -> %w", err)
	}

	monitoring.TransactionTransitioned(string(domain.StatusRejected), "organizer")
	s.notify(ctx, transaction, "Payment rejected",
		fmt.Sprintf("Your payment for <b>%s</b> (transaction %s) was rejected. Seats, points and coupon usage have been returned.", event.Name, transaction.ReferenceNo))

	transaction.Status = domain.StatusRejected

	return transaction, nil
}

// ExpireOverduePayments expires WAITING_PAYMENT transactions past their
// deadline, up to limit. Failures are isolated per transaction; a losing
// status race counts as handled.
func (s *TransactionService) ExpireOverduePayments(ctx context.Context, limit int) (int, error) {
	now := s.now()
	overdue, err := s.repo.FindOverduePayments(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("s.repo.FindOverduePayments -> %w", err)
	}

	processed := 0
	for _, transaction := range overdue {
		releaseErr := s.repo.Release(ctx, transaction, domain.StatusWaitingPayment, domain.StatusExpired, now)
		if releaseErr != nil && !errors.Is(releaseErr, repository.ErrStatusConflict) {
			zap.L().Error("failed to expire overdue transaction",
				zap.Uint("transactionID", transaction.ID),
				zap.Error(releaseErr),
			)

			continue
		}

		if releaseErr == nil {
			monitoring.TransactionTransitioned(string(domain.StatusExpired), "sweep")
		}
		processed++
	}

	return processed, nil
}

// CancelStaleConfirmations cancels WAITING_CONFIRMATION transactions that
// have seen no organizer decision within the confirmation timeout.
func (s *TransactionService) CancelStaleConfirmations(ctx context.Context, limit int) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.business.ConfirmationTimeout())
	stale, err := s.repo.FindStaleConfirmations(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("s.repo.FindStaleConfirmations -> %w", err)
	}

	processed := 0
	for _, transaction := range stale {
		releaseErr := s.repo.Release(ctx, transaction, domain.StatusWaitingConfirmation, domain.StatusCancelled, now)
		if releaseErr != nil && !errors.Is(releaseErr, repository.ErrStatusConflict) {
			zap.L().Error("failed to cancel stale transaction",
				zap.Uint("transactionID", transaction.ID),
				zap.Error(releaseErr),
			)

			continue
		}

		if releaseErr == nil {
			monitoring.TransactionTransitioned(string(domain.StatusCancelled), "sweep")
		}
		processed++
	}

	return processed, nil
}

// expireIfOverdue expires an overdue WAITING_PAYMENT transaction on the read
// path. A losing status race means another trigger already moved it; the
// fresh row is returned either way.
func (s *TransactionService) expireIfOverdue(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	if transaction.Status != domain.StatusWaitingPayment || !transaction.PaymentOverdue(s.now()) {
		return transaction, nil
	}

	err := s.repo.Release(ctx, transaction, domain.StatusWaitingPayment, domain.StatusExpired, s.now())
	if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
		return domain.Transaction{}, fmt.Errorf("s.repo.Release -> %w", err)
	}

	if err == nil {
		monitoring.TransactionTransitioned(string(domain.StatusExpired), "read")
	}

	fresh, err := s.repo.GetByID(ctx, transaction.ID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return fresh, nil
}

// resolveConflict re-reads after a losing status race. Landing on the wanted
// status means a concurrent identical request won; anything else is a real
// status error.
func (s *TransactionService) resolveConflict(ctx context.Context, id uint, wanted domain.TransactionStatus) (domain.Transaction, error) {
	fresh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	if fresh.Status == wanted {
		zap.L().Info("concurrent identical transition already applied",
			zap.Uint("transactionID", id),
			zap.String("status", string(wanted)),
		)

		return fresh, nil
	}

	return domain.Transaction{}, ErrInvalidTransactionStatus
}

func (s *TransactionService) getForOrganizer(ctx context.Context, id, organizerID uint) (domain.Transaction, domain.Event, error) {
	transaction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, domain.Event{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, transaction.EventID)
	if err != nil {
		return domain.Transaction{}, domain.Event{}, fmt.Errorf("s.eventRepo.GetByID -> %w", err)
	}

	if event.OrganizerID != organizerID {
		return domain.Transaction{}, domain.Event{}, ErrNotEventOrganizer
	}

	return transaction, event, nil
}

// notify emails the transaction owner. Delivery failures are logged, never
// surfaced.
func (s *TransactionService) notify(ctx context.Context, transaction domain.Transaction, subject, body string) {
	if s.mailer == nil {
		return
	}

	user, err := s.userRepo.FindByID(ctx, transaction.UserID)
	if err != nil {
		zap.L().Warn("failed to load user for notification",
			zap.Uint("userID", transaction.UserID),
			zap.Error(err),
		)

		return
	}

	if err = s.mailer.Send(user.Email, subject, body); err != nil {
		zap.L().Warn("failed to send notification email",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	}
}
