package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository"
)

var (
	ErrCouponNotFound      = repository.ErrCouponNotFound
	ErrCouponCodeExists    = repository.ErrCouponCodeExists
	ErrCouponUsageExceeded = repository.ErrCouponUsageExceeded
)

type CouponRepository interface {
	Create(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error)
	GetByCode(ctx context.Context, code string) (domain.Coupon, error)
	GetByID(ctx context.Context, id uint) (domain.Coupon, error)
}

type CouponEventRepository interface {
	GetByID(ctx context.Context, id uint) (domain.Event, error)
}

type CouponService struct {
	repo      CouponRepository
	eventRepo CouponEventRepository
	now       func() time.Time
}

func NewCouponService(repo CouponRepository, eventRepo CouponEventRepository) *CouponService {
	return &CouponService{
		repo:      repo,
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

// CreateCoupon registers a coupon. An event-scoped coupon can only be created
// by the organizer of that event.
func (s *CouponService) CreateCoupon(ctx context.Context, coupon domain.Coupon, creatorID uint) (domain.Coupon, error) {
	if coupon.EventID != nil {
		event, err := s.eventRepo.GetByID(ctx, *coupon.EventID)
		if err != nil {
			return domain.Coupon{}, fmt.Errorf("s.eventRepo.GetByID -> %w", err)
		}

		if event.OrganizerID != creatorID {
			return domain.Coupon{}, ErrNotEventOrganizer
		}
	}

	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if errors.Is(err, ErrCouponCodeExists) {
			return domain.Coupon{}, ErrCouponCodeExists
		}

		return domain.Coupon{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Validate runs the full coupon check for the given purchase context. A
// missing code is reported as an invalid result, not an error; errors are
// reserved for storage failures.
func (s *CouponService) Validate(ctx context.Context, code string, userID, eventID uint) (domain.CouponValidation, error) {
	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return domain.CouponValidation{Valid: false, Reason: domain.CouponNotFound}, nil
		}

		return domain.CouponValidation{}, fmt.Errorf("s.repo.GetByCode -> %w", err)
	}

	return evaluateCoupon(coupon, userID, eventID, s.now()), nil
}

// evaluateCoupon applies the checks in a fixed order so a coupon failing
// several of them always reports the same reason: active, expiry, usage cap,
// event scope, then user scope.
func evaluateCoupon(coupon domain.Coupon, userID, eventID uint, now time.Time) domain.CouponValidation {
	invalid := func(reason domain.CouponInvalidReason) domain.CouponValidation {
		return domain.CouponValidation{Valid: false, Reason: reason, Coupon: coupon}
	}

	if !coupon.IsActive {
		return invalid(domain.CouponInactive)
	}

	if !coupon.ExpiresAt.After(now) {
		return invalid(domain.CouponExpired)
	}

	if coupon.MaxUses > 0 && coupon.UsedCount >= coupon.MaxUses {
		return invalid(domain.CouponUsageLimitReached)
	}

	if coupon.EventID != nil && *coupon.EventID != eventID {
		return invalid(domain.CouponEventScopeMismatch)
	}

	if coupon.UserID != nil && *coupon.UserID != userID {
		return invalid(domain.CouponUserScopeMismatch)
	}

	return domain.CouponValidation{Valid: true, Coupon: coupon}
}

// CalculateDiscount returns the discount amount a coupon takes off the given
// gross total. Percentage discounts round down; fixed discounts never exceed
// the total.
func CalculateDiscount(coupon domain.Coupon, total int) int {
	switch coupon.DiscountType {
	case domain.DiscountPercentage:
		return total * coupon.DiscountValue / 100
	case domain.DiscountFixed:
		if coupon.DiscountValue > total {
			return total
		}

		return coupon.DiscountValue
	default:
		return 0
	}
}
