package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/config"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository"
)

var (
	ErrUserEmailExists      = repository.ErrUserEmailExists
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrReferralCodeNotFound = errors.New("referral code not found")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	CreateWithReferral(ctx context.Context, user domain.User, bonus domain.PointRecord, welcome domain.Coupon) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByReferralCode(ctx context.Context, code string) (domain.User, error)
}

type AuthService struct {
	repo     AuthUserRepository
	business config.BusinessConfig
	now      func() time.Time
}

func NewAuthService(repo AuthUserRepository, business config.BusinessConfig) *AuthService {
	return &AuthService{
		repo:     repo,
		business: business,
		now:      time.Now,
	}
}

// Signup registers a user. When referredBy names an existing referral code,
// the referrer's bonus points and the new user's welcome coupon are created
// together with the account, in one atomic unit.
func (s *AuthService) Signup(ctx context.Context, user domain.User, referredBy string) (domain.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	user.Password = string(hashed)
	user.ReferralCode = newReferralCode()
	if user.Role == "" {
		user.Role = domain.RoleCustomer
	}

	if referredBy == "" {
		created, createErr := s.repo.Create(ctx, user)
		if createErr != nil {
			if errors.Is(createErr, ErrUserEmailExists) {
				return domain.User{}, ErrUserEmailExists
			}

			return domain.User{}, fmt.Errorf("s.repo.Create -> %w", createErr)
		}

		return created, nil
	}

	referrer, err := s.repo.FindByReferralCode(ctx, referredBy)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrReferralCodeNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByReferralCode -> %w", err)
	}

	now := s.now()
	bonus := domain.PointRecord{
		UserID:      referrer.ID,
		Amount:      s.business.ReferralBonusPoints,
		ExpiresAt:   GrantPolicyBonus.ExpiryFrom(now),
		Description: fmt.Sprintf("Referral bonus for inviting %s", user.Email),
		CreatedAt:   now,
	}
	welcome := domain.Coupon{
		Code:          newWelcomeCouponCode(),
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: s.business.WelcomeCouponPercent,
		MaxUses:       1,
		IsActive:      true,
		ExpiresAt:     GrantPolicyBonus.ExpiryFrom(now),
	}

	created, err := s.repo.CreateWithReferral(ctx, user, bonus, welcome)
	if err != nil {
		if errors.Is(err, ErrUserEmailExists) {
			return domain.User{}, ErrUserEmailExists
		}

		return domain.User{}, fmt.Errorf("s.repo.CreateWithReferral -> %w", err)
	}

	return created, nil
}

// Login verifies the credentials and returns the stored user. A missing user
// and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func newWelcomeCouponCode() string {
	return "WELCOME-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
