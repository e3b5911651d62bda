package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/config"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
)

type fakeAuthRepo struct {
	users map[string]domain.User

	lastBonus   *domain.PointRecord
	lastWelcome *domain.Coupon
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: map[string]domain.User{}}
}

func (f *fakeAuthRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if _, exists := f.users[user.Email]; exists {
		return domain.User{}, ErrUserEmailExists
	}

	user.ID = uint(len(f.users) + 1)
	f.users[user.Email] = user

	return user, nil
}

func (f *fakeAuthRepo) CreateWithReferral(ctx context.Context, user domain.User, bonus domain.PointRecord, welcome domain.Coupon) (domain.User, error) {
	created, err := f.Create(ctx, user)
	if err != nil {
		return domain.User{}, err
	}

	f.lastBonus = &bonus
	f.lastWelcome = &welcome

	return created, nil
}

func (f *fakeAuthRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	user, ok := f.users[email]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}

	return user, nil
}

func (f *fakeAuthRepo) FindByReferralCode(ctx context.Context, code string) (domain.User, error) {
	for _, user := range f.users {
		if user.ReferralCode == code {
			return user, nil
		}
	}

	return domain.User{}, ErrUserNotFound
}

func newAuthService(repo *fakeAuthRepo, now time.Time) *AuthService {
	svc := NewAuthService(repo, config.BusinessConfig{
		ReferralBonusPoints:  10000,
		WelcomeCouponPercent: 10,
	})
	svc.now = func() time.Time { return now }

	return svc
}

func TestAuthService_Signup(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("hashes the password and assigns a referral code", func(t *testing.T) {
		repo := newFakeAuthRepo()
		svc := newAuthService(repo, now)

		user, err := svc.Signup(context.Background(), domain.User{
			Email:    "alice@example.com",
			Password: "secret1234",
			Name:     "Alice",
		}, "")
		require.NoError(t, err)

		assert.NotEqual(t, "secret1234", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1234")))
		assert.Len(t, user.ReferralCode, 8)
		assert.Equal(t, domain.RoleCustomer, user.Role)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		repo := newFakeAuthRepo()
		svc := newAuthService(repo, now)

		_, err := svc.Signup(context.Background(), domain.User{Email: "alice@example.com", Password: "secret1234"}, "")
		require.NoError(t, err)

		_, err = svc.Signup(context.Background(), domain.User{Email: "alice@example.com", Password: "secret1234"}, "")
		assert.ErrorIs(t, err, ErrUserEmailExists)
	})

	t.Run("referral signup rewards the referrer and welcomes the referee", func(t *testing.T) {
		repo := newFakeAuthRepo()
		svc := newAuthService(repo, now)

		referrer, err := svc.Signup(context.Background(), domain.User{Email: "alice@example.com", Password: "secret1234"}, "")
		require.NoError(t, err)

		_, err = svc.Signup(context.Background(), domain.User{
			Email:    "bob@example.com",
			Password: "secret1234",
		}, referrer.ReferralCode)
		require.NoError(t, err)

		require.NotNil(t, repo.lastBonus)
		assert.Equal(t, referrer.ID, repo.lastBonus.UserID)
		assert.Equal(t, 10000, repo.lastBonus.Amount)
		assert.Equal(t, now.AddDate(0, 3, 0), repo.lastBonus.ExpiresAt)

		require.NotNil(t, repo.lastWelcome)
		assert.True(t, strings.HasPrefix(repo.lastWelcome.Code, "WELCOME-"))
		assert.Equal(t, domain.DiscountPercentage, repo.lastWelcome.DiscountType)
		assert.Equal(t, 10, repo.lastWelcome.DiscountValue)
		assert.Equal(t, 1, repo.lastWelcome.MaxUses)
		assert.True(t, repo.lastWelcome.IsActive)
	})

	t.Run("unknown referral code is rejected", func(t *testing.T) {
		repo := newFakeAuthRepo()
		svc := newAuthService(repo, now)

		_, err := svc.Signup(context.Background(), domain.User{
			Email:    "bob@example.com",
			Password: "secret1234",
		}, "NOSUCHCODE")
		assert.ErrorIs(t, err, ErrReferralCodeNotFound)
	})
}

func TestAuthService_Login(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeAuthRepo()
	svc := newAuthService(repo, now)

	_, err := svc.Signup(context.Background(), domain.User{Email: "alice@example.com", Password: "secret1234"}, "")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, loginErr := svc.Login(context.Background(), "alice@example.com", "secret1234")
		require.NoError(t, loginErr)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, loginErr := svc.Login(context.Background(), "alice@example.com", "wrong-pass")
		assert.ErrorIs(t, loginErr, ErrInvalidCredentials)
	})

	t.Run("unknown email looks the same as a wrong password", func(t *testing.T) {
		_, loginErr := svc.Login(context.Background(), "nobody@example.com", "secret1234")
		assert.ErrorIs(t, loginErr, ErrInvalidCredentials)
	})
}
