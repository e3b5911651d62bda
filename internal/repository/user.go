package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserRepository struct {
	db        *gorm.DB
	dao       *dao.UserDAO
	pointDAO  *dao.PointDAO
	couponDAO *dao.CouponDAO
}

func NewUserRepository(db *gorm.DB, userDAO *dao.UserDAO, pointDAO *dao.PointDAO, couponDAO *dao.CouponDAO) *UserRepository {
	return &UserRepository{
		db:        db,
		dao:       userDAO,
		pointDAO:  pointDAO,
		couponDAO: couponDAO,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, nil, r.domainToDao(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

// CreateWithReferral signs a referred user up in one atomic unit: the user
// row, the referrer's bonus grant and the new user's welcome coupon either
// all exist afterwards or none do.
func (r *UserRepository) CreateWithReferral(ctx context.Context, user domain.User, bonus domain.PointRecord, welcome domain.Coupon) (domain.User, error) {
	var created dao.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		created, txErr = r.dao.Insert(ctx, tx, r.domainToDao(user))
		if txErr != nil {
			return fmt.Errorf("r.dao.Insert -> %w", txErr)
		}

		if _, txErr = r.pointDAO.Grant(ctx, tx, dao.PointRecord{
			UserID:      bonus.UserID,
			Amount:      bonus.Amount,
			ExpiresAt:   bonus.ExpiresAt,
			Description: bonus.Description,
			CreatedAt:   bonus.CreatedAt,
		}); txErr != nil {
			return fmt.Errorf("r.pointDAO.Grant -> %w", txErr)
		}

		welcome.UserID = &created.ID
		if _, txErr = r.couponDAO.Insert(ctx, tx, couponDomainToDao(welcome)); txErr != nil {
			return fmt.Errorf("r.couponDAO.Insert -> %w", txErr)
		}

		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(user), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(user), nil
}

func (r *UserRepository) FindByReferralCode(ctx context.Context, code string) (domain.User, error) {
	user, err := r.dao.FindByReferralCode(ctx, code)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByReferralCode -> %w", err)
	}

	return r.daoToDomain(user), nil
}

func (r *UserRepository) domainToDao(u domain.User) dao.User {
	return dao.User{
		ID:            u.ID,
		Email:         u.Email,
		Password:      u.Password,
		Name:          u.Name,
		Role:          u.Role,
		ReferralCode:  u.ReferralCode,
		PointsBalance: u.PointsBalance,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:            u.ID,
		Email:         u.Email,
		Password:      u.Password,
		Name:          u.Name,
		Role:          u.Role,
		ReferralCode:  u.ReferralCode,
		PointsBalance: u.PointsBalance,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
