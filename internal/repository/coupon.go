package repository

import (
	"context"
	"fmt"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository/dao"
)

var (
	ErrCouponNotFound      = dao.ErrCouponNotFound
	ErrCouponCodeExists    = dao.ErrCouponCodeExists
	ErrCouponUsageExceeded = dao.ErrCouponUsageExceeded
)

type CouponRepository struct {
	dao *dao.CouponDAO
}

func NewCouponRepository(couponDAO *dao.CouponDAO) *CouponRepository {
	return &CouponRepository{
		dao: couponDAO,
	}
}

func (r *CouponRepository) Create(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	created, err := r.dao.Insert(ctx, nil, couponDomainToDao(coupon))
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return couponDaoToDomain(created), nil
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (domain.Coupon, error) {
	coupon, err := r.dao.GetByCode(ctx, code)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("r.dao.GetByCode -> %w", err)
	}

	return couponDaoToDomain(coupon), nil
}

func (r *CouponRepository) GetByID(ctx context.Context, id uint) (domain.Coupon, error) {
	coupon, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("r.dao.GetByID -> %w", err)
	}

	return couponDaoToDomain(coupon), nil
}

func couponDomainToDao(c domain.Coupon) dao.Coupon {
	return dao.Coupon{
		ID:            c.ID,
		Code:          c.Code,
		DiscountType:  string(c.DiscountType),
		DiscountValue: c.DiscountValue,
		MaxUses:       c.MaxUses,
		UsedCount:     c.UsedCount,
		IsActive:      c.IsActive,
		EventID:       c.EventID,
		UserID:        c.UserID,
		ExpiresAt:     c.ExpiresAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func couponDaoToDomain(c dao.Coupon) domain.Coupon {
	return domain.Coupon{
		ID:            c.ID,
		Code:          c.Code,
		DiscountType:  domain.DiscountType(c.DiscountType),
		DiscountValue: c.DiscountValue,
		MaxUses:       c.MaxUses,
		UsedCount:     c.UsedCount,
		IsActive:      c.IsActive,
		EventID:       c.EventID,
		UserID:        c.UserID,
		ExpiresAt:     c.ExpiresAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
