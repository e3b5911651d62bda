package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponCodeExists    = errors.New("coupon code already exists")
	ErrCouponUsageExceeded = errors.New("coupon usage limit reached")
)

type Coupon struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"unique;not null"`

	DiscountType  string `gorm:"not null"`
	DiscountValue int    `gorm:"not null"`

	MaxUses   int  `gorm:"not null;default:0"`
	UsedCount int  `gorm:"not null;default:0"`
	IsActive  bool `gorm:"not null;default:true"`

	EventID *uint `gorm:"index"`
	UserID  *uint `gorm:"index"`

	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type CouponDAO struct {
	db *gorm.DB
}

func NewCouponDAO(db *gorm.DB) *CouponDAO {
	return &CouponDAO{
		db: db,
	}
}

func (d *CouponDAO) Insert(ctx context.Context, tx *gorm.DB, coupon Coupon) (Coupon, error) {
	result := d.conn(ctx, tx).Create(&coupon)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_coupons_code"`) {
			return Coupon{}, ErrCouponCodeExists
		}

		return Coupon{}, result.Error
	}

	return coupon, nil
}

func (d *CouponDAO) GetByID(ctx context.Context, id uint) (Coupon, error) {
	var coupon Coupon
	result := d.db.WithContext(ctx).First(&coupon, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Coupon{}, ErrCouponNotFound
		}

		return Coupon{}, result.Error
	}

	return coupon, nil
}

func (d *CouponDAO) GetByCode(ctx context.Context, code string) (Coupon, error) {
	var coupon Coupon
	result := d.db.WithContext(ctx).Where("code = ?", code).First(&coupon)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Coupon{}, ErrCouponNotFound
		}

		return Coupon{}, result.Error
	}

	return coupon, nil
}

// IncrementUsage atomically reserves one use. The guard keeps used_count
// within max_uses when a cap is set; a capped-out coupon affects zero rows.
func (d *CouponDAO) IncrementUsage(ctx context.Context, tx *gorm.DB, id uint) error {
	result := d.conn(ctx, tx).Model(&Coupon{}).
		Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCouponUsageExceeded
	}

	return nil
}

// DecrementUsage releases one reserved use, never below zero.
func (d *CouponDAO) DecrementUsage(ctx context.Context, tx *gorm.DB, id uint) error {
	result := d.conn(ctx, tx).Model(&Coupon{}).
		Where("id = ? AND used_count > 0", id).
		Update("used_count", gorm.Expr("used_count - 1"))

	return result.Error
}

func (d *CouponDAO) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}

	return d.db.WithContext(ctx)
}
