package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientPoints = errors.New("not enough points")
	ErrInvalidPointAmount = errors.New("point amount must be positive")
)

// PointRecord rows are append-only. Consumption and expiry insert negative
// rows referencing the positive batch via SourceID; nothing is ever updated.
type PointRecord struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;index"`

	Amount      int       `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	SourceID    *uint     `gorm:"index"`
	Description string    `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

// PointBatch is a positive, unexpired point record joined with the sum
// of the negative records drawn against it.
type PointBatch struct {
	ID        uint
	UserID    uint
	ExpiresAt time.Time
	Remaining int
}

type PointDAO struct {
	db *gorm.DB
}

func NewPointDAO(db *gorm.DB) *PointDAO {
	return &PointDAO{
		db: db,
	}
}

// Grant inserts a positive record and bumps the cached balance in one atomic
// unit. When tx is nil the DAO opens its own transaction.
func (d *PointDAO) Grant(ctx context.Context, tx *gorm.DB, record PointRecord) (PointRecord, error) {
	if record.Amount <= 0 {
		return PointRecord{}, ErrInvalidPointAmount
	}

	if tx != nil {
		return d.grant(ctx, tx, record)
	}

	var created PointRecord
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		created, txErr = d.grant(ctx, tx, record)

		return txErr
	})
	if err != nil {
		return PointRecord{}, err
	}

	return created, nil
}

func (d *PointDAO) grant(ctx context.Context, tx *gorm.DB, record PointRecord) (PointRecord, error) {
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		return PointRecord{}, err
	}

	result := tx.WithContext(ctx).Model(&User{}).
		Where("id = ?", record.UserID).
		Update("points_balance", gorm.Expr("points_balance + ?", record.Amount))
	if result.Error != nil {
		return PointRecord{}, result.Error
	}
	if result.RowsAffected == 0 {
		return PointRecord{}, ErrUserNotFound
	}

	return record, nil
}

// Consume debits points FIFO-by-expiry: the soonest-expiring batch is drained
// first. It fails closed with ErrInsufficientPoints and no inserts when the
// cached balance cannot cover the amount. Must run inside the caller's
// transaction so the debit is atomic with the rest of the purchase.
func (d *PointDAO) Consume(ctx context.Context, tx *gorm.DB, userID uint, amount int, description string, now time.Time) error {
	if amount <= 0 {
		return ErrInvalidPointAmount
	}

	conn := tx.WithContext(ctx)

	// Lock the user row so the balance check and the inserts below see a
	// stable balance under concurrent purchases.
	var user User
	if err := conn.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}

		return err
	}
	if user.PointsBalance < amount {
		return ErrInsufficientPoints
	}

	batches, err := d.consumableBatches(conn, userID, now)
	if err != nil {
		return err
	}

	offsets, ok := allocateConsumption(batches, amount, description, now)
	if !ok {
		// Cached balance said yes but live batches cannot cover it; the
		// ledger and the cache have diverged.
		return ErrInsufficientPoints
	}

	if err := conn.Create(&offsets).Error; err != nil {
		return err
	}

	result := conn.Model(&User{}).
		Where("id = ?", userID).
		Update("points_balance", gorm.Expr("points_balance - ?", amount))

	return result.Error
}

func (d *PointDAO) consumableBatches(conn *gorm.DB, userID uint, now time.Time) ([]PointBatch, error) {
	var batches []PointBatch
	err := conn.Raw(`
		SELECT p.id, p.user_id, p.expires_at,
		       p.amount + COALESCE(SUM(o.amount), 0) AS remaining
		FROM point_records p
		LEFT JOIN point_records o ON o.source_id = p.id
		WHERE p.user_id = ? AND p.amount > 0 AND p.expires_at > ?
		GROUP BY p.id, p.user_id, p.expires_at
		HAVING p.amount + COALESCE(SUM(o.amount), 0) > 0
		ORDER BY p.expires_at ASC, p.id ASC`, userID, now).
		Scan(&batches).Error
	if err != nil {
		return nil, err
	}

	return batches, nil
}

// allocateConsumption walks batches in expiry order and carves the requested
// amount into negative offset records, one per touched batch.
func allocateConsumption(batches []PointBatch, amount int, description string, now time.Time) ([]PointRecord, bool) {
	var offsets []PointRecord
	left := amount

	for _, batch := range batches {
		if left == 0 {
			break
		}

		take := batch.Remaining
		if take > left {
			take = left
		}

		sourceID := batch.ID
		offsets = append(offsets, PointRecord{
			UserID:      batch.UserID,
			Amount:      -take,
			ExpiresAt:   batch.ExpiresAt,
			SourceID:    &sourceID,
			Description: description,
			CreatedAt:   now,
		})
		left -= take
	}

	if left > 0 {
		return nil, false
	}

	return offsets, true
}

// FindExpirable returns positive batches past their expiry that still have
// remaining value, i.e. have not been fully consumed or offset yet.
func (d *PointDAO) FindExpirable(ctx context.Context, now time.Time, limit int) ([]PointBatch, error) {
	var batches []PointBatch
	err := d.db.WithContext(ctx).Raw(`
		SELECT p.id, p.user_id, p.expires_at,
		       p.amount + COALESCE(SUM(o.amount), 0) AS remaining
		FROM point_records p
		LEFT JOIN point_records o ON o.source_id = p.id
		WHERE p.amount > 0 AND p.expires_at <= ?
		GROUP BY p.id, p.user_id, p.expires_at
		HAVING p.amount + COALESCE(SUM(o.amount), 0) > 0
		ORDER BY p.expires_at ASC, p.id ASC
		LIMIT ?`, now, limit).
		Scan(&batches).Error
	if err != nil {
		return nil, err
	}

	return batches, nil
}

// OffsetExpired writes the offsetting negative record for one expired batch
// in its own transaction, so a failing user does not block the sweep of
// others. The remaining value is recomputed under the user lock to keep a
// racing sweep from double-offsetting.
func (d *PointDAO) OffsetExpired(ctx context.Context, batchID uint, description string, now time.Time) (int, error) {
	var offset int
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var batch PointRecord
		if err := tx.First(&batch, batchID).Error; err != nil {
			return err
		}

		var user User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, batch.UserID).Error; err != nil {
			return err
		}

		var remaining int
		err := tx.Raw(`
			SELECT p.amount + COALESCE(SUM(o.amount), 0)
			FROM point_records p
			LEFT JOIN point_records o ON o.source_id = p.id
			WHERE p.id = ?
			GROUP BY p.id`, batchID).
			Scan(&remaining).Error
		if err != nil {
			return err
		}
		if remaining <= 0 {
			return nil
		}

		sourceID := batch.ID
		record := PointRecord{
			UserID:      batch.UserID,
			Amount:      -remaining,
			ExpiresAt:   batch.ExpiresAt,
			SourceID:    &sourceID,
			Description: description,
			CreatedAt:   now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		result := tx.Model(&User{}).
			Where("id = ?", batch.UserID).
			Update("points_balance", gorm.Expr("points_balance - ?", remaining))
		if result.Error != nil {
			return result.Error
		}

		offset = remaining

		return nil
	})
	if err != nil {
		return 0, err
	}

	return offset, nil
}

func (d *PointDAO) BalanceOf(ctx context.Context, userID uint) (int, error) {
	var user User
	result := d.db.WithContext(ctx).Select("points_balance").First(&user, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}

		return 0, result.Error
	}

	return user.PointsBalance, nil
}

func (d *PointDAO) History(ctx context.Context, userID uint, page, pageSize int) ([]PointRecord, int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&PointRecord{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var records []PointRecord
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, count, nil
}
