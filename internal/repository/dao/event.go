package dao

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrInsufficientSeats = errors.New("not enough available seats")
)

type Event struct {
	ID          uint `gorm:"primaryKey"`
	OrganizerID uint `gorm:"not null;index"`

	Name        string `gorm:"not null"`
	Location    string `gorm:"not null"`
	Description string

	Price          int       `gorm:"not null"`
	Capacity       int       `gorm:"not null"`
	AvailableSeats int       `gorm:"not null"`
	StartsAt       time.Time `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) GetByID(ctx context.Context, id uint) (Event, error) {
	var event Event
	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) List(ctx context.Context) ([]Event, error) {
	var events []Event
	result := d.db.WithContext(ctx).Order("starts_at ASC").Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// DecrementSeats debits available seats. The WHERE guard makes over-selling
// impossible: a losing racer affects zero rows and gets ErrInsufficientSeats.
func (d *EventDAO) DecrementSeats(ctx context.Context, tx *gorm.DB, eventID uint, n int) error {
	result := d.conn(ctx, tx).Model(&Event{}).
		Where("id = ? AND available_seats >= ?", eventID, n).
		Update("available_seats", gorm.Expr("available_seats - ?", n))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientSeats
	}

	return nil
}

// IncrementSeats credits seats back, clamped at capacity. A refund that would
// push availability past capacity indicates double-crediting somewhere, so it
// is logged before being clamped.
func (d *EventDAO) IncrementSeats(ctx context.Context, tx *gorm.DB, eventID uint, n int) error {
	conn := d.conn(ctx, tx)

	var event Event
	if err := conn.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}

		return err
	}
	if event.AvailableSeats+n > event.Capacity {
		zap.L().Warn("seat credit clamped at capacity",
			zap.Uint("event_id", eventID),
			zap.Int("available_seats", event.AvailableSeats),
			zap.Int("credit", n),
			zap.Int("capacity", event.Capacity))
	}

	result := conn.Model(&Event{}).
		Where("id = ?", eventID).
		Update("available_seats", gorm.Expr("LEAST(available_seats + ?, capacity)", n))
	if result.Error != nil {
		return result.Error
	}

	return nil
}

func (d *EventDAO) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}

	return d.db.WithContext(ctx)
}
