package repository

import (
	"context"
	"fmt"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository/dao"
)

var (
	ErrEventNotFound     = dao.ErrEventNotFound
	ErrInsufficientSeats = dao.ErrInsufficientSeats
)

type EventRepository struct {
	dao *dao.EventDAO
}

func NewEventRepository(eventDAO *dao.EventDAO) *EventRepository {
	return &EventRepository{
		dao: eventDAO,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, eventDomainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return eventDaoToDomain(created), nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uint) (domain.Event, error) {
	event, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.GetByID -> %w", err)
	}

	return eventDaoToDomain(event), nil
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	events, err := r.dao.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	result := make([]domain.Event, len(events))
	for i, event := range events {
		result[i] = eventDaoToDomain(event)
	}

	return result, nil
}

func eventDomainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:             e.ID,
		OrganizerID:    e.OrganizerID,
		Name:           e.Name,
		Location:       e.Location,
		Description:    e.Description,
		Price:          e.Price,
		Capacity:       e.Capacity,
		AvailableSeats: e.AvailableSeats,
		StartsAt:       e.StartsAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func eventDaoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:             e.ID,
		OrganizerID:    e.OrganizerID,
		Name:           e.Name,
		Location:       e.Location,
		Description:    e.Description,
		Price:          e.Price,
		Capacity:       e.Capacity,
		AvailableSeats: e.AvailableSeats,
		StartsAt:       e.StartsAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}
