package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository"
)

var (
	ErrEventNotFound     = repository.ErrEventNotFound
	ErrNotEventOrganizer = errors.New("user is not the organizer of this event")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	GetByID(ctx context.Context, id uint) (domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
}

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

// CreateEvent registers an event for an organizer. Seats open at full
// capacity.
func (s *EventService) CreateEvent(ctx context.Context, event domain.Event, organizerID uint) (domain.Event, error) {
	event.OrganizerID = organizerID
	event.AvailableSeats = event.Capacity

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return events, nil
}
