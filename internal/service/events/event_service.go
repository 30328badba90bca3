package events

import (
	"context"
	"log"

	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/Domenick1991/showtickets/internal/repository"
)

type EventUseCase interface {
	List(ctx context.Context, upcoming bool) ([]domain.Event, error)
	GetByID(ctx context.Context, id string) (*domain.Event, error)
}

type EventCache interface {
	GetEvents(ctx context.Context, upcoming bool) ([]domain.Event, error)
	SetEvents(ctx context.Context, upcoming bool, events []domain.Event) error
}

type EventService struct {
	repo  repository.EventRepository
	cache EventCache
}

// NewEventService accepts a nil cache, in which case every listing goes to the API.
func NewEventService(repo repository.EventRepository, cache EventCache) *EventService {
	return &EventService{repo: repo, cache: cache}
}

func (s *EventService) List(ctx context.Context, upcoming bool) ([]domain.Event, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetEvents(ctx, upcoming); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			log.Printf("events cache read failed: %v", err)
		}
	}

	events, err := s.repo.List(ctx, upcoming)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetEvents(ctx, upcoming, events); err != nil {
			log.Printf("events cache write failed: %v", err)
		}
	}
	return events, nil
}

// GetByID always reads through: the booking page needs live availability.
func (s *EventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return s.repo.GetByID(ctx, id)
}

var _ EventUseCase = (*EventService)(nil)
