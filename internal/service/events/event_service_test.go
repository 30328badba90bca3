package events

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) List(ctx context.Context, upcoming bool) ([]domain.Event, error) {
	args := m.Called(ctx, upcoming)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) Create(ctx context.Context, bearer string, event domain.Event) (*domain.Event, error) {
	args := m.Called(ctx, bearer, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, bearer, id string, event domain.Event) (*domain.Event, error) {
	args := m.Called(ctx, bearer, id, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) Delete(ctx context.Context, bearer, id string) error {
	return m.Called(ctx, bearer, id).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetEvents(ctx context.Context, upcoming bool) ([]domain.Event, error) {
	args := m.Called(ctx, upcoming)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockCache) SetEvents(ctx context.Context, upcoming bool, events []domain.Event) error {
	args := m.Called(ctx, upcoming, events)
	return args.Error(0)
}

func TestEventService_List_CacheMiss(t *testing.T) {
	repo := &MockEventRepository{}
	cache := &MockCache{}
	events := []domain.Event{{ID: "ev1", Title: "Gala"}}

	cache.On("GetEvents", mock.Anything, true).Return(nil, nil)
	repo.On("List", mock.Anything, true).Return(events, nil)
	cache.On("SetEvents", mock.Anything, true, events).Return(nil)

	got, err := NewEventService(repo, cache).List(context.Background(), true)

	require.NoError(t, err)
	assert.Equal(t, events, got)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestEventService_List_CacheHit(t *testing.T) {
	repo := &MockEventRepository{}
	cache := &MockCache{}
	events := []domain.Event{{ID: "ev1"}}
	cache.On("GetEvents", mock.Anything, false).Return(events, nil)

	got, err := NewEventService(repo, cache).List(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, events, got)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestEventService_List_CacheErrorFallsThrough(t *testing.T) {
	repo := &MockEventRepository{}
	cache := &MockCache{}
	events := []domain.Event{{ID: "ev1"}}
	cache.On("GetEvents", mock.Anything, false).Return(nil, errors.New("connection refused"))
	repo.On("List", mock.Anything, false).Return(events, nil)
	cache.On("SetEvents", mock.Anything, false, events).Return(errors.New("connection refused"))

	got, err := NewEventService(repo, cache).List(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, events, got)
}

func TestEventService_List_WithoutCache(t *testing.T) {
	repo := &MockEventRepository{}
	repo.On("List", mock.Anything, false).Return(nil, errors.New("api down"))

	_, err := NewEventService(repo, nil).List(context.Background(), false)

	assert.EqualError(t, err, "api down")
}

func TestEventService_GetByID(t *testing.T) {
	repo := &MockEventRepository{}
	repo.On("GetByID", mock.Anything, "ev1").Return(&domain.Event{ID: "ev1", Title: "Gala"}, nil)

	event, err := NewEventService(repo, &MockCache{}).GetByID(context.Background(), "ev1")

	require.NoError(t, err)
	assert.Equal(t, "Gala", event.Title)
}
