package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/domain"
)

type EventRepository interface {
	List(ctx context.Context, upcoming bool) ([]domain.Event, error)
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	Create(ctx context.Context, bearer string, event domain.Event) (*domain.Event, error)
	Update(ctx context.Context, bearer, id string, event domain.Event) (*domain.Event, error)
	Delete(ctx context.Context, bearer, id string) error
}

type APIEventRepository struct {
	api *apiclient.Client
}

func NewEventRepository(api *apiclient.Client) EventRepository {
	return &APIEventRepository{api: api}
}

func (r *APIEventRepository) List(ctx context.Context, upcoming bool) ([]domain.Event, error) {
	var query url.Values
	if upcoming {
		query = url.Values{"upcoming": {"true"}}
	}

	var events []domain.Event
	if err := r.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/api/events", Query: query}, &events); err != nil {
		return nil, err
	}
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return nil, apiclient.DecodeError("event list", err)
		}
	}
	if events == nil {
		events = make([]domain.Event, 0)
	}
	return events, nil
}

func (r *APIEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var e domain.Event
	if err := r.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/api/events/" + url.PathEscape(id)}, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, apiclient.DecodeError("event", err)
	}
	return &e, nil
}

func (r *APIEventRepository) Create(ctx context.Context, bearer string, event domain.Event) (*domain.Event, error) {
	return r.save(ctx, apiclient.Request{Method: http.MethodPost, Path: "/api/events", Bearer: bearer}, event)
}

func (r *APIEventRepository) Update(ctx context.Context, bearer, id string, event domain.Event) (*domain.Event, error) {
	event.ID = id
	return r.save(ctx, apiclient.Request{Method: http.MethodPut, Path: "/api/events/" + url.PathEscape(id), Bearer: bearer}, event)
}

func (r *APIEventRepository) save(ctx context.Context, req apiclient.Request, event domain.Event) (*domain.Event, error) {
	if err := event.ValidateDraft(); err != nil {
		return nil, err
	}
	req.Body = event

	var saved domain.Event
	if err := r.api.Do(ctx, req, &saved); err != nil {
		return nil, err
	}
	if err := saved.Validate(); err != nil {
		return nil, apiclient.DecodeError("saved event", err)
	}
	return &saved, nil
}

func (r *APIEventRepository) Delete(ctx context.Context, bearer, id string) error {
	return r.api.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: "/api/events/" + url.PathEscape(id), Bearer: bearer}, nil)
}

var _ EventRepository = (*APIEventRepository)(nil)
