package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/domain"
)

type MediaRepository interface {
	List(ctx context.Context, destination domain.MediaDestination) ([]domain.Media, error)
	Create(ctx context.Context, bearer string, media domain.Media) (*domain.Media, error)
	Delete(ctx context.Context, bearer, id string) error
}

type APIMediaRepository struct {
	api *apiclient.Client
}

func NewMediaRepository(api *apiclient.Client) MediaRepository {
	return &APIMediaRepository{api: api}
}

func (r *APIMediaRepository) List(ctx context.Context, destination domain.MediaDestination) ([]domain.Media, error) {
	var query url.Values
	if destination != "" {
		query = url.Values{"destination": {string(destination)}}
	}

	var items []domain.Media
	if err := r.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/api/media", Query: query}, &items); err != nil {
		return nil, err
	}
	for _, m := range items {
		if err := m.Validate(true); err != nil {
			return nil, apiclient.DecodeError("media list", err)
		}
	}
	if items == nil {
		items = make([]domain.Media, 0)
	}
	return items, nil
}

func (r *APIMediaRepository) Create(ctx context.Context, bearer string, media domain.Media) (*domain.Media, error) {
	if err := media.Validate(false); err != nil {
		return nil, err
	}

	var created domain.Media
	if err := r.api.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: "/api/media", Bearer: bearer, Body: media}, &created); err != nil {
		return nil, err
	}
	if err := created.Validate(true); err != nil {
		return nil, apiclient.DecodeError("created media", err)
	}
	return &created, nil
}

func (r *APIMediaRepository) Delete(ctx context.Context, bearer, id string) error {
	return r.api.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: "/api/media/" + url.PathEscape(id), Bearer: bearer}, nil)
}

var _ MediaRepository = (*APIMediaRepository)(nil)
