package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error)
	VerifyToken(ctx context.Context, token string) (*domain.Order, error)
	List(ctx context.Context, bearer, eventID string) ([]domain.Order, error)
	Validate(ctx context.Context, bearer, orderID string) (*domain.Order, error)
	Cancel(ctx context.Context, bearer, orderID string) (*domain.Order, error)
}

type APIOrderRepository struct {
	api *apiclient.Client
}

func NewOrderRepository(api *apiclient.Client) OrderRepository {
	return &APIOrderRepository{api: api}
}

func (r *APIOrderRepository) Create(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error) {
	var raw json.RawMessage
	if err := r.api.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: "/api/orders", Body: input}, &raw); err != nil {
		return nil, err
	}
	return decodeOrder("created order", raw)
}

func (r *APIOrderRepository) VerifyToken(ctx context.Context, token string) (*domain.Order, error) {
	var raw json.RawMessage
	body := map[string]string{"token": token}
	if err := r.api.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: "/api/orders/verify-token", Body: body}, &raw); err != nil {
		return nil, err
	}
	return decodeOrder("verified order", raw)
}

func (r *APIOrderRepository) List(ctx context.Context, bearer, eventID string) ([]domain.Order, error) {
	var query url.Values
	if eventID != "" {
		query = url.Values{"eventId": {eventID}}
	}

	var orders []domain.Order
	if err := r.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/api/orders", Query: query, Bearer: bearer}, &orders); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, apiclient.DecodeError("order list", err)
		}
	}
	if orders == nil {
		orders = make([]domain.Order, 0)
	}
	return orders, nil
}

func (r *APIOrderRepository) Validate(ctx context.Context, bearer, orderID string) (*domain.Order, error) {
	return r.transition(ctx, bearer, orderID, "validate")
}

func (r *APIOrderRepository) Cancel(ctx context.Context, bearer, orderID string) (*domain.Order, error) {
	return r.transition(ctx, bearer, orderID, "cancel")
}

func (r *APIOrderRepository) transition(ctx context.Context, bearer, orderID, action string) (*domain.Order, error) {
	var raw json.RawMessage
	path := "/api/orders/" + url.PathEscape(orderID) + "/" + action
	if err := r.api.Do(ctx, apiclient.Request{Method: http.MethodPut, Path: path, Bearer: bearer}, &raw); err != nil {
		return nil, err
	}
	return decodeOrder(action+"d order", raw)
}

var errNoOrder = errors.New("response carries no order")

// decodeOrder accepts both {"order": {...}} envelopes and bare orders.
func decodeOrder(what string, raw json.RawMessage) (*domain.Order, error) {
	if len(raw) == 0 {
		return nil, apiclient.DecodeError(what, errNoOrder)
	}

	var envelope struct {
		Order *domain.Order `json:"order"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apiclient.DecodeError(what, err)
	}

	order := envelope.Order
	if order == nil {
		order = &domain.Order{}
		if err := json.Unmarshal(raw, order); err != nil {
			return nil, apiclient.DecodeError(what, err)
		}
	}
	if err := order.Validate(); err != nil {
		return nil, apiclient.DecodeError(what, err)
	}
	return order, nil
}

var _ OrderRepository = (*APIOrderRepository)(nil)
