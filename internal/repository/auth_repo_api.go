package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/domain"
)

type AuthRepository interface {
	Login(ctx context.Context, email, password string) (*domain.AdminSession, error)
	Profile(ctx context.Context, bearer string) (*domain.Admin, error)
}

type APIAuthRepository struct {
	api *apiclient.Client
}

func NewAuthRepository(api *apiclient.Client) AuthRepository {
	return &APIAuthRepository{api: api}
}

func (r *APIAuthRepository) Login(ctx context.Context, email, password string) (*domain.AdminSession, error) {
	body := map[string]string{"email": email, "password": password}

	var session domain.AdminSession
	if err := r.api.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: "/api/auth/login", Body: body}, &session); err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, apiclient.DecodeError("login", errors.New("no token in response"))
	}
	if err := session.Admin.Validate(); err != nil {
		return nil, apiclient.DecodeError("login", err)
	}
	return &session, nil
}

func (r *APIAuthRepository) Profile(ctx context.Context, bearer string) (*domain.Admin, error) {
	var raw json.RawMessage
	if err := r.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/api/auth/profile", Bearer: bearer}, &raw); err != nil {
		return nil, err
	}

	var envelope struct {
		Admin *domain.Admin `json:"admin"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apiclient.DecodeError("profile", err)
	}
	admin := envelope.Admin
	if admin == nil {
		admin = &domain.Admin{}
		if err := json.Unmarshal(raw, admin); err != nil {
			return nil, apiclient.DecodeError("profile", err)
		}
	}
	if err := admin.Validate(); err != nil {
		return nil, apiclient.DecodeError("profile", err)
	}
	return admin, nil
}

var _ AuthRepository = (*APIAuthRepository)(nil)
