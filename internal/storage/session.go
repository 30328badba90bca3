package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/showtickets/internal/domain"
)

const (
	tokenKey = "token"
	adminKey = "admin"
)

// AdminSessions stores the bearer token and the cached admin profile under separate keys.
type AdminSessions struct {
	kv KV
}

func NewAdminSessions(kv KV) *AdminSessions {
	return &AdminSessions{kv: kv}
}

func (s *AdminSessions) Save(ctx context.Context, owner string, session domain.AdminSession) error {
	profile, err := json.Marshal(session.Admin)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, scopedKey(owner, tokenKey), session.Token); err != nil {
		return fmt.Errorf("write admin token: %w", err)
	}
	if err := s.kv.Set(ctx, scopedKey(owner, adminKey), string(profile)); err != nil {
		return fmt.Errorf("write admin profile: %w", err)
	}
	return nil
}

// Load returns nil when the owner has no token.
func (s *AdminSessions) Load(ctx context.Context, owner string) (*domain.AdminSession, error) {
	token, ok, err := s.kv.Get(ctx, scopedKey(owner, tokenKey))
	if err != nil {
		return nil, fmt.Errorf("read admin token: %w", err)
	}
	if !ok || token == "" {
		return nil, nil
	}

	session := &domain.AdminSession{Token: token}
	raw, ok, err := s.kv.Get(ctx, scopedKey(owner, adminKey))
	if err != nil {
		return nil, fmt.Errorf("read admin profile: %w", err)
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &session.Admin); err != nil {
			return nil, fmt.Errorf("decode admin profile: %w", err)
		}
	}
	return session, nil
}

func (s *AdminSessions) UpdateProfile(ctx context.Context, owner string, admin domain.Admin) error {
	profile, err := json.Marshal(admin)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, scopedKey(owner, adminKey), string(profile))
}

func (s *AdminSessions) Clear(ctx context.Context, owner string) error {
	if err := s.kv.Delete(ctx, scopedKey(owner, tokenKey)); err != nil {
		return err
	}
	return s.kv.Delete(ctx, scopedKey(owner, adminKey))
}
