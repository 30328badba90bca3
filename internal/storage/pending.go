package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/Domenick1991/showtickets/internal/domain"
)

const pendingOrdersKey = "pendingOrders"

// PendingOrders keeps, per visitor, a map from event id to the order awaiting its token.
// The map is stored as one JSON value and rewritten on every change, so writers are serialized.
type PendingOrders struct {
	kv KV
	mu sync.Mutex
}

func NewPendingOrders(kv KV) *PendingOrders {
	return &PendingOrders{kv: kv}
}

func (p *PendingOrders) All(ctx context.Context, visitorID string) (map[string]domain.PendingOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(ctx, visitorID)
}

func (p *PendingOrders) Get(ctx context.Context, visitorID, eventID string) (*domain.PendingOrder, error) {
	all, err := p.All(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	marker, ok := all[eventID]
	if !ok {
		return nil, nil
	}
	return &marker, nil
}

func (p *PendingOrders) Put(ctx context.Context, visitorID, eventID string, marker domain.PendingOrder) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	all, err := p.load(ctx, visitorID)
	if err != nil {
		return err
	}
	all[eventID] = marker
	return p.save(ctx, visitorID, all)
}

func (p *PendingOrders) Remove(ctx context.Context, visitorID, eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	all, err := p.load(ctx, visitorID)
	if err != nil {
		return err
	}
	if _, ok := all[eventID]; !ok {
		return nil
	}
	delete(all, eventID)
	if len(all) == 0 {
		return p.kv.Delete(ctx, scopedKey(visitorID, pendingOrdersKey))
	}
	return p.save(ctx, visitorID, all)
}

func (p *PendingOrders) load(ctx context.Context, visitorID string) (map[string]domain.PendingOrder, error) {
	raw, ok, err := p.kv.Get(ctx, scopedKey(visitorID, pendingOrdersKey))
	if err != nil {
		return nil, fmt.Errorf("read pending orders: %w", err)
	}
	all := make(map[string]domain.PendingOrder)
	if !ok || raw == "" {
		return all, nil
	}
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		log.Printf("discarding unreadable pending orders for visitor %s: %v", visitorID, err)
		return make(map[string]domain.PendingOrder), nil
	}
	return all, nil
}

func (p *PendingOrders) save(ctx context.Context, visitorID string, all map[string]domain.PendingOrder) error {
	payload, err := json.Marshal(all)
	if err != nil {
		return err
	}
	if err := p.kv.Set(ctx, scopedKey(visitorID, pendingOrdersKey), string(payload)); err != nil {
		return fmt.Errorf("write pending orders: %w", err)
	}
	return nil
}
