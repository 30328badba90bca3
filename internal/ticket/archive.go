package ticket

import (
	"context"
	"fmt"

	"github.com/Domenick1991/showtickets/internal/domain"
)

type OrderVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.Order, error)
}

type EventFinder interface {
	GetByID(ctx context.Context, id string) (*domain.Event, error)
}

// Archiver keeps a server side copy of every issued ticket.
type Archiver struct {
	orders    OrderVerifier
	events    EventFinder
	generator *Generator
	sink      *DirSink
}

func NewArchiver(orders OrderVerifier, events EventFinder, generator *Generator, sink *DirSink) *Archiver {
	return &Archiver{orders: orders, events: events, generator: generator, sink: sink}
}

// Archive renders the ticket behind token again and stores it. It returns the saved path.
func (a *Archiver) Archive(ctx context.Context, token, eventID string) (string, error) {
	order, err := a.orders.VerifyToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("verify token %s: %w", token, err)
	}
	if !order.Validated() {
		return "", fmt.Errorf("%w: order %s is not validated", ErrInvalidInput, order.ID)
	}
	if eventID == "" {
		eventID = string(order.EventID)
	}
	event, err := a.events.GetByID(ctx, eventID)
	if err != nil {
		return "", fmt.Errorf("get event %s: %w", eventID, err)
	}

	artifact, err := a.generator.Generate(ctx, *order, *event)
	if err != nil {
		return "", err
	}
	return a.sink.Save(artifact)
}
