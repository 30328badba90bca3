package booking

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/Domenick1991/showtickets/internal/kafka"
	"github.com/Domenick1991/showtickets/internal/monitoring"
	"github.com/Domenick1991/showtickets/internal/repository"
	"github.com/Domenick1991/showtickets/internal/ticket"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	Start(ctx context.Context, visitorID, eventID string) (*Flow, error)
	Get(sessionID string) (*Flow, error)
	PaymentMethods() []domain.PaymentChannel
}

// PendingStore persists the per-visitor pending-order markers.
type PendingStore interface {
	Get(ctx context.Context, visitorID, eventID string) (*domain.PendingOrder, error)
	Put(ctx context.Context, visitorID, eventID string, marker domain.PendingOrder) error
	Remove(ctx context.Context, visitorID, eventID string) error
}

type TicketGenerator interface {
	Generate(ctx context.Context, order domain.Order, event domain.Event) (*ticket.Artifact, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	events    repository.EventRepository
	orders    repository.OrderRepository
	pending   PendingStore
	tickets   TicketGenerator
	producer  Producer
	topic     string
	monitor   *monitoring.Monitor
	recipient string
	idleTTL   time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	flow     *Flow
	lastSeen time.Time
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithMonitor(m *monitoring.Monitor) BookingServiceOption {
	return func(s *BookingService) {
		s.monitor = m
	}
}

// WithRecipientLabel sets what replaces the recipient placeholder in payment instructions.
func WithRecipientLabel(label string) BookingServiceOption {
	return func(s *BookingService) {
		s.recipient = label
	}
}

func WithSessionTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	events repository.EventRepository,
	orders repository.OrderRepository,
	pending PendingStore,
	tickets TicketGenerator,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		events:    events,
		orders:    orders,
		pending:   pending,
		tickets:   tickets,
		recipient: domain.PlaceholderRecipient,
		idleTTL:   30 * time.Minute,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Start opens a booking session. A visitor with a pending order for the event lands
// directly on token validation.
func (s *BookingService) Start(ctx context.Context, visitorID, eventID string) (*Flow, error) {
	if visitorID == "" {
		return nil, fmt.Errorf("visitor id is required")
	}
	event, err := s.events.GetByID(ctx, eventID)
	s.monitor.TrackAPICall("get_event", err)
	if err != nil {
		return nil, err
	}
	pending, err := s.pending.Get(ctx, visitorID, eventID)
	if err != nil {
		return nil, fmt.Errorf("read pending orders: %w", err)
	}

	flow := newFlow(s, uuid.NewString(), visitorID, *event, pending)

	s.mu.Lock()
	s.sessions[flow.id] = &session{flow: flow, lastSeen: s.now()}
	s.mu.Unlock()
	s.monitor.SessionOpened()

	log.Printf("booking session %s opened for event %s at step %s", flow.id, eventID, flow.step)
	return flow, nil
}

func (s *BookingService) Get(sessionID string) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	return sess.flow, nil
}

// ExpireIdle drops sessions untouched for longer than the idle TTL. Pending markers
// live in storage and survive this.
func (s *BookingService) ExpireIdle() int {
	deadline := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	expired := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(deadline) {
			delete(s.sessions, id)
			expired++
		}
	}
	s.mu.Unlock()

	s.monitor.SessionsClosed(expired)
	return expired
}

// RunJanitor expires idle sessions until ctx is done.
func (s *BookingService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.ExpireIdle(); n > 0 {
				log.Printf("expired %d booking sessions", n)
			}
		}
	}
}

func (s *BookingService) PaymentMethods() []domain.PaymentChannel {
	return domain.PaymentChannels()
}

func (s *BookingService) orderSubmitted(ctx context.Context, event domain.Event, order *domain.Order, input domain.CreateOrderInput) {
	s.publish(ctx, kafka.OrderEvent{
		Type:          kafka.EventOrderSubmitted,
		OrderID:       order.ID,
		EventID:       event.ID,
		EventTitle:    event.Title,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		TotalAmount:   input.TotalAmount,
		PaymentMethod: string(input.PaymentMethod),
	})
}

func (s *BookingService) ticketIssued(ctx context.Context, event domain.Event, order *domain.Order) {
	s.publish(ctx, kafka.OrderEvent{
		Type:          kafka.EventTicketIssued,
		OrderID:       order.ID,
		EventID:       event.ID,
		EventTitle:    event.Title,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: string(order.PaymentMethod),
		Token:         order.Token,
	})
}

func (s *BookingService) publish(ctx context.Context, event kafka.OrderEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event.OccurredAt = s.now().UTC()
	if err := s.producer.Publish(ctx, s.topic, event.OrderID, event); err != nil {
		log.Printf("WARNING: Failed to publish %s event for order %s: %v", event.Type, event.OrderID, err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
