package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/Domenick1991/showtickets/internal/kafka"
	"github.com/Domenick1991/showtickets/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotAuthenticated = errors.New("admin is not logged in")
	ErrSessionExpired   = errors.New("admin session expired")
	ErrCredentials      = errors.New("email and password are required")

	errNoOrder = errors.New("response carries no order")
)

type AdminUseCase interface {
	Login(ctx context.Context, owner, email, password string) (*domain.AdminSession, error)
	Logout(ctx context.Context, owner string) error
	Session(ctx context.Context, owner string) (*domain.AdminSession, error)
	RefreshProfile(ctx context.Context, owner string) (*domain.Admin, error)
	ListOrders(ctx context.Context, owner, eventID string) ([]domain.Order, error)
	ValidateOrder(ctx context.Context, owner, orderID string) (*domain.Order, error)
	CancelOrder(ctx context.Context, owner, orderID string) (*domain.Order, error)
	ListMedia(ctx context.Context, destination domain.MediaDestination) ([]domain.Media, error)
	CreateMedia(ctx context.Context, owner string, media domain.Media) (*domain.Media, error)
	DeleteMedia(ctx context.Context, owner, mediaID string) error
	CreateEvent(ctx context.Context, owner string, event domain.Event) (*domain.Event, error)
	UpdateEvent(ctx context.Context, owner, eventID string, event domain.Event) (*domain.Event, error)
	DeleteEvent(ctx context.Context, owner, eventID string) error
	Dashboard(ctx context.Context, owner string) (*Dashboard, error)
}

// Dashboard summarizes the catalogue and the sales for the admin home page.
type Dashboard struct {
	TotalEvents     int            `json:"total_events"`
	UpcomingEvents  int            `json:"upcoming_events"`
	TotalOrders     int            `json:"total_orders"`
	PendingOrders   int            `json:"pending_orders"`
	ValidatedOrders int            `json:"validated_orders"`
	TotalRevenue    int64          `json:"total_revenue"`
	RecentOrders    []domain.Order `json:"recent_orders"`
}

const recentOrders = 5

type SessionStore interface {
	Save(ctx context.Context, owner string, session domain.AdminSession) error
	Load(ctx context.Context, owner string) (*domain.AdminSession, error)
	UpdateProfile(ctx context.Context, owner string, admin domain.Admin) error
	Clear(ctx context.Context, owner string) error
}

// EventsInvalidator drops cached listings once availability may have changed.
type EventsInvalidator interface {
	InvalidateEvents(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type AdminService struct {
	auth     repository.AuthRepository
	events   repository.EventRepository
	orders   repository.OrderRepository
	media    repository.MediaRepository
	sessions SessionStore
	cache    EventsInvalidator
	producer Producer
	topic    string
	now      func() time.Time
}

type AdminServiceOption func(*AdminService)

func WithEventsCache(cache EventsInvalidator) AdminServiceOption {
	return func(s *AdminService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, topic string) AdminServiceOption {
	return func(s *AdminService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithClock(now func() time.Time) AdminServiceOption {
	return func(s *AdminService) {
		s.now = now
	}
}

func NewAdminService(
	auth repository.AuthRepository,
	events repository.EventRepository,
	orders repository.OrderRepository,
	media repository.MediaRepository,
	sessions SessionStore,
	opts ...AdminServiceOption,
) *AdminService {
	service := &AdminService{
		auth:     auth,
		events:   events,
		orders:   orders,
		media:    media,
		sessions: sessions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *AdminService) Login(ctx context.Context, owner, email, password string) (*domain.AdminSession, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrCredentials
	}
	session, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, owner, *session); err != nil {
		return nil, fmt.Errorf("store admin session: %w", err)
	}
	log.Printf("admin %s logged in", session.Admin.Email)
	return session, nil
}

func (s *AdminService) Logout(ctx context.Context, owner string) error {
	return s.sessions.Clear(ctx, owner)
}

// Session returns the stored session. A token whose exp claim has passed is dropped.
// The signature is not checked here: the API that issued the token remains the judge.
func (s *AdminService) Session(ctx context.Context, owner string) (*domain.AdminSession, error) {
	session, err := s.sessions.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotAuthenticated
	}
	if s.expired(session.Token) {
		if err := s.sessions.Clear(ctx, owner); err != nil {
			log.Printf("clear expired admin session: %v", err)
		}
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (s *AdminService) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// opaque tokens carry no expiry
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}

func (s *AdminService) RefreshProfile(ctx context.Context, owner string) (*domain.Admin, error) {
	session, err := s.Session(ctx, owner)
	if err != nil {
		return nil, err
	}
	profile, err := s.auth.Profile(ctx, session.Token)
	if err != nil {
		return nil, s.checkAuth(ctx, owner, err)
	}
	if err := s.sessions.UpdateProfile(ctx, owner, *profile); err != nil {
		return nil, fmt.Errorf("store admin profile: %w", err)
	}
	return profile, nil
}

// checkAuth logs the owner out when the API refuses the token.
func (s *AdminService) checkAuth(ctx context.Context, owner string, err error) error {
	if apiclient.StatusCode(err) != http.StatusUnauthorized {
		return err
	}
	if clearErr := s.sessions.Clear(ctx, owner); clearErr != nil {
		log.Printf("clear rejected admin session: %v", clearErr)
	}
	return fmt.Errorf("%w: %v", ErrSessionExpired, err)
}

func (s *AdminService) ListOrders(ctx context.Context, owner, eventID string) ([]domain.Order, error) {
	session, err := s.Session(ctx, owner)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.List(ctx, session.Token, eventID)
	if err != nil {
		return nil, s.checkAuth(ctx, owner, err)
	}
	return orders, nil
}

func (s *AdminService) ValidateOrder(ctx context.Context, owner, orderID string) (*domain.Order, error) {
	return s.settle(ctx, owner, orderID, kafka.EventOrderValidated, s.orders.Validate)
}

func (s *AdminService) CancelOrder(ctx context.Context, owner, orderID string) (*domain.Order, error) {
	return s.settle(ctx, owner, orderID, kafka.EventOrderCancelled, s.orders.Cancel)
}

func (s *AdminService) settle(
	ctx context.Context,
	owner, orderID, eventType string,
	apply func(ctx context.Context, bearer, orderID string) (*domain.Order, error),
) (*domain.Order, error) {
	session, err := s.Session(ctx, owner)
	if err != nil {
		return nil, err
	}
	order, err := apply(ctx, session.Token, orderID)
	if err == nil && order == nil {
		err = apiclient.DecodeError(eventType+" order", errNoOrder)
	}
	if err != nil {
		if errors.Is(err, apiclient.ErrDecode) {
			// the API accepted the change without describing the order, so nobody can be notified
			s.invalidateEvents(ctx)
			log.Printf("WARNING: %s of order %s not announced: %v", eventType, orderID, err)
		}
		return nil, s.checkAuth(ctx, owner, err)
	}

	s.invalidateEvents(ctx)
	s.publish(ctx, eventType, order)
	return order, nil
}

func (s *AdminService) invalidateEvents(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEvents(ctx); err != nil {
		log.Printf("WARNING: failed to invalidate events cache: %v", err)
	}
}

// eventTitle names the show in notifications; a failed lookup only costs the title.
func (s *AdminService) eventTitle(ctx context.Context, eventID string) string {
	if eventID == "" || s.events == nil {
		return ""
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		log.Printf("WARNING: failed to resolve event %s for notification: %v", eventID, err)
		return ""
	}
	return event.Title
}

func (s *AdminService) publish(ctx context.Context, eventType string, order *domain.Order) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		EventID:       string(order.EventID),
		EventTitle:    s.eventTitle(ctx, string(order.EventID)),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: string(order.PaymentMethod),
		Token:         order.Token,
		OccurredAt:    s.now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.topic, order.ID, event); err != nil {
		log.Printf("WARNING: Failed to publish %s event for order %s: %v", eventType, order.ID, err)
	}
}

// ListMedia is public: the home page and the gallery read it.
func (s *AdminService) ListMedia(ctx context.Context, destination domain.MediaDestination) ([]domain.Media, error) {
	return s.media.List(ctx, destination)
}

func (s *AdminService) CreateMedia(ctx context.Context, owner string, media domain.Media) (*domain.Media, error) {
	session, err := s.Session(ctx, owner)
	if err != nil {
		return nil, err
	}
	created, err := s.media.Create(ctx, session.Token, media)
	if err != nil {
		return nil, s.checkAuth(ctx, owner, err)
	}
	return created, nil
}

func (s *AdminService) DeleteMedia(ctx context.Context, owner, mediaID string) error {
	session, err := s.Session(ctx, owner)
	if err != nil {
		return err
	}
	if err := s.media.Delete(ctx, session.Token, mediaID); err != nil {
		return s.checkAuth(ctx, owner, err)
	}
	return nil
}

func (s *AdminService) CreateEvent(ctx context.Context, owner string, event domain.Event) (*domain.Event, error) {
	session, err := s.Session(ctx, owner)
	if err != nil {
		return nil, err
	}
	created, err := s.events.Create(ctx, session.Token, event)
	if err != nil {
		return nil, s.checkAuth(ctx, owner, err)
	}
	s.invalidateEvents(ctx)
	log.Printf("event %s created: %s", created.ID, created.Title)
	return created, nil
}

func (s *AdminService) UpdateEvent(ctx context.Context, owner, eventID string, event domain.Event) (*domain.Event, error) {
	session, err := s.Session(ctx, owner)
	if err != nil {
		return nil, err
	}
	updated, err := s.events.Update(ctx, session.Token, eventID, event)
	if err != nil {
		return nil, s.checkAuth(ctx, owner, err)
	}
	s.invalidateEvents(ctx)
	return updated, nil
}

func (s *AdminService) DeleteEvent(ctx context.Context, owner, eventID string) error {
	session, err := s.Session(ctx, owner)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, session.Token, eventID); err != nil {
		return s.checkAuth(ctx, owner, err)
	}
	s.invalidateEvents(ctx)
	log.Printf("event %s deleted", eventID)
	return nil
}

// Dashboard counts every event and order. Revenue only includes validated orders.
func (s *AdminService) Dashboard(ctx context.Context, owner string) (*Dashboard, error) {
	orders, err := s.ListOrders(ctx, owner, "")
	if err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, false)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := &Dashboard{TotalEvents: len(events), TotalOrders: len(orders)}
	for _, e := range events {
		if e.Upcoming(now) {
			d.UpcomingEvents++
		}
	}
	for _, o := range orders {
		switch o.PaymentStatus {
		case domain.PaymentStatusPending:
			d.PendingOrders++
		case domain.PaymentStatusValidated:
			d.ValidatedOrders++
			d.TotalRevenue += o.TotalAmount
		}
	}
	d.RecentOrders = orders
	if len(orders) > recentOrders {
		d.RecentOrders = orders[:recentOrders]
	}
	return d, nil
}

var _ AdminUseCase = (*AdminService)(nil)
