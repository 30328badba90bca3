package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/Domenick1991/showtickets/internal/ticket"
)

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone"`
}

// Flow is one customer's booking of one event. It is safe for concurrent use; network calls
// run outside the lock behind the processing gate so snapshots stay readable meanwhile.
type Flow struct {
	svc       *BookingService
	id        string
	visitorID string

	mu         sync.Mutex
	event      domain.Event
	step       Step
	quantities map[string]int
	customer   Customer
	method     domain.PaymentMethod
	pending    *domain.PendingOrder
	processing bool
}

func newFlow(svc *BookingService, id, visitorID string, event domain.Event, pending *domain.PendingOrder) *Flow {
	f := &Flow{
		svc:        svc,
		id:         id,
		visitorID:  visitorID,
		event:      event,
		step:       StepSelection,
		quantities: make(map[string]int),
		pending:    pending,
	}
	if pending != nil {
		f.step = StepTokenValidation
	}
	return f
}

func (f *Flow) ID() string { return f.id }

func (f *Flow) VisitorID() string { return f.visitorID }

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// guard must be called with the lock held.
func (f *Flow) guard(step Step) error {
	if f.processing {
		return ErrBusy
	}
	if f.step != step {
		return fmt.Errorf("%w: flow is at %s, not %s", ErrWrongStep, f.step, step)
	}
	return nil
}

func (f *Flow) release() {
	f.mu.Lock()
	f.processing = false
	f.mu.Unlock()
}

func (f *Flow) Increment(ticketType string) (int, error) {
	return f.adjust(ticketType, func(q int) int { return q + 1 })
}

func (f *Flow) Decrement(ticketType string) (int, error) {
	return f.adjust(ticketType, func(q int) int { return q - 1 })
}

func (f *Flow) SetQuantity(ticketType string, quantity int) (int, error) {
	return f.adjust(ticketType, func(int) int { return quantity })
}

// adjust applies a quantity change only when the result stays within [0, available];
// otherwise the current quantity is kept and returned.
func (f *Flow) adjust(ticketType string, next func(int) int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard(StepSelection); err != nil {
		return 0, err
	}
	tier, ok := f.event.Tier(ticketType)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, ticketType)
	}

	current := f.quantities[ticketType]
	q := next(current)
	if q < 0 || q > tier.Available {
		return current, nil
	}
	if q == 0 {
		delete(f.quantities, ticketType)
	} else {
		f.quantities[ticketType] = q
	}
	return q, nil
}

func (f *Flow) TotalAmount() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalAmountLocked()
}

func (f *Flow) TotalTickets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalTicketsLocked()
}

// Lines lists the selected tiers in catalogue order.
func (f *Flow) Lines() []domain.OrderLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.linesLocked()
}

func (f *Flow) linesLocked() []domain.OrderLine {
	var lines []domain.OrderLine
	for _, t := range f.event.Tickets {
		if q := f.quantities[t.Type]; q > 0 {
			lines = append(lines, domain.OrderLine{Type: t.Type, Quantity: q, Price: t.Price})
		}
	}
	return lines
}

func (f *Flow) totalAmountLocked() int64 {
	var total int64
	for _, l := range f.linesLocked() {
		total += l.Amount()
	}
	return total
}

func (f *Flow) totalTicketsLocked() int {
	total := 0
	for _, q := range f.quantities {
		total += q
	}
	return total
}

func (f *Flow) Continue() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard(StepSelection); err != nil {
		return err
	}
	if f.totalTicketsLocked() == 0 {
		return ErrNoTickets
	}
	return f.moveLocked(ActionContinue)
}

func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.processing {
		return ErrBusy
	}
	return f.moveLocked(ActionBack)
}

func (f *Flow) moveLocked(action Action) error {
	next, err := Transition(f.step, action)
	if err != nil {
		return err
	}
	f.step = next
	return nil
}

func (f *Flow) SetCustomer(c Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard(StepPayment); err != nil {
		return err
	}
	f.customer = Customer{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
	return nil
}

func (f *Flow) SelectPayment(method domain.PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard(StepPayment); err != nil {
		return err
	}
	if !method.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, method)
	}
	f.method = method
	return nil
}

// SubmitOrder creates the pending order. On failure the flow stays on the payment step
// with its data intact so the customer can retry; a retry creates another order.
func (f *Flow) SubmitOrder(ctx context.Context) (*domain.Order, error) {
	order, err := f.submitOrder(ctx)
	f.svc.monitor.TrackOperation("submit_order", err)
	return order, err
}

func (f *Flow) submitOrder(ctx context.Context) (*domain.Order, error) {
	f.mu.Lock()
	if err := f.guard(StepPayment); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if f.customer.Name == "" || f.customer.Phone == "" || f.method == "" {
		f.mu.Unlock()
		return nil, ErrCustomerIncomplete
	}
	if f.totalTicketsLocked() == 0 {
		f.mu.Unlock()
		return nil, ErrNoTickets
	}
	input := domain.CreateOrderInput{
		EventID:       f.event.ID,
		CustomerName:  f.customer.Name,
		CustomerEmail: f.customer.Email,
		CustomerPhone: f.customer.Phone,
		Tickets:       f.linesLocked(),
		TotalAmount:   f.totalAmountLocked(),
		PaymentMethod: f.method,
	}
	f.processing = true
	f.mu.Unlock()
	defer f.release()

	order, err := f.svc.orders.Create(ctx, input)
	if err != nil {
		return nil, orderError(err)
	}

	marker := domain.PendingOrder{
		OrderID:       order.ID,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		CreatedAt:     f.svc.now().UTC(),
	}
	if err := f.svc.pending.Put(ctx, f.visitorID, f.event.ID, marker); err != nil {
		// the order exists server side; stepping back would invite a duplicate
		log.Printf("WARNING: failed to store pending order %s for visitor %s: %v", order.ID, f.visitorID, err)
	}

	f.mu.Lock()
	f.pending = &marker
	err = f.moveLocked(ActionOrderCreated)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	f.svc.orderSubmitted(ctx, f.event, order, input)
	return order, nil
}

func orderError(err error) error {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return &OrderRejectedError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}
	return fmt.Errorf("%w: %v", errOrderUnreachable, err)
}

// Instructions are the USSD steps of the chosen operator with the amount filled in.
type Instructions struct {
	Method      domain.PaymentMethod `json:"method"`
	Name        string               `json:"name"`
	USSD        string               `json:"ussd"`
	TotalAmount int64                `json:"total_amount"`
	Lines       []string             `json:"lines"`
}

func (f *Flow) Instructions() (*Instructions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard(StepConfirmation); err != nil {
		return nil, err
	}
	channel, ok := f.method.Channel()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, f.method)
	}
	total := f.totalAmountLocked()
	return &Instructions{
		Method:      channel.ID,
		Name:        channel.Name,
		USSD:        channel.USSD,
		TotalAmount: total,
		Lines:       channel.RenderInstructions(f.svc.recipient, ticket.FormatNumber(total)),
	}, nil
}

func (f *Flow) OpenTokenValidation() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.processing {
		return ErrBusy
	}
	return f.moveLocked(ActionOpenTokenValidation)
}

// RedeemToken exchanges a payment token for the ticket PDF. The marker is only dropped once
// the artifact exists, so a rendering failure leaves the customer on this step to retry.
func (f *Flow) RedeemToken(ctx context.Context, token string) (*ticket.Artifact, error) {
	artifact, err := f.redeemToken(ctx, strings.ToUpper(strings.TrimSpace(token)))
	f.svc.monitor.TrackOperation("redeem_token", err)
	return artifact, err
}

func (f *Flow) redeemToken(ctx context.Context, token string) (*ticket.Artifact, error) {
	f.mu.Lock()
	if err := f.guard(StepTokenValidation); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if token == "" {
		f.mu.Unlock()
		return nil, ErrTokenRequired
	}
	event := f.event
	f.processing = true
	f.mu.Unlock()
	defer f.release()

	order, err := f.svc.orders.VerifyToken(ctx, token)
	if err != nil {
		return nil, tokenError(err)
	}
	if !order.Validated() {
		return nil, &TokenInvalidError{Message: "Ce paiement n'a pas encore été validé"}
	}
	if order.EventID != "" && string(order.EventID) != event.ID {
		return nil, &TokenInvalidError{Message: "Ce token correspond à un autre spectacle"}
	}

	started := f.svc.now()
	artifact, err := f.svc.tickets.Generate(ctx, *order, event)
	if err != nil {
		return nil, &ArtifactError{Err: err}
	}
	f.svc.monitor.TrackTicket(event.ID, f.svc.now().Sub(started))

	if err := f.svc.pending.Remove(ctx, f.visitorID, event.ID); err != nil {
		log.Printf("WARNING: failed to clear pending order for visitor %s: %v", f.visitorID, err)
	}

	f.mu.Lock()
	err = f.moveLocked(ActionRedeemed)
	if err == nil {
		f.resetLocked()
	}
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	f.svc.ticketIssued(ctx, event, order)
	return artifact, nil
}

func tokenError(err error) error {
	if apiclient.IsClientError(err) {
		var apiErr *apiclient.APIError
		errors.As(err, &apiErr)
		return &TokenInvalidError{Message: apiErr.Message}
	}
	return fmt.Errorf("%w: %v", errTokenUnreachable, err)
}

// StartOver abandons the pending order of this event and goes back to ticket selection.
func (f *Flow) StartOver(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.processing {
		return ErrBusy
	}
	if _, err := Transition(f.step, ActionReset); err != nil {
		return err
	}
	if err := f.svc.pending.Remove(ctx, f.visitorID, f.event.ID); err != nil {
		return fmt.Errorf("clear pending order: %w", err)
	}
	f.step = StepSelection
	f.resetLocked()
	return nil
}

func (f *Flow) resetLocked() {
	f.quantities = make(map[string]int)
	f.customer = Customer{}
	f.method = ""
	f.pending = nil
}

type TierSelection struct {
	Type      string `json:"type"`
	Price     int64  `json:"price"`
	Currency  string `json:"currency"`
	Available int    `json:"available"`
	Quantity  int    `json:"quantity"`
}

// Snapshot is a read-only copy of a flow for the HTTP layer.
type Snapshot struct {
	SessionID     string               `json:"session_id"`
	VisitorID     string               `json:"visitor_id"`
	EventID       string               `json:"event_id"`
	EventTitle    string               `json:"event_title"`
	Step          Step                 `json:"step"`
	Tiers         []TierSelection      `json:"tiers"`
	TotalTickets  int                  `json:"total_tickets"`
	TotalAmount   int64                `json:"total_amount"`
	Customer      Customer             `json:"customer"`
	PaymentMethod domain.PaymentMethod `json:"payment_method,omitempty"`
	Pending       *domain.PendingOrder `json:"pending_order,omitempty"`
	Processing    bool                 `json:"processing"`
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	tiers := make([]TierSelection, 0, len(f.event.Tickets))
	for _, t := range f.event.Tickets {
		tiers = append(tiers, TierSelection{
			Type:      t.Type,
			Price:     t.Price,
			Currency:  t.Currency,
			Available: t.Available,
			Quantity:  f.quantities[t.Type],
		})
	}

	s := Snapshot{
		SessionID:     f.id,
		VisitorID:     f.visitorID,
		EventID:       f.event.ID,
		EventTitle:    f.event.Title,
		Step:          f.step,
		Tiers:         tiers,
		TotalTickets:  f.totalTicketsLocked(),
		TotalAmount:   f.totalAmountLocked(),
		Customer:      f.customer,
		PaymentMethod: f.method,
		Processing:    f.processing,
	}
	if f.pending != nil {
		p := *f.pending
		s.Pending = &p
	}
	return s
}
