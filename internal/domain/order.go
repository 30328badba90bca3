package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusValidated PaymentStatus = "validated"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

type OrderLine struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

func (l OrderLine) Amount() int64 {
	return l.Price * int64(l.Quantity)
}

type Order struct {
	ID            string        `json:"_id"`
	EventID       EventRef      `json:"eventId"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail,omitempty"`
	CustomerPhone string        `json:"customerPhone"`
	Tickets       []OrderLine   `json:"tickets"`
	TotalAmount   int64         `json:"totalAmount"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Token         string        `json:"token,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (o Order) Validate() error {
	switch {
	case o.ID == "":
		return fmt.Errorf("%w: order id is required", ErrInvalidRecord)
	case strings.TrimSpace(o.CustomerName) == "":
		return fmt.Errorf("%w: order %s has no customer name", ErrInvalidRecord, o.ID)
	case len(o.Tickets) == 0:
		return fmt.Errorf("%w: order %s has no tickets", ErrInvalidRecord, o.ID)
	}
	for _, l := range o.Tickets {
		if l.Type == "" || l.Quantity <= 0 || l.Price < 0 {
			return fmt.Errorf("%w: order %s has a malformed line %+v", ErrInvalidRecord, o.ID, l)
		}
	}
	switch o.PaymentStatus {
	case PaymentStatusPending, PaymentStatusValidated, PaymentStatusCancelled:
	case "":
		return fmt.Errorf("%w: order %s has no payment status", ErrInvalidRecord, o.ID)
	default:
		return fmt.Errorf("%w: order %s has unknown payment status %q", ErrInvalidRecord, o.ID, o.PaymentStatus)
	}
	if o.PaymentStatus == PaymentStatusValidated && o.Token == "" {
		return fmt.Errorf("%w: validated order %s carries no token", ErrInvalidRecord, o.ID)
	}
	return nil
}

func (o Order) Validated() bool {
	return o.PaymentStatus == PaymentStatusValidated && o.Token != ""
}

// LinesTotal recomputes the amount from the line items.
func (o Order) LinesTotal() int64 {
	var total int64
	for _, l := range o.Tickets {
		total += l.Amount()
	}
	return total
}

// EventRef is the event an order belongs to. Some endpoints populate it with the whole event.
type EventRef string

func (r *EventRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = EventRef(s)
		return nil
	}
	var populated struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &populated); err != nil {
		return fmt.Errorf("%w: event reference: %v", ErrInvalidRecord, err)
	}
	*r = EventRef(populated.ID)
	return nil
}

type CreateOrderInput struct {
	EventID       string        `json:"eventId"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	CustomerPhone string        `json:"customerPhone"`
	Tickets       []OrderLine   `json:"tickets"`
	TotalAmount   int64         `json:"totalAmount"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// PendingOrder marks an order awaiting its token so the visitor can come back to redeem it.
type PendingOrder struct {
	OrderID       string    `json:"orderId"`
	CustomerName  string    `json:"customerName"`
	CustomerPhone string    `json:"customerPhone"`
	CreatedAt     time.Time `json:"createdAt"`
}
