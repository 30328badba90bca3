package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type EventStatus string

const (
	EventStatusAvailable   EventStatus = "available"
	EventStatusUpcoming    EventStatus = "upcoming"
	EventStatusSellingFast EventStatus = "selling-fast"
	EventStatusSoldOut     EventStatus = "soldout"
	EventStatusPast        EventStatus = "past"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusAvailable, EventStatusUpcoming, EventStatusSellingFast, EventStatusSoldOut, EventStatusPast:
		return true
	}
	return false
}

var ErrInvalidRecord = errors.New("invalid record")

type TicketTier struct {
	Type      string `json:"type"`
	Price     int64  `json:"price"`
	Currency  string `json:"currency"`
	Available int    `json:"available"`
	Total     int    `json:"total"`
}

func (t TicketTier) Validate() error {
	if strings.TrimSpace(t.Type) == "" {
		return fmt.Errorf("%w: ticket tier type is required", ErrInvalidRecord)
	}
	if t.Price < 0 {
		return fmt.Errorf("%w: ticket tier %q has negative price", ErrInvalidRecord, t.Type)
	}
	if t.Available < 0 {
		return fmt.Errorf("%w: ticket tier %q has negative availability", ErrInvalidRecord, t.Type)
	}
	// older events were created without a total
	if t.Total > 0 && t.Available > t.Total {
		return fmt.Errorf("%w: ticket tier %q has %d available out of %d", ErrInvalidRecord, t.Type, t.Available, t.Total)
	}
	return nil
}

type Event struct {
	ID          string       `json:"_id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        Date         `json:"date"`
	Time        string       `json:"time"`
	Venue       string       `json:"venue"`
	City        string       `json:"city"`
	Image       string       `json:"image"`
	Status      EventStatus  `json:"status"`
	Tickets     []TicketTier `json:"tickets"`
}

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalidRecord)
	}
	return e.ValidateDraft()
}

// ValidateDraft checks an event the admin is about to create or edit; it has no id yet.
func (e Event) ValidateDraft() error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("%w: event %s has no title", ErrInvalidRecord, e.ID)
	case e.Date.IsZero():
		return fmt.Errorf("%w: event %q has no date", ErrInvalidRecord, e.Title)
	}
	if e.Status != "" && !e.Status.Valid() {
		return fmt.Errorf("%w: event %q has unknown status %q", ErrInvalidRecord, e.Title, e.Status)
	}
	for _, t := range e.Tickets {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Upcoming reports whether the event date has not passed yet. The date carries no time of
// day, so an event stops counting as upcoming from midnight of its own day.
func (e Event) Upcoming(now time.Time) bool {
	return !e.Date.Before(now)
}

func (e Event) Tier(ticketType string) (TicketTier, bool) {
	for _, t := range e.Tickets {
		if t.Type == ticketType {
			return t, true
		}
	}
	return TicketTier{}, false
}

// SeatsAvailable sums the remaining places across every tier.
func (e Event) SeatsAvailable() int {
	total := 0
	for _, t := range e.Tickets {
		total += t.Available
	}
	return total
}

// StartingPrice is the price of the first tier, which the catalogue lists as the entry price.
func (e Event) StartingPrice() int64 {
	if len(e.Tickets) == 0 {
		return 0
	}
	return e.Tickets[0].Price
}

// Date is an event day. The API sends either a full timestamp or a bare YYYY-MM-DD.
type Date struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("%w: unrecognised date %q", ErrInvalidRecord, s)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format("2006-01-02"))
}
