package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in   string
		want time.Time
	}{
		{in: "2024-12-14", want: time.Date(2024, time.December, 14, 0, 0, 0, 0, time.UTC)},
		{in: "2024-12-14T00:00:00.000Z", want: time.Date(2024, time.December, 14, 0, 0, 0, 0, time.UTC)},
		{in: "2024-12-14T19:30:00", want: time.Date(2024, time.December, 14, 19, 30, 0, 0, time.UTC)},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			d, err := ParseDate(tc.in)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(d.Time))
		})
	}

	_, err := ParseDate("14/12/2024")
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestEvent_Validate(t *testing.T) {
	date, _ := ParseDate("2024-12-14")
	valid := Event{ID: "ev1", Title: "Gala", Date: date, Status: EventStatusAvailable,
		Tickets: []TicketTier{{Type: "Standard", Price: 10000, Available: 5, Total: 10}}}
	require.NoError(t, valid.Validate())

	testCases := []struct {
		name   string
		mutate func(e *Event)
	}{
		{name: "no id", mutate: func(e *Event) { e.ID = "" }},
		{name: "no title", mutate: func(e *Event) { e.Title = "  " }},
		{name: "no date", mutate: func(e *Event) { e.Date = Date{} }},
		{name: "unknown status", mutate: func(e *Event) { e.Status = "cancelled" }},
		{name: "oversold tier", mutate: func(e *Event) { e.Tickets = []TicketTier{{Type: "VIP", Available: 11, Total: 10}} }},
		{name: "negative price", mutate: func(e *Event) { e.Tickets = []TicketTier{{Type: "VIP", Price: -1}} }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := valid
			tc.mutate(&e)
			assert.ErrorIs(t, e.Validate(), ErrInvalidRecord)
		})
	}
}

func TestEvent_ValidateDraft(t *testing.T) {
	date, _ := ParseDate("2025-03-01")
	draft := Event{Title: "Nouveau spectacle", Date: date, Status: EventStatusUpcoming}

	assert.NoError(t, draft.ValidateDraft())
	assert.ErrorIs(t, draft.Validate(), ErrInvalidRecord)

	draft.Title = ""
	assert.ErrorIs(t, draft.ValidateDraft(), ErrInvalidRecord)
}

func TestEvent_Upcoming(t *testing.T) {
	date, _ := ParseDate("2024-12-14")
	e := Event{Date: date}

	assert.True(t, e.Upcoming(time.Date(2024, time.December, 13, 18, 0, 0, 0, time.UTC)))
	assert.False(t, e.Upcoming(time.Date(2024, time.December, 14, 18, 0, 0, 0, time.UTC)))
}

func TestEvent_Statistics(t *testing.T) {
	e := Event{Tickets: []TicketTier{
		{Type: "Standard", Price: 15000, Available: 40},
		{Type: "VIP", Price: 30000, Available: 2},
	}}

	assert.Equal(t, 42, e.SeatsAvailable())
	assert.Equal(t, int64(15000), e.StartingPrice())
	tier, ok := e.Tier("VIP")
	assert.True(t, ok)
	assert.Equal(t, int64(30000), tier.Price)
	_, ok = e.Tier("Balcon")
	assert.False(t, ok)
	assert.Zero(t, Event{}.StartingPrice())
}

func TestOrder_EventRef(t *testing.T) {
	var populated, plain Order
	require.NoError(t, json.Unmarshal([]byte(`{"eventId":{"_id":"ev1","title":"Gala"}}`), &populated))
	require.NoError(t, json.Unmarshal([]byte(`{"eventId":"ev1"}`), &plain))

	assert.Equal(t, EventRef("ev1"), populated.EventID)
	assert.Equal(t, EventRef("ev1"), plain.EventID)
}

func TestOrder_Validate(t *testing.T) {
	order := Order{
		ID:            "o1",
		CustomerName:  "Jean",
		Tickets:       []OrderLine{{Type: "Standard", Quantity: 2, Price: 15000}, {Type: "VIP", Quantity: 1, Price: 30000}},
		PaymentStatus: PaymentStatusPending,
	}
	require.NoError(t, order.Validate())
	assert.Equal(t, int64(60000), order.LinesTotal())
	assert.False(t, order.Validated())

	order.PaymentStatus = PaymentStatusValidated
	assert.ErrorIs(t, order.Validate(), ErrInvalidRecord)

	order.Token = "EL-999999"
	assert.NoError(t, order.Validate())
	assert.True(t, order.Validated())

	order.PaymentStatus = "refunded"
	assert.ErrorIs(t, order.Validate(), ErrInvalidRecord)
}

func TestPaymentChannel_RenderInstructions(t *testing.T) {
	channel, ok := PaymentMethodOrange.Channel()
	require.True(t, ok)

	lines := channel.RenderInstructions(" [Numéro de l'artiste]", "60,000")

	assert.Contains(t, lines, "Entrez le numéro :  [Numéro de l'artiste]")
	assert.Contains(t, lines, "Entrez le montant : 60,000 CDF")
	assert.Equal(t, "Composez *144#", lines[0])
	for _, line := range channel.Instructions {
		if line == "Entrez le montant : [MONTANT] CDF" {
			return
		}
	}
	t.Fatal("catalogue template was modified")
}

func TestPaymentMethod_Valid(t *testing.T) {
	assert.True(t, PaymentMethodAfricell.Valid())
	assert.False(t, PaymentMethod("paypal").Valid())
	assert.Len(t, PaymentChannels(), 4)
}

func TestMedia_Validate(t *testing.T) {
	m := Media{Type: MediaTypeImage, Destination: MediaDestinationGallery, URL: "http://img/1.jpg"}
	assert.NoError(t, m.Validate(false))
	assert.ErrorIs(t, m.Validate(true), ErrInvalidRecord)

	m.Destination = "sidebar"
	assert.ErrorIs(t, m.Validate(false), ErrInvalidRecord)
}
