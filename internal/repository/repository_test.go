package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventJSON = `{
	"_id": "ev1",
	"title": "Rire Sans Frontières",
	"date": "2024-12-14T00:00:00.000Z",
	"time": "20:00",
	"venue": "Salle des Fêtes",
	"city": "Kinshasa",
	"image": "http://img/poster.jpg",
	"status": "selling-fast",
	"tickets": [
		{"type": "Standard", "price": 15000, "currency": "CDF", "available": 50, "total": 100},
		{"type": "VIP", "price": 30000, "currency": "CDF", "available": 0, "total": 20}
	]
}`

const validatedOrderJSON = `{
	"_id": "6650c0ffee1234abcd",
	"eventId": {"_id": "ev1", "title": "Rire Sans Frontières"},
	"customerName": "Jean",
	"customerPhone": "+243000",
	"tickets": [{"type": "Standard", "quantity": 2, "price": 15000}],
	"totalAmount": 30000,
	"paymentMethod": "mpesa",
	"paymentStatus": "validated",
	"token": "EL-999999"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL, time.Second)
}

func TestEventRepository_GetByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events/ev1", r.URL.Path)
		_, _ = w.Write([]byte(eventJSON))
	})

	event, err := NewEventRepository(client).GetByID(context.Background(), "ev1")

	require.NoError(t, err)
	assert.Equal(t, "Rire Sans Frontières", event.Title)
	assert.Equal(t, domain.EventStatusSellingFast, event.Status)
	assert.Equal(t, 2024, event.Date.Year())
	assert.Equal(t, time.December, event.Date.Month())
	assert.Len(t, event.Tickets, 2)
	assert.Equal(t, 50, event.SeatsAvailable())
	assert.Equal(t, int64(15000), event.StartingPrice())
}

func TestEventRepository_GetByID_MissingFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"_id": "ev1"}`))
	})

	_, err := NewEventRepository(client).GetByID(context.Background(), "ev1")

	assert.ErrorIs(t, err, apiclient.ErrDecode)
}

func TestEventRepository_List_Upcoming(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("upcoming"))
		_, _ = w.Write([]byte(`[` + eventJSON + `]`))
	})

	events, err := NewEventRepository(client).List(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev1", events[0].ID)
}

func TestOrderRepository_Create(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var input domain.CreateOrderInput
		require.NoError(t, json.Unmarshal(body, &input))
		assert.Equal(t, "ev1", input.EventID)
		assert.Equal(t, int64(30000), input.TotalAmount)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"o1","eventId":"ev1","customerName":"Jean","customerPhone":"+243","tickets":[{"type":"Standard","quantity":2,"price":15000}],"totalAmount":30000,"paymentMethod":"mpesa","paymentStatus":"pending"}`))
	})

	order, err := NewOrderRepository(client).Create(context.Background(), domain.CreateOrderInput{
		EventID:       "ev1",
		CustomerName:  "Jean",
		CustomerPhone: "+243",
		Tickets:       []domain.OrderLine{{Type: "Standard", Quantity: 2, Price: 15000}},
		TotalAmount:   30000,
		PaymentMethod: domain.PaymentMethodMpesa,
	})

	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, domain.EventRef("ev1"), order.EventID)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
}

func TestOrderRepository_VerifyToken(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "enveloped", body: `{"message":"ok","order":` + validatedOrderJSON + `}`},
		{name: "bare", body: validatedOrderJSON},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/orders/verify-token", r.URL.Path)
				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "EL-999999", body["token"])
				_, _ = w.Write([]byte(tc.body))
			})

			order, err := NewOrderRepository(client).VerifyToken(context.Background(), "EL-999999")

			require.NoError(t, err)
			assert.Equal(t, "6650c0ffee1234abcd", order.ID)
			assert.Equal(t, domain.EventRef("ev1"), order.EventID)
			assert.True(t, order.Validated())
		})
	}
}

func TestOrderRepository_VerifyToken_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Token introuvable"}`))
	})

	_, err := NewOrderRepository(client).VerifyToken(context.Background(), "EL-000000")

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Token introuvable", apiErr.Message)
}

func TestOrderRepository_ValidateAndCancel(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(validatedOrderJSON))
	})
	repo := NewOrderRepository(client)

	order, err := repo.Validate(context.Background(), "admin-token", "o1")
	require.NoError(t, err)
	assert.Equal(t, "EL-999999", order.Token)

	_, err = repo.Cancel(context.Background(), "admin-token", "o1")
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/orders/o1/validate", "/api/orders/o1/cancel"}, paths)
}

func TestMediaRepository(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "gallery", r.URL.Query().Get("destination"))
			_, _ = w.Write([]byte(`[{"_id":"m1","type":"image","destination":"gallery","url":"http://img/1.jpg","title":"Scène"}]`))
		case http.MethodPost:
			_, _ = w.Write([]byte(`{"_id":"m2","type":"video","destination":"home","url":"http://vid/1.mp4","title":"Teaser"}`))
		case http.MethodDelete:
			assert.Equal(t, "/api/media/m1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	})
	repo := NewMediaRepository(client)

	items, err := repo.List(context.Background(), domain.MediaDestinationGallery)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.MediaTypeImage, items[0].Type)

	created, err := repo.Create(context.Background(), "tok", domain.Media{Type: domain.MediaTypeVideo, Destination: domain.MediaDestinationHome, URL: "http://vid/1.mp4", Title: "Teaser"})
	require.NoError(t, err)
	assert.Equal(t, "m2", created.ID)

	assert.NoError(t, repo.Delete(context.Background(), "tok", "m1"))
}

func TestMediaRepository_Create_RejectsInvalid(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := NewMediaRepository(client).Create(context.Background(), "tok", domain.Media{Type: "audio"})

	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestAuthRepository(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_, _ = w.Write([]byte(`{"token":"jwt","admin":{"_id":"a1","name":"Admin","email":"admin@example.com"}}`))
		case "/api/auth/profile":
			_, _ = w.Write([]byte(`{"admin":{"_id":"a1","name":"Admin","email":"admin@example.com","photo":"p.jpg"}}`))
		}
	})
	repo := NewAuthRepository(client)

	session, err := repo.Login(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", session.Token)
	assert.Equal(t, "Admin", session.Admin.Name)

	profile, err := repo.Profile(context.Background(), "jwt")
	require.NoError(t, err)
	assert.Equal(t, "p.jpg", profile.Photo)
}

func TestOrderRepository_Validate_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	order, err := NewOrderRepository(client).Validate(context.Background(), "admin-token", "o1")

	assert.Nil(t, order)
	assert.ErrorIs(t, err, apiclient.ErrDecode)
}

func TestEventRepository_Save(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		calls = append(calls, r.Method+" "+r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Rire Sans Frontières", body["title"])
		if r.Method == http.MethodPost {
			_, hasID := body["_id"]
			assert.False(t, hasID)
			w.WriteHeader(http.StatusCreated)
		}
		_, _ = w.Write([]byte(eventJSON))
	})
	repo := NewEventRepository(client)
	date, err := domain.ParseDate("2024-12-14")
	require.NoError(t, err)
	draft := domain.Event{Title: "Rire Sans Frontières", Date: date, Status: domain.EventStatusUpcoming}

	created, err := repo.Create(context.Background(), "admin-token", draft)
	require.NoError(t, err)
	assert.Equal(t, "ev1", created.ID)

	_, err = repo.Update(context.Background(), "admin-token", "ev1", draft)
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /api/events", "PUT /api/events/ev1"}, calls)
}

func TestEventRepository_Create_RejectsInvalid(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := NewEventRepository(client).Create(context.Background(), "tok", domain.Event{Title: "Sans date"})

	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestEventRepository_Delete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/events/ev1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, NewEventRepository(client).Delete(context.Background(), "tok", "ev1"))
}
