package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventUseCase struct {
	mock.Mock
}

func (m *MockEventUseCase) List(ctx context.Context, upcoming bool) ([]domain.Event, error) {
	args := m.Called(ctx, upcoming)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventUseCase) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func TestEventHandler_list(t *testing.T) {
	mockService := &MockEventUseCase{}
	handler := NewEventHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/events?upcoming=true", nil)

	events := []domain.Event{{
		ID:      "ev1",
		Title:   "Gala",
		Tickets: []domain.TicketTier{{Type: "Standard", Price: 15000, Available: 40}, {Type: "VIP", Price: 30000, Available: 2}},
	}}
	mockService.On("List", c.Request.Context(), true).Return(events, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "ev1", body[0]["_id"])
	assert.Equal(t, float64(42), body[0]["seats_available"])
	assert.Equal(t, float64(15000), body[0]["starting_price"])
	mockService.AssertExpectations(t)
}

func TestEventHandler_get_NotFound(t *testing.T) {
	mockService := &MockEventUseCase{}
	handler := NewEventHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/events/nope", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	mockService.On("GetByID", c.Request.Context(), "nope").Return(nil, &apiclient.APIError{StatusCode: http.StatusNotFound, Message: "Événement introuvable"})

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Événement introuvable")
}

func TestEventHandler_list_Unreachable(t *testing.T) {
	mockService := &MockEventUseCase{}
	handler := NewEventHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/events", nil)

	mockService.On("List", c.Request.Context(), false).Return(nil, apiclient.ErrUnreachable)

	handler.list(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
