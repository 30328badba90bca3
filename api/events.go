package api

import (
	"net/http"

	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/Domenick1991/showtickets/internal/service/events"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service events.EventUseCase
}

type eventResponse struct {
	domain.Event
	SeatsAvailable int   `json:"seats_available"`
	StartingPrice  int64 `json:"starting_price"`
}

func newEventResponse(e domain.Event) eventResponse {
	return eventResponse{Event: e, SeatsAvailable: e.SeatsAvailable(), StartingPrice: e.StartingPrice()}
}

func NewEventHandler(service events.EventUseCase) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *EventHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Query("upcoming") == "true")
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	out := make([]eventResponse, 0, len(list))
	for _, e := range list {
		out = append(out, newEventResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

func (h *EventHandler) get(c *gin.Context) {
	event, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newEventResponse(*event))
}

// upstreamStatus maps a failed call to the show API onto our answer.
func upstreamStatus(err error) int {
	code := apiclient.StatusCode(err)
	switch {
	case code >= 400 && code < 500:
		return code
	case code >= 500:
		return http.StatusBadGateway
	}
	if isUnreachable(err) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
