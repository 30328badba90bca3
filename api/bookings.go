package api

import (
	"errors"
	"mime"
	"net/http"

	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/Domenick1991/showtickets/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	limiter *RateLimiter
}

type createBookingRequest struct {
	EventID string `json:"event_id" binding:"required"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type customerRequest struct {
	Name          string               `json:"name"`
	Email         string               `json:"email"`
	Phone         string               `json:"phone"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

type redeemRequest struct {
	Token string `json:"token"`
}

func NewBookingHandler(service booking.BookingUseCase, limiter *RateLimiter) *BookingHandler {
	return &BookingHandler{service: service, limiter: limiter}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:session", h.get)
	router.PUT("/:session/tickets/:type", h.setQuantity)
	router.POST("/:session/tickets/:type/increment", h.increment)
	router.POST("/:session/tickets/:type/decrement", h.decrement)
	router.POST("/:session/continue", h.next)
	router.POST("/:session/back", h.back)
	router.PUT("/:session/customer", h.customer)
	router.POST("/:session/order", h.order)
	router.GET("/:session/instructions", h.instructions)
	router.POST("/:session/token", h.openToken)
	if h.limiter != nil {
		router.POST("/:session/redeem", h.limiter.Middleware(), h.redeem)
	} else {
		router.POST("/:session/redeem", h.redeem)
	}
	router.DELETE("/:session/pending", h.startOver)
}

func (h *BookingHandler) RegisterPaymentMethods(router *gin.RouterGroup) {
	router.GET("/payment-methods", func(c *gin.Context) {
		c.JSON(http.StatusOK, h.service.PaymentMethods())
	})
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow, err := h.service.Start(c.Request.Context(), visitorID(c), req.EventID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, flow.Snapshot())
}

// flow resolves the session of the request; it answers the request itself when there is none.
func (h *BookingHandler) flow(c *gin.Context) (*booking.Flow, bool) {
	flow, err := h.service.Get(c.Param("session"))
	if err == nil && flow.VisitorID() != visitorID(c) {
		err = booking.ErrSessionNotFound
	}
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return flow, true
}

func (h *BookingHandler) get(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, flow.Snapshot())
}

func (h *BookingHandler) setQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.adjust(c, func(flow *booking.Flow, tier string) (int, error) {
		return flow.SetQuantity(tier, *req.Quantity)
	})
}

func (h *BookingHandler) increment(c *gin.Context) {
	h.adjust(c, (*booking.Flow).Increment)
}

func (h *BookingHandler) decrement(c *gin.Context) {
	h.adjust(c, (*booking.Flow).Decrement)
}

func (h *BookingHandler) adjust(c *gin.Context, apply func(*booking.Flow, string) (int, error)) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}
	if _, err := apply(flow, c.Param("type")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, flow.Snapshot())
}

func (h *BookingHandler) next(c *gin.Context) {
	h.step(c, (*booking.Flow).Continue)
}

func (h *BookingHandler) back(c *gin.Context) {
	h.step(c, (*booking.Flow).Back)
}

func (h *BookingHandler) openToken(c *gin.Context) {
	h.step(c, (*booking.Flow).OpenTokenValidation)
}

func (h *BookingHandler) step(c *gin.Context, apply func(*booking.Flow) error) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}
	if err := apply(flow); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, flow.Snapshot())
}

func (h *BookingHandler) customer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flow, ok := h.flow(c)
	if !ok {
		return
	}
	if err := flow.SetCustomer(booking.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone}); err != nil {
		h.fail(c, err)
		return
	}
	if req.PaymentMethod != "" {
		if err := flow.SelectPayment(req.PaymentMethod); err != nil {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, flow.Snapshot())
}

func (h *BookingHandler) order(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}
	order, err := flow.SubmitOrder(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "booking": flow.Snapshot()})
}

func (h *BookingHandler) instructions(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}
	instructions, err := flow.Instructions()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, instructions)
}

func (h *BookingHandler) redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flow, ok := h.flow(c)
	if !ok {
		return
	}
	artifact, err := flow.RedeemToken(c.Request.Context(), req.Token)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	c.Header("X-Dialog-Title", mime.QEncoding.Encode("utf-8", booking.TicketDownloaded.Title))
	c.Data(http.StatusOK, "application/pdf", artifact.PDF)
}

func (h *BookingHandler) startOver(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}
	if err := flow.StartOver(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, flow.Snapshot())
}

// fail answers with the error and the dialog the front end should show.
func (h *BookingHandler) fail(c *gin.Context, err error) {
	c.JSON(bookingStatus(err), gin.H{"error": err.Error(), "dialog": booking.DialogFor(err)})
}

func bookingStatus(err error) int {
	var (
		rejected *booking.OrderRejectedError
		invalid  *booking.TokenInvalidError
		artifact *booking.ArtifactError
	)
	switch {
	case errors.Is(err, booking.ErrSessionNotFound), apiclient.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrBusy), errors.Is(err, booking.ErrIllegalTransition), errors.Is(err, booking.ErrWrongStep):
		return http.StatusConflict
	case errors.Is(err, booking.ErrNoTickets), errors.Is(err, booking.ErrCustomerIncomplete),
		errors.Is(err, booking.ErrUnknownTier), errors.Is(err, booking.ErrUnknownPaymentMethod),
		errors.Is(err, booking.ErrTokenRequired), errors.As(err, &rejected), errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &artifact):
		return http.StatusInternalServerError
	case errors.Is(err, booking.ErrServerUnreachable):
		return http.StatusBadGateway
	}
	return upstreamStatus(err)
}

func isUnreachable(err error) bool {
	return errors.Is(err, apiclient.ErrUnreachable) || errors.Is(err, apiclient.ErrDecode)
}
