package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/Domenick1991/showtickets/internal/service/admin"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service admin.AdminUseCase
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAdminHandler(service admin.AdminUseCase) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)

	authed := router.Group("", h.requireSession)
	authed.GET("/profile", h.profile)
	authed.GET("/dashboard", h.dashboard)
	authed.POST("/events", h.createEvent)
	authed.PUT("/events/:id", h.updateEvent)
	authed.DELETE("/events/:id", h.deleteEvent)
	authed.GET("/orders", h.listOrders)
	authed.PUT("/orders/:id/validate", h.validateOrder)
	authed.PUT("/orders/:id/cancel", h.cancelOrder)
	authed.GET("/media", h.listMedia)
	authed.POST("/media", h.createMedia)
	authed.DELETE("/media/:id", h.deleteMedia)
}

// RegisterPublic exposes the media library read side to the public pages.
func (h *AdminHandler) RegisterPublic(router *gin.RouterGroup) {
	router.GET("/media", h.listMedia)
}

func (h *AdminHandler) requireSession(c *gin.Context) {
	if _, err := h.service.Session(c.Request.Context(), visitorID(c)); err != nil {
		c.AbortWithStatusJSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Next()
}

func (h *AdminHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.service.Login(c.Request.Context(), visitorID(c), req.Email, req.Password)
	if err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": session.Admin})
}

func (h *AdminHandler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), visitorID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) profile(c *gin.Context) {
	profile, err := h.service.RefreshProfile(c.Request.Context(), visitorID(c))
	if err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *AdminHandler) listOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context(), visitorID(c), c.Query("eventId"))
	if err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) validateOrder(c *gin.Context) {
	order, err := h.service.ValidateOrder(c.Request.Context(), visitorID(c), c.Param("id"))
	if err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) cancelOrder(c *gin.Context) {
	order, err := h.service.CancelOrder(c.Request.Context(), visitorID(c), c.Param("id"))
	if err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) listMedia(c *gin.Context) {
	items, err := h.service.ListMedia(c.Request.Context(), domain.MediaDestination(c.Query("destination")))
	if err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *AdminHandler) createMedia(c *gin.Context) {
	var req domain.Media
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.service.CreateMedia(c.Request.Context(), visitorID(c), req)
	if err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) deleteMedia(c *gin.Context) {
	if err := h.service.DeleteMedia(c.Request.Context(), visitorID(c), c.Param("id")); err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context(), visitorID(c))
	if err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *AdminHandler) createEvent(c *gin.Context) {
	var req domain.Event
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.service.CreateEvent(c.Request.Context(), visitorID(c), req)
	if err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) updateEvent(c *gin.Context) {
	var req domain.Event
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.service.UpdateEvent(c.Request.Context(), visitorID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AdminHandler) deleteEvent(c *gin.Context) {
	if err := h.service.DeleteEvent(c.Request.Context(), visitorID(c), c.Param("id")); err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func adminStatus(err error) int {
	switch {
	case errors.Is(err, admin.ErrNotAuthenticated), errors.Is(err, admin.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, admin.ErrCredentials), errors.Is(err, domain.ErrInvalidRecord):
		return http.StatusBadRequest
	}
	return upstreamStatus(err)
}
