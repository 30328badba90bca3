package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/showtickets/api"
	"github.com/Domenick1991/showtickets/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Handlers groups everything the HTTP server exposes.
type Handlers struct {
	Events   *api.EventHandler
	Bookings *api.BookingHandler
	Admin    *api.AdminHandler
}

// Run starts the HTTP server and blocks until context is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, h Handlers) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewHandler(cfg, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewHandler builds the routed engine wrapped in the CORS policy.
func NewHandler(cfg *config.Config, h Handlers) http.Handler {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api", api.Visitor())
	if h.Events != nil {
		h.Events.Register(apiGroup.Group("/events"))
	}
	if h.Bookings != nil {
		h.Bookings.Register(apiGroup.Group("/bookings"))
		h.Bookings.RegisterPaymentMethods(apiGroup)
	}
	if h.Admin != nil {
		h.Admin.Register(apiGroup.Group("/admin"))
		h.Admin.RegisterPublic(apiGroup)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", api.VisitorHeader},
		ExposedHeaders:   []string{"Content-Disposition", api.VisitorHeader, "X-Dialog-Title"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}
