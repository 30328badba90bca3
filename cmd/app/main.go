package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/showtickets/api"
	"github.com/Domenick1991/showtickets/config"
	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/bootstrap"
	"github.com/Domenick1991/showtickets/internal/cache"
	"github.com/Domenick1991/showtickets/internal/kafka"
	"github.com/Domenick1991/showtickets/internal/monitoring"
	"github.com/Domenick1991/showtickets/internal/repository"
	"github.com/Domenick1991/showtickets/internal/service/admin"
	"github.com/Domenick1991/showtickets/internal/service/booking"
	"github.com/Domenick1991/showtickets/internal/service/events"
	"github.com/Domenick1991/showtickets/internal/storage"
	"github.com/Domenick1991/showtickets/internal/ticket"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout())
	eventRepo := repository.NewEventRepository(client)
	orderRepo := repository.NewOrderRepository(client)
	mediaRepo := repository.NewMediaRepository(client)
	authRepo := repository.NewAuthRepository(client)

	kv := newKV(ctx, cfg)
	eventsTTL := time.Duration(cfg.Booking.EventsCacheTTL) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, eventsTTL)

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		log.Printf("WARNING: kafka unavailable, booking events will be dropped: %v", err)
	}

	monitor := monitoring.NewMonitor()
	generator := ticket.NewGenerator(ticket.NewHTTPImageLoader(&http.Client{}), cfg.Ticket.ImageTimeout())

	sessionTTL := time.Duration(cfg.Booking.SessionTTLMinutes) * time.Minute
	bookingService := booking.NewBookingService(
		eventRepo,
		orderRepo,
		storage.NewPendingOrders(kv),
		generator,
		booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
		booking.WithMonitor(monitor),
		booking.WithRecipientLabel(cfg.Booking.RecipientLabel),
		booking.WithSessionTTL(sessionTTL),
	)
	go bookingService.RunJanitor(ctx, time.Minute)

	eventService := events.NewEventService(eventRepo, redisCache)
	adminService := admin.NewAdminService(
		authRepo,
		eventRepo,
		orderRepo,
		mediaRepo,
		storage.NewAdminSessions(kv),
		admin.WithEventsCache(redisCache),
		admin.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
	)

	handlers := bootstrap.Handlers{
		Events:   api.NewEventHandler(eventService),
		Bookings: api.NewBookingHandler(bookingService, api.NewRateLimiter(cfg.Booking.RedeemPerMinute, cfg.Booking.RedeemBurst)),
		Admin:    api.NewAdminHandler(adminService),
	}

	log.Printf("listening on %s, api %s", cfg.HTTP.Address, cfg.API.BaseURL)
	if err := bootstrap.Run(ctx, cfg, handlers); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// newKV picks the visitor storage backend. Redis falls back to memory when it cannot be reached.
func newKV(ctx context.Context, cfg *config.Config) storage.KV {
	if cfg.Storage.Backend != "redis" {
		return storage.NewMemoryKV()
	}
	kv := storage.NewRedisKV(cfg.Redis, time.Duration(cfg.Storage.MarkerTTLDays)*24*time.Hour)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := kv.Ping(pingCtx); err != nil {
		log.Printf("WARNING: redis unavailable, keeping visitor data in memory: %v", err)
		_ = kv.Close()
		return storage.NewMemoryKV()
	}
	return kv
}
