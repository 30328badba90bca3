package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/showtickets/config"
	"github.com/Domenick1991/showtickets/internal/apiclient"
	"github.com/Domenick1991/showtickets/internal/email"
	"github.com/Domenick1991/showtickets/internal/kafka"
	"github.com/Domenick1991/showtickets/internal/repository"
	"github.com/Domenick1991/showtickets/internal/ticket"
	"github.com/joho/godotenv"
)

// notification is what the worker reports on the notifications topic once a customer was told.
type notification struct {
	OrderID   string    `json:"order_id"`
	EventType string    `json:"event_type"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Archive   string    `json:"archive,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

func main() {
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic)
	defer consumer.Close()

	sender := email.NewSender(cfg.Worker.SenderAddress)

	var archiver *ticket.Archiver
	if cfg.Ticket.OutputDir != "" {
		client := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout())
		archiver = ticket.NewArchiver(
			repository.NewOrderRepository(client),
			repository.NewEventRepository(client),
			ticket.NewGenerator(ticket.NewHTTPImageLoader(&http.Client{}), cfg.Ticket.ImageTimeout()),
			ticket.NewDirSink(cfg.Ticket.OutputDir),
		)
	}

	handle := func(ctx context.Context, event kafka.OrderEvent) error {
		var archive string
		if archiver != nil && event.Type == kafka.EventTicketIssued && event.Token != "" {
			path, err := archiver.Archive(ctx, event.Token, event.EventID)
			if err != nil {
				log.Printf("WARNING: Failed to archive ticket for order %s: %v", event.OrderID, err)
			} else {
				archive = path
				log.Printf("archived ticket of order %s to %s", event.OrderID, path)
			}
		}

		if err := sender.Send(ctx, event); err != nil {
			return err
		}

		msg, ok := sender.Compose(event)
		if !ok || event.CustomerEmail == "" {
			return nil
		}
		if err := producer.Publish(ctx, cfg.Kafka.NotificationsTopic, event.OrderID, notification{
			OrderID:   event.OrderID,
			EventType: event.Type,
			To:        msg.To,
			Subject:   msg.Subject,
			Archive:   archive,
			SentAt:    time.Now().UTC(),
		}); err != nil {
			log.Printf("WARNING: Failed to publish notification for order %s: %v", event.OrderID, err)
		}
		return nil
	}

	log.Printf("consuming %s as %s", cfg.Kafka.BookingEventsTopic, cfg.Kafka.GroupID)
	if err := consumer.Consume(ctx, kafka.OrderEvents(handle)); err != nil && ctx.Err() == nil {
		log.Fatalf("consumer stopped: %v", err)
	}
	log.Printf("shutting down")
}
