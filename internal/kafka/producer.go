package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventOrderSubmitted = "order_submitted"
	EventTicketIssued   = "ticket_issued"
	EventOrderValidated = "order_validated"
	EventOrderCancelled = "order_cancelled"
)

// OrderEvent is published for every step of an order's life that the notification worker cares about.
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	EventID       string    `json:"event_id"`
	EventTitle    string    `json:"event_title,omitempty"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	CustomerPhone string    `json:"customer_phone"`
	TotalAmount   int64     `json:"total_amount"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Token         string    `json:"token,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func DecodeOrderEvent(msg kafka.Message) (OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return OrderEvent{}, fmt.Errorf("failed to decode order event: %w", err)
	}
	return event, nil
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	log.Printf("Publishing to Kafka - Topic: %s, Key: %s", topic, key)

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := p.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Printf("Attempt %d failed: %v", i+1, err)

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker. The app calls it once at startup to warn early.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no Kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Brokers(); err != nil {
		return fmt.Errorf("failed to read brokers: %w", err)
	}
	return nil
}
