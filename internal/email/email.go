package email

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Domenick1991/showtickets/internal/kafka"
	"github.com/Domenick1991/showtickets/internal/ticket"
)

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Transport delivers a composed message. The default one only logs it.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

type logTransport struct{}

func (logTransport) Deliver(_ context.Context, msg Message) error {
	log.Printf("send email from %s to %s: %s", msg.From, msg.To, msg.Subject)
	return nil
}

type Sender struct {
	from      string
	transport Transport
}

type SenderOption func(*Sender)

func WithTransport(t Transport) SenderOption {
	return func(s *Sender) {
		s.transport = t
	}
}

func NewSender(from string, opts ...SenderOption) *Sender {
	s := &Sender{from: from, transport: logTransport{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send notifies the customer about an order event. Events without an email address
// or of a kind nobody is told about are dropped.
func (s *Sender) Send(ctx context.Context, event kafka.OrderEvent) error {
	if event.CustomerEmail == "" {
		log.Printf("order %s: no customer email, %s notification skipped", event.OrderID, event.Type)
		return nil
	}
	msg, ok := s.Compose(event)
	if !ok {
		return nil
	}
	if err := s.transport.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("deliver %s notification for order %s: %w", event.Type, event.OrderID, err)
	}
	return nil
}

func (s *Sender) Compose(event kafka.OrderEvent) (Message, bool) {
	msg := Message{From: s.from, To: event.CustomerEmail}
	var body strings.Builder
	fmt.Fprintf(&body, "Bonjour %s,\n\n", event.CustomerName)

	switch event.Type {
	case kafka.EventOrderSubmitted:
		msg.Subject = subject("Commande reçue", event.EventTitle)
		fmt.Fprintf(&body, "Nous avons bien reçu votre commande de %s.\n", ticket.FormatAmount(event.TotalAmount))
		body.WriteString("Votre token de validation vous sera envoyé dès réception du paiement.\n")
	case kafka.EventOrderValidated:
		msg.Subject = subject("Paiement validé", event.EventTitle)
		fmt.Fprintf(&body, "Votre paiement est validé. Votre token : %s\n", event.Token)
		body.WriteString("Saisissez-le sur la page de l'événement pour télécharger votre billet.\n")
	case kafka.EventOrderCancelled:
		msg.Subject = subject("Commande annulée", event.EventTitle)
		body.WriteString("Votre commande a été annulée. Contactez-nous pour toute question.\n")
	case kafka.EventTicketIssued:
		msg.Subject = subject("Votre billet", event.EventTitle)
		body.WriteString("Votre billet a été téléchargé. Présentez le QR Code ou le token à l'entrée.\n")
	default:
		return Message{}, false
	}

	body.WriteString("\nÀ bientôt !")
	msg.Body = body.String()
	return msg, true
}

func subject(prefix, title string) string {
	if title == "" {
		return prefix
	}
	return prefix + " - " + title
}
