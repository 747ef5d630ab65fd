package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/eventgate/backend/internal/domain"
)

const checkInRoutingKey = "ticket.checked_in"

// CheckInEvent is the message emitted after every successful check-in, for
// downstream consumers (attendance dashboards, notifications).
type CheckInEvent struct {
	TicketID     string     `json:"ticket_id"`
	EventID      string     `json:"event_id"`
	TicketNumber string     `json:"ticket_number"`
	OperatorID   string     `json:"operator_id"`
	CheckedInAt  *time.Time `json:"checked_in_at"`
}

type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp.Dial -> %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("conn.Channel -> %w", err)
	}

	if err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("ch.ExchangeDeclare -> %w", err)
	}

	return &Publisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
	}, nil
}

func (p *Publisher) PublishCheckIn(ctx context.Context, ticket domain.Ticket, operatorID string) error {
	body, err := json.Marshal(CheckInEvent{
		TicketID:     ticket.ID,
		EventID:      ticket.EventID,
		TicketNumber: ticket.TicketNumber,
		OperatorID:   operatorID,
		CheckedInAt:  ticket.CheckedInAt,
	})
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		checkInRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("ch.PublishWithContext -> %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
