package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pankajkkc01/RAG-application/internal/model"
)

// Audit entry kinds carried on the audit queue.
const (
	AuditKindFeedback  = "feedback"
	AuditKindUserLogin = "user_login"
)

// AuditEntry is the queue envelope for write-only audit records. Exactly one
// payload field is set, selected by Kind.
type AuditEntry struct {
	Kind      string           `json:"kind"`
	Feedback  *model.Feedback  `json:"feedback,omitempty"`
	UserLogin *model.UserLogin `json:"user_login,omitempty"`
}

// AuditPublisher publishes feedback and login records to the audit queue for
// asynchronous persistence.
type AuditPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewAuditPublisher(conn *amqp.Connection, queueName string) *AuditPublisher {
	return &AuditPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *AuditPublisher) PublishFeedback(ctx context.Context, fb model.Feedback) error {
	return p.publish(ctx, AuditEntry{Kind: AuditKindFeedback, Feedback: &fb})
}

func (p *AuditPublisher) PublishUserLogin(ctx context.Context, login model.UserLogin) error {
	return p.publish(ctx, AuditEntry{Kind: AuditKindUserLogin, UserLogin: &login})
}

func (p *AuditPublisher) publish(ctx context.Context, entry AuditEntry) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare audit queue failed: %w", err)
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish audit entry failed: %w", err)
	}
	return nil
}
