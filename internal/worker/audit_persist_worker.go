package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pankajkkc01/RAG-application/internal/platform/rabbitmq"
	"github.com/pankajkkc01/RAG-application/internal/repository"
)

// AuditPersistWorker consumes the audit queue and persists feedback and
// login records. The stream is write-only; nothing in a request path reads
// it, so at-least-once eventual persistence is safe.
type AuditPersistWorker struct {
	conn         *amqp.Connection
	feedbackRepo *repository.FeedbackRepository
	loginRepo    *repository.UserLoginRepository
	queueName    string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAuditPersistWorker(
	conn *amqp.Connection,
	feedbackRepo *repository.FeedbackRepository,
	loginRepo *repository.UserLoginRepository,
	queueName string,
) *AuditPersistWorker {
	return &AuditPersistWorker{
		conn:         conn,
		feedbackRepo: feedbackRepo,
		loginRepo:    loginRepo,
		queueName:    queueName,
	}
}

func (w *AuditPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare audit queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume audit queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.persist(d.Body); err != nil {
					log.Printf("worker persist audit entry failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *AuditPersistWorker) persist(body []byte) error {
	var entry rabbitmq.AuditEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return fmt.Errorf("decode audit entry failed: %w", err)
	}

	switch entry.Kind {
	case rabbitmq.AuditKindFeedback:
		if entry.Feedback == nil {
			return fmt.Errorf("feedback entry missing payload")
		}
		return w.feedbackRepo.Create(entry.Feedback)
	case rabbitmq.AuditKindUserLogin:
		if entry.UserLogin == nil {
			return fmt.Errorf("user login entry missing payload")
		}
		return w.loginRepo.Create(entry.UserLogin)
	default:
		return fmt.Errorf("unknown audit entry kind %q", entry.Kind)
	}
}

func (w *AuditPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
