package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/entity"
	"github.com/xavierca1/buyer-leads/internal/infra/http/middleware"
)

// ImportNotifier tells the importer how their import went.
type ImportNotifier interface {
	NotifyImport(ctx context.Context, to string, summary entity.ImportSummary) error
}

// CRMSyncer pushes a new lead to the CRM and returns its CRM id.
type CRMSyncer interface {
	SyncLead(ctx context.Context, lead *entity.Lead) (int, error)
}

// Consumer is the subset of *amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Worker consumes lead events. A nil Notifier or CRM disables that reaction.
type Worker struct {
	Channel  Consumer
	Notifier ImportNotifier
	CRM      CRMSyncer
	Logger   logrus.FieldLogger
}

func NewWorker(ch Consumer, notifier ImportNotifier, crm CRMSyncer, logger logrus.FieldLogger) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
		CRM:      crm,
		Logger:   logger,
	}
}

// Start consumes QueueName until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.Channel.Consume(
		QueueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.Logger.WithField("queue", QueueName).Info("lead event worker started")
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("lead event worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.Handle(ctx, d)
		}
	}
}

// Handle processes one delivery. Failures are dead-lettered, never requeued.
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	var event entity.LeadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.Logger.WithError(err).Warn("malformed lead event")
		_ = d.Nack(false, false)
		return
	}

	log := w.Logger.WithFields(logrus.Fields{
		"event":    event.Type,
		"buyer_id": event.BuyerID,
		"actor_id": event.Actor.ID,
	})

	if err := w.process(ctx, event); err != nil {
		log.WithError(err).Error("lead event failed")
		_ = d.Nack(false, false)
		return
	}
	log.Debug("lead event processed")
	_ = d.Ack(false)
}

func (w *Worker) process(ctx context.Context, event entity.LeadEvent) error {
	switch event.Type {
	case entity.LeadImported:
		if w.Notifier == nil || event.Import == nil || event.Actor.Email == "" {
			return nil
		}
		if err := w.Notifier.NotifyImport(ctx, event.Actor.Email, *event.Import); err != nil {
			middleware.RecordIntegrationError("mail")
			return fmt.Errorf("import report: %w", err)
		}
		return nil

	case entity.LeadCreated:
		if w.CRM == nil || event.Lead == nil {
			return nil
		}
		crmID, err := w.CRM.SyncLead(ctx, event.Lead)
		if err != nil {
			middleware.RecordIntegrationError("kommo")
			return fmt.Errorf("crm sync: %w", err)
		}
		w.Logger.WithFields(logrus.Fields{"buyer_id": event.Lead.ID, "crm_id": crmID}).Info("lead synced to CRM")
		return nil

	default:
		// nothing reacts to other events yet; ack them
		return nil
	}
}
