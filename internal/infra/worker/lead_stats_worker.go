package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// StatusCounter is implemented by the lead stores.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[entity.Status]int, error)
}

// LeadStatsWorker periodically publishes the number of leads per status.
type LeadStatsWorker struct {
	leads        StatusCounter
	publish      func(map[string]int)
	tickInterval time.Duration
	logger       logrus.FieldLogger
}

func NewLeadStatsWorker(leads StatusCounter, publish func(map[string]int), interval time.Duration, logger logrus.FieldLogger) *LeadStatsWorker {
	return &LeadStatsWorker{
		leads:        leads,
		publish:      publish,
		tickInterval: interval,
		logger:       logger,
	}
}

func (w *LeadStatsWorker) Start(ctx context.Context) {
	w.logger.WithField("interval", w.tickInterval).Info("lead stats worker started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("lead stats worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *LeadStatsWorker) refresh(ctx context.Context) {
	counts, err := w.leads.CountByStatus(ctx)
	if err != nil {
		w.logger.WithError(err).Warn("failed to count leads by status")
		return
	}

	// every status is reported, zero included
	out := make(map[string]int, len(entity.Statuses))
	for _, s := range entity.Statuses {
		out[string(s)] = counts[s]
	}
	w.publish(out)
}
