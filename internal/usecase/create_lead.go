package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

type CreateLeadUseCase struct {
	Leads   entity.LeadRepositoryInterface
	History *HistoryRecorder
	Events  EventPublisher
	Logger  logrus.FieldLogger
}

func NewCreateLeadUseCase(
	leads entity.LeadRepositoryInterface,
	history *HistoryRecorder,
	events EventPublisher,
	logger logrus.FieldLogger,
) *CreateLeadUseCase {
	return &CreateLeadUseCase{
		Leads:   leads,
		History: history,
		Events:  publisherOrNoop(events),
		Logger:  logger,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*LeadWithHistoryOutput, error) {
	if input.Actor.ID == "" {
		return nil, &DomainError{Code: CodeUnauthorized, Message: "unauthorized"}
	}

	result := ValidateLead(input.Raw)
	if !result.OK() {
		return nil, invalid(result.Errors)
	}

	var (
		lead  *entity.Lead
		entry *entity.History
	)

	run := NewStagedRun()
	run.AddStage("create", func(ctx context.Context) (err error) {
		lead, err = uc.Leads.Create(ctx, input.Actor.ID, *result.Lead)
		return err
	})
	run.AddStage("history", func(ctx context.Context) (err error) {
		entry, err = uc.History.RecordCreated(ctx, lead, input.Actor.ID)
		return err
	})

	out := &LeadWithHistoryOutput{}
	if err := run.Execute(ctx); err != nil {
		var stageErr *StageError
		if !errors.As(err, &stageErr) || stageErr.Completed == 0 {
			return nil, upstream("failed to create lead", err)
		}
		uc.Logger.WithFields(logrus.Fields{
			"buyer_id": lead.ID,
			"actor_id": input.Actor.ID,
			"stage":    stageErr.Stage,
		}).WithError(stageErr.Err).Error("lead created without history entry")
		out.HistoryErr = stageErr
	}

	out.Buyer = lead
	out.History = []*entity.History{}
	if entry != nil {
		out.History = append(out.History, entry)
	}

	uc.publish(ctx, entity.LeadEvent{
		Type:       entity.LeadCreated,
		BuyerID:    lead.ID,
		Actor:      input.Actor,
		Lead:       lead,
		OccurredAt: time.Now().UTC(),
	})

	return out, nil
}

func (uc *CreateLeadUseCase) publish(ctx context.Context, event entity.LeadEvent) {
	if err := uc.Events.PublishLeadEvent(ctx, event); err != nil {
		uc.Logger.WithField("buyer_id", event.BuyerID).WithError(err).Warn("lead event not published")
	}
}
