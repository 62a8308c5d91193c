package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

const conflictMessage = "Record changed, please refresh"

type UpdateLeadUseCase struct {
	Leads   entity.LeadRepositoryInterface
	History *HistoryRecorder
	Events  EventPublisher
	Logger  logrus.FieldLogger
}

func NewUpdateLeadUseCase(
	leads entity.LeadRepositoryInterface,
	history *HistoryRecorder,
	events EventPublisher,
	logger logrus.FieldLogger,
) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{
		Leads:   leads,
		History: history,
		Events:  publisherOrNoop(events),
		Logger:  logger,
	}
}

// Execute applies one edit. Not found, forbidden, conflict and validation
// failures are terminal; nothing is retried.
func (uc *UpdateLeadUseCase) Execute(ctx context.Context, input UpdateLeadInput) (*LeadWithHistoryOutput, error) {
	// 1. load and authorize; ownership is checked before the version
	stored, err := loadOwned(ctx, uc.Leads, input.Actor, input.ID)
	if err != nil {
		return nil, err
	}

	// 2. the caller must hold the current version
	token, ok := ParseVersionToken(input.UpdatedAt)
	if !ok || !token.Equal(stored.UpdatedAt) {
		return nil, conflict(conflictMessage)
	}

	// 3. validate with the same rules as create and import
	result := ValidateLead(input.Raw)
	if !result.OK() {
		return nil, invalid(result.Errors)
	}

	// 4. diff and conditional write
	changes := entity.Diff(stored.LeadData, *result.Lead)

	var updated *entity.Lead
	run := NewStagedRun()
	run.AddStage("write", func(ctx context.Context) (err error) {
		updated, err = uc.Leads.UpdateIfVersionMatches(ctx, stored.ID, stored.UpdatedAt, *result.Lead)
		return err
	})
	run.AddStage("history", func(ctx context.Context) error {
		_, err := uc.History.RecordChanges(ctx, stored.ID, input.Actor.ID, changes)
		return err
	})

	out := &LeadWithHistoryOutput{}
	if err := run.Execute(ctx); err != nil {
		var stageErr *StageError
		if !errors.As(err, &stageErr) || stageErr.Completed == 0 {
			return nil, writeError(err)
		}
		uc.Logger.WithFields(logrus.Fields{
			"buyer_id": stored.ID,
			"actor_id": input.Actor.ID,
			"stage":    stageErr.Stage,
		}).WithError(stageErr.Err).Error("lead updated without history entry")
		out.HistoryErr = stageErr
	}

	// 5. respond with the fresh lead and its recent history
	out.Buyer = updated
	out.History, err = uc.History.Recent(ctx, updated.ID)
	if err != nil {
		uc.Logger.WithField("buyer_id", updated.ID).WithError(err).Warn("could not load recent history")
		out.History = []*entity.History{}
	}

	if !changes.Empty() {
		if err := uc.Events.PublishLeadEvent(ctx, entity.LeadEvent{
			Type:       entity.LeadUpdated,
			BuyerID:    updated.ID,
			Actor:      input.Actor,
			Lead:       updated,
			Changes:    changes,
			OccurredAt: time.Now().UTC(),
		}); err != nil {
			uc.Logger.WithField("buyer_id", updated.ID).WithError(err).Warn("lead event not published")
		}
	}

	return out, nil
}

// ParseVersionToken reads an updatedAt token as sent back by clients.
func ParseVersionToken(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func writeError(err error) error {
	switch {
	case errors.Is(err, entity.ErrVersionConflict):
		return conflict(conflictMessage)
	case errors.Is(err, entity.ErrLeadNotFound):
		return notFound("Buyer not found")
	default:
		return upstream("failed to update lead", err)
	}
}
