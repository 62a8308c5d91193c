package usecase

import (
	"context"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// RecentHistoryLimit is how many history entries accompany a single lead.
const RecentHistoryLimit = 5

// HistoryRecorder appends audit entries for lead mutations.
type HistoryRecorder struct {
	Store entity.HistoryRepositoryInterface
}

func NewHistoryRecorder(store entity.HistoryRepositoryInterface) *HistoryRecorder {
	return &HistoryRecorder{Store: store}
}

// RecordChanges appends one entry for a non-empty change set. An empty set records nothing.
func (r *HistoryRecorder) RecordChanges(ctx context.Context, buyerID, actorID string, changes entity.ChangeSet) (*entity.History, error) {
	if changes.Empty() {
		return nil, nil
	}
	return r.Store.Append(ctx, buyerID, actorID, entity.ChangeDiff(changes))
}

func (r *HistoryRecorder) RecordCreated(ctx context.Context, lead *entity.Lead, actorID string) (*entity.History, error) {
	return r.Store.Append(ctx, lead.ID, actorID, entity.CreatedDiff(lead))
}

func (r *HistoryRecorder) RecordImported(ctx context.Context, lead *entity.Lead, actorID string) (*entity.History, error) {
	return r.Store.Append(ctx, lead.ID, actorID, entity.ImportedDiff(lead.LeadData))
}

func (r *HistoryRecorder) Recent(ctx context.Context, buyerID string) ([]*entity.History, error) {
	return r.Store.Recent(ctx, buyerID, RecentHistoryLimit)
}
