package entity

import (
	"context"
	"time"
)

const ImportHistoryAction = "Created via CSV import"

// History is an immutable audit entry for a lead. Diff holds either a
// field-level change set or a creation marker with a snapshot.
type History struct {
	ID        string         `json:"id"`
	BuyerID   string         `json:"buyerId"`
	ChangedBy string         `json:"changedBy"`
	ChangedAt time.Time      `json:"changedAt"`
	Diff      map[string]any `json:"diff"`
}

func ChangeDiff(changes ChangeSet) map[string]any {
	diff := make(map[string]any, len(changes))
	for field, change := range changes {
		diff[field] = change
	}
	return diff
}

func CreatedDiff(lead *Lead) map[string]any {
	return map[string]any{"created": lead}
}

func ImportedDiff(data LeadData) map[string]any {
	return map[string]any{"action": ImportHistoryAction, "data": data}
}

type HistoryRepositoryInterface interface {
	// Append stores a new entry; the store assigns ID and ChangedAt.
	Append(ctx context.Context, buyerID, changedBy string, diff map[string]any) (*History, error)
	// Recent returns up to n entries for the lead, newest first.
	Recent(ctx context.Context, buyerID string, n int) ([]*History, error)
}
