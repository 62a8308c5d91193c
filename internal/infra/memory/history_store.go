package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// HistoryStore is append-only; entries are never changed once stored.
type HistoryStore struct {
	mu      sync.Mutex
	entries map[string][]*entity.History
	now     func() time.Time
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		entries: make(map[string][]*entity.History),
		now:     time.Now,
	}
}

func (s *HistoryStore) Append(ctx context.Context, buyerID, changedBy string, diff map[string]any) (*entity.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &entity.History{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		ChangedBy: changedBy,
		ChangedAt: s.now().UTC().Truncate(time.Microsecond),
		Diff:      diff,
	}
	s.entries[buyerID] = append(s.entries[buyerID], entry)

	c := *entry
	return &c, nil
}

func (s *HistoryStore) Recent(ctx context.Context, buyerID string, n int) ([]*entity.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.entries[buyerID]
	out := make([]*entity.History, 0, min(n, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		c := *all[i]
		out = append(out, &c)
	}
	return out, nil
}
