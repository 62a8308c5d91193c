// Package memory holds process-local stores used for development and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// LeadStore keeps leads in a map. The version check and the write happen
// under one lock, so concurrent updates of the same lead serialize.
type LeadStore struct {
	mu    sync.Mutex
	leads map[string]*entity.Lead
	now   func() time.Time
	last  time.Time
}

func NewLeadStore() *LeadStore {
	return &LeadStore{
		leads: make(map[string]*entity.Lead),
		now:   time.Now,
	}
}

func (s *LeadStore) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return cloneLead(lead), nil
}

func (s *LeadStore) Create(ctx context.Context, ownerID string, data entity.LeadData) (*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp(time.Time{})
	lead := &entity.Lead{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		LeadData:  cloneData(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.leads[lead.ID] = lead
	return cloneLead(lead), nil
}

func (s *LeadStore) UpdateIfVersionMatches(ctx context.Context, id string, expected time.Time, data entity.LeadData) (*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	if !lead.UpdatedAt.Equal(expected) {
		return nil, entity.ErrVersionConflict
	}

	lead.LeadData = cloneData(data)
	lead.UpdatedAt = s.stamp(lead.UpdatedAt)
	return cloneLead(lead), nil
}

func (s *LeadStore) List(ctx context.Context, filter entity.LeadFilter, page entity.Page) ([]*entity.Lead, int, error) {
	all, err := s.ListAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	start := min(page.Offset(), len(all))
	end := min(start+page.Limit(), len(all))
	return all[start:end], len(all), nil
}

func (s *LeadStore) ListAll(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*entity.Lead{}
	for _, lead := range s.leads {
		if filter.Matches(lead) {
			out = append(out, cloneLead(lead))
		}
	}
	slices.SortFunc(out, func(a, b *entity.Lead) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *LeadStore) CountByStatus(ctx context.Context) (map[entity.Status]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[entity.Status]int, len(entity.Statuses))
	for _, lead := range s.leads {
		counts[lead.Status]++
	}
	return counts, nil
}

// stamp returns the current time at microsecond precision, strictly after
// prev and after every stamp handed out before. Callers hold s.mu.
func (s *LeadStore) stamp(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	if s.last.After(prev) {
		prev = s.last
	}
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	s.last = now
	return now
}

func cloneLead(l *entity.Lead) *entity.Lead {
	c := *l
	c.LeadData = cloneData(l.LeadData)
	return &c
}

func cloneData(d entity.LeadData) entity.LeadData {
	c := d
	c.Email = clonePtr(d.Email)
	c.BHK = clonePtr(d.BHK)
	c.BudgetMin = clonePtr(d.BudgetMin)
	c.BudgetMax = clonePtr(d.BudgetMax)
	c.Notes = clonePtr(d.Notes)
	c.Tags = slices.Clone(d.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
