package usecase

import (
	"context"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// EventPublisher delivers lead events to downstream consumers.
// Publishing is best-effort: callers log failures and carry on.
type EventPublisher interface {
	PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error
}

type noopPublisher struct{}

func (noopPublisher) PublishLeadEvent(context.Context, entity.LeadEvent) error { return nil }

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
