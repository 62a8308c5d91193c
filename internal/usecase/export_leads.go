package usecase

import (
	"context"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

type ExportLeadsUseCase struct {
	Leads entity.LeadRepositoryInterface
}

func NewExportLeadsUseCase(leads entity.LeadRepositoryInterface) *ExportLeadsUseCase {
	return &ExportLeadsUseCase{Leads: leads}
}

// Execute returns every lead of the actor matching the filters, newest first.
func (uc *ExportLeadsUseCase) Execute(ctx context.Context, input ExportLeadsInput) ([]*entity.Lead, error) {
	if input.Actor.ID == "" {
		return nil, &DomainError{Code: CodeUnauthorized, Message: "unauthorized"}
	}

	filter := buildFilter(input.Actor, input.City, input.PropertyType, input.Status, input.Timeline, input.Search)
	leads, err := uc.Leads.ListAll(ctx, filter)
	if err != nil {
		return nil, upstream("failed to export leads", err)
	}
	return leads, nil
}
