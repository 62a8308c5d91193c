package usecase

import (
	"context"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

type ListLeadsUseCase struct {
	Leads entity.LeadRepositoryInterface
}

func NewListLeadsUseCase(leads entity.LeadRepositoryInterface) *ListLeadsUseCase {
	return &ListLeadsUseCase{Leads: leads}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, input ListLeadsInput) (*ListLeadsOutput, error) {
	if input.Actor.ID == "" {
		return nil, &DomainError{Code: CodeUnauthorized, Message: "unauthorized"}
	}

	page := entity.Page{Number: max(input.Page, 1), Size: entity.DefaultPageSize}
	filter := buildFilter(input.Actor, input.City, input.PropertyType, input.Status, input.Timeline, input.Search)

	buyers, total, err := uc.Leads.List(ctx, filter, page)
	if err != nil {
		return nil, upstream("failed to list leads", err)
	}
	if buyers == nil {
		buyers = []*entity.Lead{}
	}

	return &ListLeadsOutput{
		Buyers:   buyers,
		Total:    total,
		Page:     page.Number,
		PageSize: page.Limit(),
	}, nil
}

// buildFilter scopes every query to the actor. Unknown enum values are kept
// as given and simply match nothing.
func buildFilter(actor entity.Actor, city, propertyType, status, timeline, search string) entity.LeadFilter {
	return entity.LeadFilter{
		OwnerID:      actor.ID,
		City:         entity.City(city),
		PropertyType: entity.PropertyType(propertyType),
		Status:       entity.Status(status),
		Timeline:     entity.Timeline(timeline),
		Search:       search,
	}
}
