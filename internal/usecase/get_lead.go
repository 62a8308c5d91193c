package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

type GetLeadUseCase struct {
	Leads   entity.LeadRepositoryInterface
	History *HistoryRecorder
}

func NewGetLeadUseCase(leads entity.LeadRepositoryInterface, history *HistoryRecorder) *GetLeadUseCase {
	return &GetLeadUseCase{Leads: leads, History: history}
}

func (uc *GetLeadUseCase) Execute(ctx context.Context, input GetLeadInput) (*LeadWithHistoryOutput, error) {
	lead, err := loadOwned(ctx, uc.Leads, input.Actor, input.ID)
	if err != nil {
		return nil, err
	}

	history, err := uc.History.Recent(ctx, lead.ID)
	if err != nil {
		return nil, upstream("failed to load history", err)
	}

	return &LeadWithHistoryOutput{Buyer: lead, History: history}, nil
}

func loadOwned(ctx context.Context, leads entity.LeadRepositoryInterface, actor entity.Actor, id string) (*entity.Lead, error) {
	if actor.ID == "" {
		return nil, &DomainError{Code: CodeUnauthorized, Message: "unauthorized"}
	}

	lead, err := leads.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, notFound("Buyer not found")
	}
	if err != nil {
		return nil, upstream("failed to load lead", err)
	}

	if !lead.CanEdit(actor.ID) {
		return nil, forbidden("Forbidden")
	}
	return lead, nil
}
