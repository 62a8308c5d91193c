package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/buyer-leads/internal/entity"
	"github.com/xavierca1/buyer-leads/internal/infra/memory"
	"github.com/xavierca1/buyer-leads/internal/usecase"
)

func TestCreateLeadWritesCreatedHistory(t *testing.T) {
	ctx := context.Background()
	history := memory.NewHistoryStore()
	events := new(MockEventPublisher)
	events.On("PublishLeadEvent", ctx, mock.MatchedBy(func(e entity.LeadEvent) bool {
		return e.Type == entity.LeadCreated && e.Actor == owner
	})).Return(nil)

	uc := usecase.NewCreateLeadUseCase(memory.NewLeadStore(), usecase.NewHistoryRecorder(history), events, nullLogger())
	out, err := uc.Execute(ctx, usecase.CreateLeadInput{Actor: owner, Raw: validRaw()})

	require.NoError(t, err)
	assert.Equal(t, owner.ID, out.Buyer.OwnerID)
	assert.Equal(t, entity.StatusNew, out.Buyer.Status)
	require.Len(t, out.History, 1)
	assert.Contains(t, out.History[0].Diff, "created")
	events.AssertExpectations(t)
}

func TestCreateLeadValidationFailure(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := usecase.NewCreateLeadUseCase(leads, usecase.NewHistoryRecorder(new(MockHistoryRepository)), nil, nullLogger())

	raw := validRaw()
	raw["propertyType"] = "Villa"

	_, err := uc.Execute(context.Background(), usecase.CreateLeadInput{Actor: owner, Raw: raw})

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeValidation, de.Code)
	assert.Equal(t, []string{"BHK is required for Apartment or Villa"}, de.Fields["bhk"])
	leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateLeadStoreFailure(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	leads.On("Create", ctx, owner.ID, mock.Anything).Return(nil, errors.New("boom"))

	uc := usecase.NewCreateLeadUseCase(leads, usecase.NewHistoryRecorder(new(MockHistoryRepository)), nil, nullLogger())
	_, err := uc.Execute(ctx, usecase.CreateLeadInput{Actor: owner, Raw: validRaw()})

	assert.True(t, usecase.IsTechnicalError(err))
}

func TestCreateLeadRequiresActor(t *testing.T) {
	uc := usecase.NewCreateLeadUseCase(new(MockLeadRepository), nil, nil, nullLogger())

	_, err := uc.Execute(context.Background(), usecase.CreateLeadInput{Raw: validRaw()})

	assert.Equal(t, usecase.CodeUnauthorized, usecase.ErrorCode(err))
}

func TestOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	leads := memory.NewLeadStore()
	recorder := usecase.NewHistoryRecorder(memory.NewHistoryStore())

	created, err := usecase.NewCreateLeadUseCase(leads, recorder, nil, nullLogger()).
		Execute(ctx, usecase.CreateLeadInput{Actor: owner, Raw: validRaw()})
	require.NoError(t, err)

	_, err = usecase.NewGetLeadUseCase(leads, recorder).Execute(ctx, usecase.GetLeadInput{Actor: stranger, ID: created.Buyer.ID})
	assert.Equal(t, usecase.CodeForbidden, usecase.ErrorCode(err))

	raw := validRaw()
	raw["fullName"] = "Hijacked"
	_, err = usecase.NewUpdateLeadUseCase(leads, recorder, nil, nullLogger()).Execute(ctx, usecase.UpdateLeadInput{
		Actor:     stranger,
		ID:        created.Buyer.ID,
		UpdatedAt: created.Buyer.UpdatedAt.Format(time.RFC3339Nano),
		Raw:       raw,
	})
	assert.Equal(t, usecase.CodeForbidden, usecase.ErrorCode(err))

	list, err := usecase.NewListLeadsUseCase(leads).Execute(ctx, usecase.ListLeadsInput{Actor: stranger, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)

	stored, _ := leads.FindByID(ctx, created.Buyer.ID)
	assert.Equal(t, "Jane Doe", stored.FullName)
}

func TestUpdateThenGetAgainstMemoryStore(t *testing.T) {
	ctx := context.Background()
	leads := memory.NewLeadStore()
	recorder := usecase.NewHistoryRecorder(memory.NewHistoryStore())
	update := usecase.NewUpdateLeadUseCase(leads, recorder, nil, nullLogger())

	created, err := usecase.NewCreateLeadUseCase(leads, recorder, nil, nullLogger()).
		Execute(ctx, usecase.CreateLeadInput{Actor: owner, Raw: validRaw()})
	require.NoError(t, err)
	token := created.Buyer.UpdatedAt.Format(time.RFC3339Nano)

	raw := validRaw()
	raw["status"] = "Contacted"
	first, err := update.Execute(ctx, usecase.UpdateLeadInput{Actor: owner, ID: created.Buyer.ID, UpdatedAt: token, Raw: raw})
	require.NoError(t, err)
	assert.True(t, first.Buyer.UpdatedAt.After(created.Buyer.UpdatedAt))
	require.Len(t, first.History, 2)
	assert.Contains(t, first.History[0].Diff, "status")

	// the same token a second time is stale
	_, err = update.Execute(ctx, usecase.UpdateLeadInput{Actor: owner, ID: created.Buyer.ID, UpdatedAt: token, Raw: raw})
	assert.Equal(t, usecase.CodeConflict, usecase.ErrorCode(err))

	got, err := usecase.NewGetLeadUseCase(leads, recorder).Execute(ctx, usecase.GetLeadInput{Actor: owner, ID: created.Buyer.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusContacted, got.Buyer.Status)

	_, err = usecase.NewGetLeadUseCase(leads, recorder).Execute(ctx, usecase.GetLeadInput{Actor: owner, ID: "missing"})
	assert.Equal(t, usecase.CodeNotFound, usecase.ErrorCode(err))
}

func TestListLeadsPaging(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	leads.On("List", ctx, entity.LeadFilter{OwnerID: owner.ID, City: entity.CityMohali, Search: "asha"}, entity.Page{Number: 2, Size: entity.DefaultPageSize}).
		Return([]*entity.Lead{storedLead()}, 11, nil)

	out, err := usecase.NewListLeadsUseCase(leads).Execute(ctx, usecase.ListLeadsInput{
		Actor: owner, Page: 2, City: "Mohali", Search: "asha",
	})

	require.NoError(t, err)
	assert.Equal(t, 11, out.Total)
	assert.Equal(t, 2, out.Page)
	assert.Equal(t, entity.DefaultPageSize, out.PageSize)
	assert.Len(t, out.Buyers, 1)
}

func TestExportLeadsScopesToOwner(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	leads.On("ListAll", ctx, entity.LeadFilter{OwnerID: owner.ID, Status: entity.StatusNew}).Return([]*entity.Lead{storedLead()}, nil)

	out, err := usecase.NewExportLeadsUseCase(leads).Execute(ctx, usecase.ExportLeadsInput{Actor: owner, Status: "New"})

	require.NoError(t, err)
	assert.Len(t, out, 1)
}
