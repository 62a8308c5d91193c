package usecase_test

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Create(ctx context.Context, ownerID string, data entity.LeadData) (*entity.Lead, error) {
	args := m.Called(ctx, ownerID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateIfVersionMatches(ctx context.Context, id string, expected time.Time, data entity.LeadData) (*entity.Lead, error) {
	args := m.Called(ctx, id, expected, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter, page entity.Page) ([]*entity.Lead, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entity.Lead), args.Int(1), args.Error(2)
}

func (m *MockLeadRepository) ListAll(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) CountByStatus(ctx context.Context) (map[entity.Status]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entity.Status]int), args.Error(1)
}

// MockHistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, buyerID, changedBy string, diff map[string]any) (*entity.History, error) {
	args := m.Called(ctx, buyerID, changedBy, diff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.History), args.Error(1)
}

func (m *MockHistoryRepository) Recent(ctx context.Context, buyerID string, n int) ([]*entity.History, error) {
	args := m.Called(ctx, buyerID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.History), args.Error(1)
}

// MockEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func nullLogger() logrus.FieldLogger {
	logger, _ := logtest.NewNullLogger()
	return logger
}

func ptr[T any](v T) *T { return &v }

func validRaw() map[string]any {
	return map[string]any{
		"fullName":     "Jane Doe",
		"phone":        "9876543210",
		"city":         "Mohali",
		"propertyType": "Plot",
		"purpose":      "Buy",
		"timeline":     "Exploring",
		"source":       "Website",
	}
}
