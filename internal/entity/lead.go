package entity

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrVersionConflict  = errors.New("lead was modified by someone else")
	ErrStoreUnavailable = errors.New("lead store unavailable")
)

// LeadData is the editable content of a buyer lead, as produced by the validator.
// Optional fields are pointers; nil means "not present".
type LeadData struct {
	FullName     string       `json:"fullName"`
	Email        *string      `json:"email"`
	Phone        string       `json:"phone"`
	City         City         `json:"city"`
	PropertyType PropertyType `json:"propertyType"`
	BHK          *BHK         `json:"bhk"`
	Purpose      Purpose      `json:"purpose"`
	BudgetMin    *int         `json:"budgetMin"`
	BudgetMax    *int         `json:"budgetMax"`
	Timeline     Timeline     `json:"timeline"`
	Source       Source       `json:"source"`
	Status       Status       `json:"status"`
	Notes        *string      `json:"notes"`
	Tags         []string     `json:"tags"`
}

// Lead is a stored buyer lead. UpdatedAt doubles as the optimistic concurrency token.
type Lead struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	LeadData
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CanEdit reports whether the actor owns the lead.
func (l *Lead) CanEdit(actorID string) bool {
	return actorID != "" && l.OwnerID == actorID
}

type LeadFilter struct {
	OwnerID      string
	City         City
	PropertyType PropertyType
	Status       Status
	Timeline     Timeline
	Search       string
}

// SearchTerms splits the free-text search into lower-cased terms.
func (f LeadFilter) SearchTerms() []string {
	return strings.Fields(strings.ToLower(f.Search))
}

// Matches reports whether the lead passes every filter. Each search term must
// match the name or email (case-insensitive) or the phone.
func (f LeadFilter) Matches(l *Lead) bool {
	switch {
	case f.OwnerID != "" && l.OwnerID != f.OwnerID:
		return false
	case f.City != "" && l.City != f.City:
		return false
	case f.PropertyType != "" && l.PropertyType != f.PropertyType:
		return false
	case f.Status != "" && l.Status != f.Status:
		return false
	case f.Timeline != "" && l.Timeline != f.Timeline:
		return false
	}

	name := strings.ToLower(l.FullName)
	email := ""
	if l.Email != nil {
		email = strings.ToLower(*l.Email)
	}
	for _, term := range f.SearchTerms() {
		if !strings.Contains(name, term) && !strings.Contains(email, term) && !strings.Contains(l.Phone, term) {
			return false
		}
	}
	return true
}

type Page struct {
	Number int
	Size   int
}

const DefaultPageSize = 10

// Offset returns the number of rows to skip. Page numbers start at 1.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit()
}

func (p Page) Limit() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	return p.Size
}

type LeadRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Lead, error)
	Create(ctx context.Context, ownerID string, data LeadData) (*Lead, error)
	// UpdateIfVersionMatches replaces the lead content only when the stored
	// UpdatedAt equals expected. Returns ErrVersionConflict otherwise.
	UpdateIfVersionMatches(ctx context.Context, id string, expected time.Time, data LeadData) (*Lead, error)
	List(ctx context.Context, filter LeadFilter, page Page) ([]*Lead, int, error)
	ListAll(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}
