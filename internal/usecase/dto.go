package usecase

import (
	"github.com/xavierca1/buyer-leads/internal/entity"
)

type CreateLeadInput struct {
	Actor entity.Actor
	Raw   RawLead
}

type UpdateLeadInput struct {
	Actor entity.Actor
	ID    string
	// UpdatedAt is the concurrency token the caller last read, RFC 3339.
	UpdatedAt string
	Raw       RawLead
}

type GetLeadInput struct {
	Actor entity.Actor
	ID    string
}

// LeadWithHistoryOutput is the lead together with its most recent history, newest first.
type LeadWithHistoryOutput struct {
	Buyer   *entity.Lead      `json:"buyer"`
	History []*entity.History `json:"history"`

	// HistoryErr is set when the lead was written but its history entry was not.
	HistoryErr error `json:"-"`
}

type ListLeadsInput struct {
	Actor        entity.Actor
	Page         int
	City         string
	PropertyType string
	Status       string
	Timeline     string
	Search       string
}

type ListLeadsOutput struct {
	Buyers   []*entity.Lead `json:"buyers"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

type ImportLeadsInput struct {
	Actor entity.Actor
	// Rows are parsed CSV records keyed by header; the first record is row 2.
	Rows []map[string]string
}

const (
	ImportComplete = "complete"
	ImportPartial  = "partial"
	ImportFailed   = "failed"
)

type ImportLeadsOutput struct {
	Inserted int               `json:"inserted"`
	Errors   []entity.RowError `json:"errors"`
	Outcome  string            `json:"-"`
	// Buyers are the leads committed by this import, in row order.
	Buyers []*entity.Lead `json:"-"`
}

type ExportLeadsInput struct {
	Actor        entity.Actor
	City         string
	PropertyType string
	Status       string
	Timeline     string
	Search       string
}
