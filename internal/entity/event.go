package entity

import "time"

type LeadEventType string

const (
	LeadCreated  LeadEventType = "lead.created"
	LeadUpdated  LeadEventType = "lead.updated"
	LeadImported LeadEventType = "lead.imported"
)

// ImportSummary is attached to lead.imported events.
type ImportSummary struct {
	Inserted int        `json:"inserted"`
	Errors   []RowError `json:"errors"`
	Outcome  string     `json:"outcome"`
}

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// LeadEvent is published after a successful mutation.
type LeadEvent struct {
	Type       LeadEventType  `json:"type"`
	BuyerID    string         `json:"buyer_id,omitempty"`
	Actor      Actor          `json:"actor"`
	Lead       *Lead          `json:"lead,omitempty"`
	Changes    ChangeSet      `json:"changes,omitempty"`
	Import     *ImportSummary `json:"import,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
