package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// HistoryRepository only ever inserts; the table rejects updates and deletes.
type HistoryRepository struct {
	DB *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

func (r *HistoryRepository) Append(ctx context.Context, buyerID, changedBy string, diff map[string]any) (*entity.History, error) {
	payload, err := json.Marshal(diff)
	if err != nil {
		return nil, err
	}

	entry := &entity.History{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		ChangedBy: changedBy,
		Diff:      diff,
	}

	query := `
		INSERT INTO buyer_history (id, buyer_id, changed_by, diff)
		VALUES ($1, $2, $3, $4)
		RETURNING changed_at
	`
	if err := r.DB.QueryRowContext(ctx, query, entry.ID, buyerID, changedBy, payload).Scan(&entry.ChangedAt); err != nil {
		return nil, classify(err)
	}
	return entry, nil
}

func (r *HistoryRepository) Recent(ctx context.Context, buyerID string, n int) ([]*entity.History, error) {
	if _, err := uuid.Parse(buyerID); err != nil {
		return []*entity.History{}, nil
	}

	query := `
		SELECT id, buyer_id, changed_by, changed_at, diff
		FROM buyer_history
		WHERE buyer_id = $1
		ORDER BY seq DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, buyerID, n)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	entries := []*entity.History{}
	for rows.Next() {
		var h entity.History
		var raw []byte
		if err := rows.Scan(&h.ID, &h.BuyerID, &h.ChangedBy, &h.ChangedAt, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &h.Diff); err != nil {
			return nil, err
		}
		entries = append(entries, &h)
	}
	return entries, classify(rows.Err())
}
