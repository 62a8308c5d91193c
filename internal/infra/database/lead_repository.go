package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

const leadColumns = `id, owner_id, full_name, email, phone, city, property_type, bhk, purpose,
	budget_min, budget_max, timeline, source, status, notes, tags, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var l entity.Lead
	var tags pq.StringArray
	err := row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.FullName,
		&l.Email,
		&l.Phone,
		&l.City,
		&l.PropertyType,
		&l.BHK,
		&l.Purpose,
		&l.BudgetMin,
		&l.BudgetMax,
		&l.Timeline,
		&l.Source,
		&l.Status,
		&l.Notes,
		&tags,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Tags = []string(tags)
	if l.Tags == nil {
		l.Tags = []string{}
	}
	return &l, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrLeadNotFound
	}

	query := `SELECT ` + leadColumns + ` FROM buyers WHERE id = $1`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return lead, nil
}

func (r *LeadRepository) Create(ctx context.Context, ownerID string, data entity.LeadData) (*entity.Lead, error) {
	query := `
		INSERT INTO buyers (id, owner_id, full_name, email, phone, city, property_type, bhk, purpose,
			budget_min, budget_max, timeline, source, status, notes, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + leadColumns

	args := append([]any{uuid.NewString(), ownerID}, dataArgs(data)...)
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, classify(err)
	}
	return lead, nil
}

// UpdateIfVersionMatches checks the version and writes in one statement.
// The new updated_at is at least one microsecond past the old one, even
// when the clock has not moved.
func (r *LeadRepository) UpdateIfVersionMatches(ctx context.Context, id string, expected time.Time, data entity.LeadData) (*entity.Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrLeadNotFound
	}

	query := `
		UPDATE buyers SET
			full_name = $3, email = $4, phone = $5, city = $6, property_type = $7, bhk = $8,
			purpose = $9, budget_min = $10, budget_max = $11, timeline = $12, source = $13,
			status = $14, notes = $15, tags = $16,
			updated_at = GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')
		WHERE id = $1 AND updated_at = $2
		RETURNING ` + leadColumns

	args := append([]any{id, expected}, dataArgs(data)...)
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, args...))
	if err == nil {
		return lead, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, classify(err)
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM buyers WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, classify(err)
	}
	if !exists {
		return nil, entity.ErrLeadNotFound
	}
	return nil, entity.ErrVersionConflict
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter, page entity.Page) ([]*entity.Lead, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM buyers`+where, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM buyers%s ORDER BY updated_at DESC, id LIMIT $%d OFFSET $%d`, leadColumns, where, n+1, n+2)
	leads, err := r.query(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *LeadRepository) ListAll(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	where, args := buildWhere(filter)
	return r.query(ctx, `SELECT `+leadColumns+` FROM buyers`+where+` ORDER BY updated_at DESC, id`, args...)
}

func (r *LeadRepository) CountByStatus(ctx context.Context) (map[entity.Status]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, count(*) FROM buyers GROUP BY status`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	counts := make(map[entity.Status]int, len(entity.Statuses))
	for rows.Next() {
		var status entity.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, classify(rows.Err())
}

func (r *LeadRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, classify(rows.Err())
}

func dataArgs(d entity.LeadData) []any {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		d.FullName,
		d.Email,
		d.Phone,
		string(d.City),
		string(d.PropertyType),
		d.BHK,
		string(d.Purpose),
		d.BudgetMin,
		d.BudgetMax,
		string(d.Timeline),
		string(d.Source),
		string(d.Status),
		d.Notes,
		pq.Array(tags),
	}
}

// buildWhere renders the filter as a WHERE clause with positional args.
func buildWhere(f entity.LeadFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.OwnerID != "" {
		add("owner_id = $%d", f.OwnerID)
	}
	if f.City != "" {
		add("city = $%d", string(f.City))
	}
	if f.PropertyType != "" {
		add("property_type = $%d", string(f.PropertyType))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Timeline != "" {
		add("timeline = $%d", string(f.Timeline))
	}
	for _, term := range f.SearchTerms() {
		add("(full_name ILIKE $%[1]d OR coalesce(email, '') ILIKE $%[1]d OR phone LIKE $%[1]d)", "%"+escapeLike(term)+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
