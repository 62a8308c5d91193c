package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// FirstDataRow is the row number of the first record, the header being row 1.
const FirstDataRow = 2

// TransformError is a cell that cannot be turned into a lead field.
type TransformError struct {
	Field   string
	Message string
}

func (e *TransformError) Error() string { return e.Message }

type ImportLeadsUseCase struct {
	Leads   entity.LeadRepositoryInterface
	History *HistoryRecorder
	Events  EventPublisher
	Logger  logrus.FieldLogger
}

func NewImportLeadsUseCase(
	leads entity.LeadRepositoryInterface,
	history *HistoryRecorder,
	events EventPublisher,
	logger logrus.FieldLogger,
) *ImportLeadsUseCase {
	return &ImportLeadsUseCase{
		Leads:   leads,
		History: history,
		Events:  publisherOrNoop(events),
		Logger:  logger,
	}
}

type validRow struct {
	row  int
	data entity.LeadData
}

// Execute validates every row, then commits the valid ones one by one.
// A failed row never undoes the others. When the store becomes unreachable
// the import stops and the report covers what was committed so far.
func (uc *ImportLeadsUseCase) Execute(ctx context.Context, input ImportLeadsInput) (*ImportLeadsOutput, error) {
	if input.Actor.ID == "" {
		return nil, &DomainError{Code: CodeUnauthorized, Message: "unauthorized"}
	}

	out := &ImportLeadsOutput{Errors: []entity.RowError{}, Buyers: []*entity.Lead{}}
	valid := uc.validateRows(input.Rows, out)

	if len(valid) == 0 {
		out.Outcome = ImportFailed
		return out, nil
	}

	var abort error
	for _, vr := range valid {
		if err := uc.commitRow(ctx, input.Actor, vr, out); err != nil {
			abort = err
			break
		}
	}

	slices.SortStableFunc(out.Errors, func(a, b entity.RowError) int { return a.Row - b.Row })
	out.Outcome = importOutcome(out.Inserted, len(out.Errors))

	log := uc.Logger.WithFields(logrus.Fields{
		"actor_id": input.Actor.ID,
		"rows":     len(input.Rows),
		"inserted": out.Inserted,
		"errors":   len(out.Errors),
	})
	if abort != nil {
		log.WithError(abort).Error("import aborted")
		return out, upstream("import aborted", abort)
	}
	log.Info("import finished")

	if err := uc.Events.PublishLeadEvent(ctx, entity.LeadEvent{
		Type:  entity.LeadImported,
		Actor: input.Actor,
		Import: &entity.ImportSummary{
			Inserted: out.Inserted,
			Errors:   out.Errors,
			Outcome:  out.Outcome,
		},
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		log.WithError(err).Warn("import event not published")
	}

	return out, nil
}

func (uc *ImportLeadsUseCase) validateRows(rows []map[string]string, out *ImportLeadsOutput) []validRow {
	var valid []validRow
	for i, row := range rows {
		rowNum := i + FirstDataRow

		raw, err := TransformRow(row)
		if err != nil {
			out.Errors = append(out.Errors, entity.RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		result := ValidateLead(raw)
		if !result.OK() {
			for _, msg := range result.Errors.Messages() {
				out.Errors = append(out.Errors, entity.RowError{Row: rowNum, Message: msg})
			}
			continue
		}

		data := *result.Lead
		if data.BudgetMin != nil && data.BudgetMax != nil && *data.BudgetMax < *data.BudgetMin {
			out.Errors = append(out.Errors, entity.RowError{Row: rowNum, Message: "budgetMax must be greater than budgetMin"})
			continue
		}

		valid = append(valid, validRow{row: rowNum, data: data})
	}
	return valid
}

// commitRow returns an error only when the whole import must stop.
func (uc *ImportLeadsUseCase) commitRow(ctx context.Context, actor entity.Actor, vr validRow, out *ImportLeadsOutput) error {
	var lead *entity.Lead

	run := NewStagedRun()
	run.AddStage("create", func(ctx context.Context) (err error) {
		lead, err = uc.Leads.Create(ctx, actor.ID, vr.data)
		return err
	})
	run.AddStage("history", func(ctx context.Context) error {
		_, err := uc.History.RecordImported(ctx, lead, actor.ID)
		return err
	})

	err := run.Execute(ctx)
	if lead != nil {
		out.Inserted++
		out.Buyers = append(out.Buyers, lead)
	}
	if err == nil {
		return nil
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		stageErr = &StageError{Stage: "create", Err: err}
	}
	out.Errors = append(out.Errors, entity.RowError{Row: vr.row, Message: stageErr.Error()})
	uc.Logger.WithFields(logrus.Fields{
		"row":   vr.row,
		"stage": stageErr.Stage,
	}).WithError(stageErr.Err).Warn("import row not committed")

	if errors.Is(err, entity.ErrStoreUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func importOutcome(inserted, failures int) string {
	switch {
	case inserted == 0:
		return ImportFailed
	case failures > 0:
		return ImportPartial
	default:
		return ImportComplete
	}
}

var blankAsAbsent = []string{"email", "bhk", "notes", "status"}

// TransformRow turns a CSV record into a raw lead for the validator.
func TransformRow(row map[string]string) (RawLead, error) {
	raw := make(RawLead, len(row))
	for key, value := range row {
		raw[strings.TrimSpace(key)] = value
	}

	for _, field := range blankAsAbsent {
		if s, ok := raw[field].(string); ok && strings.TrimSpace(s) == "" {
			delete(raw, field)
		}
	}

	for _, field := range []string{"budgetMin", "budgetMax"} {
		n, err := parseBudgetCell(field, row[field])
		if err != nil {
			return nil, err
		}
		if n == nil {
			delete(raw, field)
		} else {
			raw[field] = *n
		}
	}

	if label, ok := raw["timeline"].(string); ok {
		if tl, known := entity.TimelineFromLabel(strings.TrimSpace(label)); known {
			raw["timeline"] = string(tl)
		}
	}

	raw["tags"] = splitTags(row["tags"])
	return raw, nil
}

func parseBudgetCell(field, cell string) (*int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return nil, &TransformError{Field: field, Message: fmt.Sprintf("%s must be a whole number", field)}
	}
	n := int(f)
	return &n, nil
}

func splitTags(cell string) []string {
	tags := []string{}
	for _, t := range strings.Split(cell, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
