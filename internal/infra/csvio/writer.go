package csvio

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// ExportHeader is also the import header, so an export can be re-imported.
var ExportHeader = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk", "purpose",
	"budgetMin", "budgetMax", "timeline", "source", "notes", "tags", "status",
}

// ExportRecord renders a lead in ExportHeader order. Timeline uses its short
// label and tags are joined with ", ".
func ExportRecord(l *entity.Lead) []string {
	return []string{
		l.FullName,
		deref(l.Email),
		l.Phone,
		string(l.City),
		string(l.PropertyType),
		string(deref(l.BHK)),
		string(l.Purpose),
		itoa(l.BudgetMin),
		itoa(l.BudgetMax),
		l.Timeline.ShortLabel(),
		string(l.Source),
		deref(l.Notes),
		strings.Join(l.Tags, ", "),
		string(l.Status),
	}
}

func WriteLeads(w io.Writer, leads []*entity.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, l := range leads {
		if err := cw.Write(ExportRecord(l)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref[T ~string](p *T) T {
	if p == nil {
		return ""
	}
	return *p
}

func itoa(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
