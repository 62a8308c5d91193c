package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// RawLead is an untyped lead payload as received from a form, JSON body or CSV row.
type RawLead map[string]any

// FieldErrors maps a field name to its messages, in the order they were found.
type FieldErrors map[string][]string

func (f FieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f FieldErrors) has(field string) bool {
	return len(f[field]) > 0
}

// Messages flattens the errors following the declared lead field order.
func (f FieldErrors) Messages() []string {
	var out []string
	for _, name := range entity.FieldNames() {
		out = append(out, f[name]...)
	}
	return out
}

// ValidationResult holds either a normalized lead or the field errors, never both.
type ValidationResult struct {
	Lead   *entity.LeadData
	Errors FieldErrors
}

func (r ValidationResult) OK() bool { return r.Lead != nil }

type leadInput struct {
	FullName     string   `json:"fullName" validate:"required,min=2,max=80"`
	Email        string   `json:"email" validate:"omitempty,email"`
	Phone        string   `json:"phone" validate:"required,phone"`
	City         string   `json:"city" validate:"required,enum=city"`
	PropertyType string   `json:"propertyType" validate:"required,enum=propertyType"`
	BHK          string   `json:"bhk" validate:"omitempty,enum=bhk"`
	Purpose      string   `json:"purpose" validate:"required,enum=purpose"`
	BudgetMin    *int     `json:"budgetMin" validate:"omitempty,min=0"`
	BudgetMax    *int     `json:"budgetMax" validate:"omitempty,min=0"`
	Timeline     string   `json:"timeline" validate:"required,enum=timeline"`
	Source       string   `json:"source" validate:"required,enum=source"`
	Status       string   `json:"status" validate:"omitempty,enum=status"`
	Notes        string   `json:"notes" validate:"max=1000"`
	Tags         []string `json:"tags"`
}

var (
	phonePattern = regexp.MustCompile(`^\d{10,15}$`)

	enumSets = map[string][]string{
		"city":         entity.Values(entity.Cities),
		"propertyType": entity.Values(entity.PropertyTypes),
		"bhk":          entity.Values(entity.BHKs),
		"purpose":      entity.Values(entity.Purposes),
		"timeline":     entity.Values(entity.Timelines),
		"source":       entity.Values(entity.Sources),
		"status":       entity.Values(entity.Statuses),
	}

	validate = newLeadValidator()
)

func newLeadValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		return slices.Contains(enumSets[fl.Param()], fl.Field().String())
	})
	return v
}

// ValidateLead is the single rule set shared by create, update and import.
// It never panics and never returns a partially normalized lead.
func ValidateLead(raw RawLead) ValidationResult {
	in, errs := coerceLead(raw)
	coercionFailed := make(map[string]bool, len(errs))
	for field := range errs {
		coercionFailed[field] = true
	}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs.add("_", err.Error())
		}
		for _, fe := range verrs {
			// a field that failed coercion reports only that failure
			if coercionFailed[fe.Field()] {
				continue
			}
			errs.add(fe.Field(), fieldMessage(fe))
		}
	}

	checkCrossFields(in, errs)

	if len(errs) > 0 {
		return ValidationResult{Errors: errs}
	}
	return ValidationResult{Lead: normalize(in)}
}

func checkCrossFields(in leadInput, errs FieldErrors) {
	if !errs.has("budgetMin") && !errs.has("budgetMax") &&
		in.BudgetMin != nil && in.BudgetMax != nil && *in.BudgetMax < *in.BudgetMin {
		errs.add("budgetMax", "Maximum budget must be greater than or equal to minimum budget")
	}

	if !errs.has("propertyType") && !errs.has("bhk") &&
		entity.PropertyType(in.PropertyType).RequiresBHK() && in.BHK == "" {
		errs.add("bhk", "BHK is required for Apartment or Villa")
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "enum":
		return fmt.Sprintf("Invalid %s: %v", fe.Field(), fe.Value())
	case "email":
		return "Invalid email"
	case "phone":
		return "Phone must be 10–15 digits"
	}

	switch fe.Field() {
	case "fullName":
		if fe.Tag() == "min" {
			return "Name must be at least 2 characters"
		}
		return "Name must be at most 80 characters"
	case "notes":
		return "Notes must be at most 1000 characters"
	case "budgetMin", "budgetMax":
		return "Must be non-negative"
	}
	return fmt.Sprintf("Failed %s check", fe.Tag())
}

func coerceLead(raw RawLead) (leadInput, FieldErrors) {
	errs := FieldErrors{}
	str := func(key string) string {
		s, err := coerceString(raw[key])
		if err != nil {
			errs.add(key, err.Error())
		}
		return s
	}
	num := func(key string) *int {
		n, err := coerceInt(raw[key])
		if err != nil {
			errs.add(key, err.Error())
		}
		return n
	}

	in := leadInput{
		FullName:     str("fullName"),
		Email:        str("email"),
		Phone:        str("phone"),
		City:         str("city"),
		PropertyType: str("propertyType"),
		BHK:          str("bhk"),
		Purpose:      str("purpose"),
		BudgetMin:    num("budgetMin"),
		BudgetMax:    num("budgetMax"),
		Timeline:     str("timeline"),
		Source:       str("source"),
		Status:       str("status"),
		Notes:        str("notes"),
	}

	tags, err := coerceTags(raw["tags"])
	if err != nil {
		errs.add("tags", err.Error())
	}
	in.Tags = tags

	return in, errs
}

var (
	errExpectedString  = errors.New("Expected string")
	errExpectedInteger = errors.New("Expected integer")
	errExpectedTags    = errors.New("Expected array of strings")
)

func coerceString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(s), nil
	default:
		return "", errExpectedString
	}
}

func coerceInt(v any) (*int, error) {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int:
		return &n, nil
	case int64:
		i := int(n)
		return &i, nil
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil, errExpectedInteger
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errExpectedInteger
		}
		f = parsed
	default:
		return nil, errExpectedInteger
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil, errExpectedInteger
	}
	i := int(f)
	return &i, nil
}

func coerceTags(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return slices.Clone(t), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, errExpectedTags
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errExpectedTags
	}
}

func normalize(in leadInput) *entity.LeadData {
	data := &entity.LeadData{
		FullName:     in.FullName,
		Phone:        in.Phone,
		City:         entity.City(in.City),
		PropertyType: entity.PropertyType(in.PropertyType),
		Purpose:      entity.Purpose(in.Purpose),
		BudgetMin:    in.BudgetMin,
		BudgetMax:    in.BudgetMax,
		Timeline:     entity.Timeline(in.Timeline),
		Source:       entity.Source(in.Source),
		Status:       entity.Status(in.Status),
		Tags:         in.Tags,
	}
	if data.Status == "" {
		data.Status = entity.StatusNew
	}
	if data.Tags == nil {
		data.Tags = []string{}
	}
	if in.Email != "" {
		data.Email = &in.Email
	}
	if in.BHK != "" {
		bhk := entity.BHK(in.BHK)
		data.BHK = &bhk
	}
	if in.Notes != "" {
		data.Notes = &in.Notes
	}
	return data
}
