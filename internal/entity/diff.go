package entity

import "slices"

// FieldChange is one entry of a ChangeSet.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ChangeSet maps a changed field name to its old and new values.
type ChangeSet map[string]FieldChange

func (c ChangeSet) Empty() bool { return len(c) == 0 }

type leadField struct {
	name  string
	value func(LeadData) any
}

// leadFields lists the tracked fields in declaration order. Identity, ownership
// and timestamps are metadata and never diffed.
var leadFields = []leadField{
	{"fullName", func(d LeadData) any { return d.FullName }},
	{"email", func(d LeadData) any { return deref(d.Email) }},
	{"phone", func(d LeadData) any { return d.Phone }},
	{"city", func(d LeadData) any { return string(d.City) }},
	{"propertyType", func(d LeadData) any { return string(d.PropertyType) }},
	{"bhk", func(d LeadData) any {
		if d.BHK == nil {
			return nil
		}
		return string(*d.BHK)
	}},
	{"purpose", func(d LeadData) any { return string(d.Purpose) }},
	{"budgetMin", func(d LeadData) any { return deref(d.BudgetMin) }},
	{"budgetMax", func(d LeadData) any { return deref(d.BudgetMax) }},
	{"timeline", func(d LeadData) any { return string(d.Timeline) }},
	{"source", func(d LeadData) any { return string(d.Source) }},
	{"status", func(d LeadData) any { return string(d.Status) }},
	{"notes", func(d LeadData) any { return deref(d.Notes) }},
	{"tags", func(d LeadData) any {
		if d.Tags == nil {
			return []string{}
		}
		return slices.Clone(d.Tags)
	}},
}

// FieldNames returns the tracked field names in declaration order.
func FieldNames() []string {
	names := make([]string, len(leadFields))
	for i, f := range leadFields {
		names[i] = f.name
	}
	return names
}

// Diff compares two versions of a lead field by field. An empty result means
// the update carries no effective change.
func Diff(old, updated LeadData) ChangeSet {
	changes := ChangeSet{}
	for _, f := range leadFields {
		before, after := f.value(old), f.value(updated)
		if !sameValue(before, after) {
			changes[f.name] = FieldChange{Old: before, New: after}
		}
	}
	return changes
}

func sameValue(a, b any) bool {
	as, aIsSlice := a.([]string)
	bs, bIsSlice := b.([]string)
	if aIsSlice || bIsSlice {
		return aIsSlice && bIsSlice && slices.Equal(as, bs)
	}
	return a == b
}

// deref returns the pointed-to value, or an untyped nil for absent fields so
// that "absent" compares equal to "absent" regardless of pointer type.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
