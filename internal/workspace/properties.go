package workspace

import (
	"strings"
	"time"
)

// Property is one typed cell of a record. Exactly one payload field is
// populated, selected by Type; accessors return zero values for any other
// type rather than erroring, matching the tolerant extraction the importer
// relies on.
type Property struct {
	Type           string         `json:"type"`
	Title          []RichText     `json:"title,omitempty"`
	RichText       []RichText     `json:"rich_text,omitempty"`
	Number         *float64       `json:"number,omitempty"`
	Select         *SelectOption  `json:"select,omitempty"`
	MultiSelect    []SelectOption `json:"multi_select,omitempty"`
	Date           *DateValue     `json:"date,omitempty"`
	Checkbox       *bool          `json:"checkbox,omitempty"`
	URL            *string        `json:"url,omitempty"`
	Email          *string        `json:"email,omitempty"`
	PhoneNumber    *string        `json:"phone_number,omitempty"`
	Relation       []RelationRef  `json:"relation,omitempty"`
	People         []Person       `json:"people,omitempty"`
	Formula        *FormulaValue  `json:"formula,omitempty"`
	CreatedTime    *time.Time     `json:"created_time,omitempty"`
	LastEditedTime *time.Time     `json:"last_edited_time,omitempty"`
}

// RichText is one fragment of a text property.
type RichText struct {
	PlainText string `json:"plain_text"`
}

// SelectOption is a named choice in select and multi_select properties.
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue carries the start of a date property; ranges are not used here.
type DateValue struct {
	Start string `json:"start"`
}

// RelationRef points at a record in a related database.
type RelationRef struct {
	ID string `json:"id"`
}

// Person is a workspace member referenced by a people property.
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FormulaValue holds the computed result of a formula property.
type FormulaValue struct {
	Type   string     `json:"type"`
	String *string    `json:"string,omitempty"`
	Number *float64   `json:"number,omitempty"`
	Date   *DateValue `json:"date,omitempty"`
}

// String extracts the textual value of title, rich_text, select, url,
// email, phone_number and string formulas. Empty string means absent.
func (p Property) String() string {
	switch p.Type {
	case "title":
		return joinRichText(p.Title)
	case "rich_text":
		return joinRichText(p.RichText)
	case "select":
		if p.Select != nil {
			return p.Select.Name
		}
	case "url":
		if p.URL != nil {
			return *p.URL
		}
	case "email":
		if p.Email != nil {
			return *p.Email
		}
	case "phone_number":
		if p.PhoneNumber != nil {
			return *p.PhoneNumber
		}
	case "formula":
		if p.Formula != nil && p.Formula.Type == "string" && p.Formula.String != nil {
			return *p.Formula.String
		}
	}
	return ""
}

// Float extracts the numeric value of number properties and number
// formulas. The second return reports presence.
func (p Property) Float() (float64, bool) {
	switch p.Type {
	case "number":
		if p.Number != nil {
			return *p.Number, true
		}
	case "formula":
		if p.Formula != nil && p.Formula.Type == "number" && p.Formula.Number != nil {
			return *p.Formula.Number, true
		}
	}
	return 0, false
}

// StringList extracts multi_select option names or relation ids.
func (p Property) StringList() []string {
	switch p.Type {
	case "multi_select":
		out := make([]string, 0, len(p.MultiSelect))
		for _, opt := range p.MultiSelect {
			out = append(out, opt.Name)
		}
		return out
	case "relation":
		out := make([]string, 0, len(p.Relation))
		for _, ref := range p.Relation {
			out = append(out, ref.ID)
		}
		return out
	}
	return nil
}

// Time extracts the time value of date, created_time, last_edited_time and
// date formulas.
func (p Property) Time() (time.Time, bool) {
	switch p.Type {
	case "date":
		return parseDate(p.Date)
	case "created_time":
		if p.CreatedTime != nil {
			return *p.CreatedTime, true
		}
	case "last_edited_time":
		if p.LastEditedTime != nil {
			return *p.LastEditedTime, true
		}
	case "formula":
		if p.Formula != nil && p.Formula.Type == "date" {
			return parseDate(p.Formula.Date)
		}
	}
	return time.Time{}, false
}

// Bool extracts a checkbox value, false when absent.
func (p Property) Bool() bool {
	return p.Type == "checkbox" && p.Checkbox != nil && *p.Checkbox
}

func joinRichText(fragments []RichText) string {
	if len(fragments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.PlainText)
	}
	return b.String()
}

func parseDate(d *DateValue) (time.Time, bool) {
	if d == nil || d.Start == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, d.Start); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
