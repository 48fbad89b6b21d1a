// Package record owns the canonical record list for the table controller.
//
// The Store is pure data with no I/O. It is the ONLY component permitted
// to mutate the canonical list; everything downstream (filtering,
// pagination, rendering) works on derived projections.
//
// Thread-safety model: the Store is NOT safe for concurrent use. All
// mutations happen on the controller's single-writer loop goroutine
// (see internal/controller), mirroring the single-threaded event model
// of the system it fronts.
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is a single row of the table.
//
// ID is unique and stable, assigned client-side on creation and kept as
// the permanent key even when a create call returns a server identity.
// Date is an optional field extension, display-formatted as DD/MM/YYYY.
type Record struct {
	ID      int    `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Age     int    `json:"age" yaml:"age"`
	Country string `json:"country" yaml:"country"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty"`
}

// Field identifies one editable column of a Record.
type Field int

const (
	// FieldName is the free-text name column.
	FieldName Field = iota + 1
	// FieldAge is the numeric age column.
	FieldAge
	// FieldCountry is the free-text country column.
	FieldCountry
	// FieldDate is the display-formatted date column. It is edited
	// through the structured picker, never as raw text.
	FieldDate
)

// ParseField converts a wire/CLI field name into a Field.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return FieldName, nil
	case "age":
		return FieldAge, nil
	case "country":
		return FieldCountry, nil
	case "date":
		return FieldDate, nil
	default:
		return 0, fmt.Errorf("unknown field %q", s)
	}
}

// String returns the lowercase wire name of the field.
func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldAge:
		return "age"
	case FieldCountry:
		return "country"
	case FieldDate:
		return "date"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Numeric reports whether edits to this field are coerced to integers.
func (f Field) Numeric() bool {
	return f == FieldAge
}

// CoerceInt parses raw as a decimal integer after trimming whitespace.
// Malformed input is recovered locally by coercing to 0, never rejected.
func CoerceInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// apply writes a single field, coercing numeric fields. Non-numeric
// fields store the trimmed text verbatim.
func (r *Record) apply(f Field, raw string) {
	switch f {
	case FieldName:
		r.Name = strings.TrimSpace(raw)
	case FieldAge:
		r.Age = CoerceInt(raw)
	case FieldCountry:
		r.Country = strings.TrimSpace(raw)
	case FieldDate:
		r.Date = strings.TrimSpace(raw)
	}
}

// Value returns the display string for the given field.
func (r Record) Value(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldAge:
		return strconv.Itoa(r.Age)
	case FieldCountry:
		return r.Country
	case FieldDate:
		return r.Date
	default:
		return ""
	}
}
