// Package harness provides a conformance harness for the table
// controller: YAML scenarios drive a controller through a sequence of
// user intents against a recording in-memory gateway, then assert on
// the final snapshot and compare its rendering against a golden file.
//
// Scenarios run with a deterministic frozen clock and flush the
// detached remote replay after every step, so notification order — and
// therefore the rendered snapshot — is identical on every run.
package harness

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gridline/internal/record"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies the scenario; the golden file is
	// testdata/golden/{Name}.golden.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Now freezes the clock; defaults to 2024-06-01T10:00:00Z so
	// new-row dates and notification expiry are reproducible.
	Now time.Time `yaml:"now,omitempty"`

	// RowsPerPage is the initial page size (default 10).
	RowsPerPage int `yaml:"rows_per_page,omitempty"`

	// Seed is the collection the gateway serves on initial load.
	Seed []record.Record `yaml:"seed"`

	// RemoteFails makes every create/update/delete replay fail, for
	// exercising the optimistic no-rollback contract.
	RemoteFails bool `yaml:"remote_fails,omitempty"`

	// Steps are applied in order after the initial load.
	Steps []Step `yaml:"steps"`

	// Expect holds assertions evaluated against the final snapshot.
	Expect Expect `yaml:"expect,omitempty"`
}

// Step is one user intent. Exactly one of the fields should be set;
// boolean fields exist for steps that carry no argument.
type Step struct {
	Search        *string   `yaml:"search,omitempty"`
	Rows          int       `yaml:"rows,omitempty"`
	Next          bool      `yaml:"next,omitempty"`
	Prev          bool      `yaml:"prev,omitempty"`
	GoTo          int       `yaml:"goto,omitempty"`
	Add           bool      `yaml:"add,omitempty"`
	Delete        int       `yaml:"delete,omitempty"`
	Edit          *EditStep `yaml:"edit,omitempty"`
	PickDate      *DateStep `yaml:"pick_date,omitempty"`
	DismissPicker bool      `yaml:"dismiss_picker,omitempty"`
}

// EditStep commits a plain-field edit.
type EditStep struct {
	ID    int    `yaml:"id"`
	Field string `yaml:"field"`
	Value string `yaml:"value"`
}

// DateStep runs the picker sub-protocol: open on the record, then
// select the ISO date.
type DateStep struct {
	ID   int    `yaml:"id"`
	Date string `yaml:"date"`
}

// Expect asserts on the final snapshot. Zero-valued fields are skipped.
type Expect struct {
	Summary     string `yaml:"summary,omitempty"`
	RowCount    *int   `yaml:"row_count,omitempty"`
	TotalPages  *int   `yaml:"total_pages,omitempty"`
	Submissions *int   `yaml:"submissions,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	for i, step := range s.Steps {
		if step.Edit != nil {
			if _, err := record.ParseField(step.Edit.Field); err != nil {
				return nil, fmt.Errorf("scenario %s step %d: %w", path, i+1, err)
			}
		}
	}
	return &s, nil
}
