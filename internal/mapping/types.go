// Package mapping copies and merges field values from a source entity to a
// destination entity according to a declarative list of rules.
package mapping

import (
	"fmt"

	"github.com/fieldshift/fieldshift/internal/fields"
	"github.com/fieldshift/fieldshift/internal/notice"
)

// FieldSpec addresses one side of a rule.
type FieldSpec struct {
	Kind fields.Kind `yaml:"kind" json:"kind"`

	// Key is a field name or a slash path into repeater/flexible rows.
	Key string `yaml:"key" json:"key"`

	// Subtype is the field's type tag, used to select a conversion.
	// When empty, managed fields fall back to their declared type.
	Subtype string `yaml:"subtype,omitempty" json:"subtype,omitempty"`

	// All collects the value of every matching row of a nested path
	// instead of the first one.
	All bool `yaml:"all,omitempty" json:"all,omitempty"`
}

func (s FieldSpec) String() string {
	out := string(s.Kind) + ":" + s.Key
	if s.Subtype != "" {
		out += "@" + s.Subtype
	}
	return out
}

// Rule maps one source field to one destination field.
type Rule struct {
	From FieldSpec `yaml:"from" json:"from"`
	To   FieldSpec `yaml:"to" json:"to"`
}

func (r Rule) String() string {
	return r.From.String() + " -> " + r.To.String()
}

// Set is an ordered list of independent rules. Order only affects reporting.
type Set []Rule

// Status is the outcome of one rule.
type Status string

const (
	StatusWritten      Status = "written"
	StatusSkippedMerge Status = "skipped-merge"
	StatusSkippedError Status = "skipped-error"
)

// Result is the outcome of applying one rule.
type Result struct {
	Rule    Rule   `json:"rule"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Value   any    `json:"value,omitempty"`
	DryRun  bool   `json:"dry_run,omitempty"`
}

// Notice renders the result as a single report line.
func (r Result) Notice() notice.Notice {
	switch r.Status {
	case StatusWritten:
		if r.DryRun {
			return notice.Successf("would write %s", r.Rule)
		}
		return notice.Successf("wrote %s", r.Rule)
	case StatusSkippedMerge:
		return notice.Warningf("kept existing value of %s (merge)", r.Rule.To).WithCode(notice.CodeMergeKept)
	default:
		return notice.Errorf("skipped %s: %s", r.Rule, r.Message).WithCode(notice.CodeRuleSkipped)
	}
}

// Report is what one Map call produced.
type Report struct {
	SourceID int64           `json:"source_id"`
	DestID   int64           `json:"dest_id"`
	Results  []Result        `json:"results"`
	Notices  []notice.Notice `json:"notices"`
}

// Count returns how many results have the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

func (r *Report) String() string {
	return fmt.Sprintf("entity %d -> %d: %d written, %d kept, %d failed",
		r.SourceID, r.DestID, r.Count(StatusWritten), r.Count(StatusSkippedMerge), r.Count(StatusSkippedError))
}
