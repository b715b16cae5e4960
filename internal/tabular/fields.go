// Package tabular maps session tables to and from flat CSV rows.
package tabular

import (
	"strings"
	"time"

	"github.com/zulandar/teamdesk/internal/models"
)

// Kind is how a column's text is coerced.
type Kind int

const (
	KindString Kind = iota
	KindEnum
	KindDate
	KindTimestamp
)

// Layouts used when rendering and parsing.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = time.RFC3339
	DateTimeLayout  = "2006-01-02 15:04"
)

// FieldSpec declares one column of a table: its name, how its text is
// coerced, and the value used when the text is missing or unreadable.
type FieldSpec struct {
	Column  string
	Kind    Kind
	Default string
	Allowed []string // KindEnum only
}

// TaskFields is the task table's column order.
var TaskFields = []FieldSpec{
	{Column: "task_id", Kind: KindString},
	{Column: "title", Kind: KindString},
	{Column: "type", Kind: KindString},
	{Column: "assignee", Kind: KindString},
	{Column: "status", Kind: KindEnum, Default: models.StatusBacklog, Allowed: models.TaskStatuses},
	{Column: "pipeline_stage", Kind: KindEnum, Default: models.StageBacklog, Allowed: models.PipelineStages},
	{Column: "due", Kind: KindDate},
	{Column: "created", Kind: KindTimestamp},
	{Column: "notes", Kind: KindString},
}

// Value is a coerced cell.
type Value struct {
	Text string
	Time *time.Time
}

// coerce converts raw cell text for one column. It never fails: text that
// does not fit the column yields its default, and unreadable dates yield
// a nil time.
func coerce(spec FieldSpec, raw string) Value {
	raw = strings.TrimSpace(raw)
	switch spec.Kind {
	case KindEnum:
		for _, a := range spec.Allowed {
			if strings.EqualFold(a, raw) {
				return Value{Text: a}
			}
		}
		return Value{Text: spec.Default}
	case KindDate:
		return Value{Time: parseTime(raw, DateLayout, TimestampLayout, DateTimeLayout)}
	case KindTimestamp:
		return Value{Time: parseTime(raw, TimestampLayout, DateTimeLayout, "2006-01-02 15:04:05", DateLayout)}
	default:
		if raw == "" {
			return Value{Text: spec.Default}
		}
		return Value{Text: raw}
	}
}

func parseTime(raw string, layouts ...string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// indexHeader maps each known column to its position in header. Unknown
// columns are ignored.
func indexHeader(specs []FieldSpec, header []string) map[string]int {
	known := make(map[string]bool, len(specs))
	for _, s := range specs {
		known[s.Column] = true
	}
	idx := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if known[h] {
			if _, dup := idx[h]; !dup {
				idx[h] = i
			}
		}
	}
	return idx
}
