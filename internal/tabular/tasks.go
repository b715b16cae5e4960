package tabular

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/zulandar/teamdesk/internal/apperr"
	"github.com/zulandar/teamdesk/internal/models"
)

// TaskHeader returns the task export header.
func TaskHeader() []string {
	return columns(TaskFields)
}

// TaskRows renders tasks as flat rows in TaskFields order. Missing dates
// render as empty strings.
func TaskRows(tasks []models.Task) [][]string {
	rows := make([][]string, len(tasks))
	for i, t := range tasks {
		rows[i] = []string{
			t.ID,
			t.Title,
			t.Type,
			t.Assignee,
			t.Status,
			t.PipelineStage,
			formatTime(t.Due, DateLayout),
			formatTime(&t.CreatedAt, TimestampLayout),
			t.Notes,
		}
	}
	return rows
}

// ParseTasks maps rows under header into task records. Columns outside
// TaskFields are ignored; cells are coerced by their FieldSpec.
func ParseTasks(header []string, rows [][]string) []models.Task {
	idx := indexHeader(TaskFields, header)
	out := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		cell := func(spec FieldSpec) Value {
			i, ok := idx[spec.Column]
			if !ok || i >= len(row) {
				return coerce(spec, "")
			}
			return coerce(spec, row[i])
		}

		var t models.Task
		for _, spec := range TaskFields {
			v := cell(spec)
			switch spec.Column {
			case "task_id":
				t.ID = v.Text
			case "title":
				t.Title = v.Text
			case "type":
				t.Type = v.Text
			case "assignee":
				t.Assignee = v.Text
			case "status":
				t.Status = v.Text
			case "pipeline_stage":
				t.PipelineStage = v.Text
			case "due":
				t.Due = v.Time
			case "created":
				if v.Time != nil {
					t.CreatedAt = *v.Time
				}
			case "notes":
				t.Notes = v.Text
			}
		}
		out = append(out, t)
	}
	return out
}

// ReadTaskCSV parses a CSV task file. A file that is not CSV, or whose
// header names none of the task columns, fails with ErrImport.
func ReadTaskCSV(r io.Reader) ([]models.Task, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tabular: %w: %v", apperr.ErrImport, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tabular: %w: file is empty", apperr.ErrImport)
	}
	header := records[0]
	if len(indexHeader(TaskFields, header)) == 0 {
		return nil, fmt.Errorf("tabular: %w: header has none of the task columns %v", apperr.ErrImport, TaskHeader())
	}
	return ParseTasks(header, records[1:]), nil
}

// WriteTaskCSV writes tasks as CSV with a header row.
func WriteTaskCSV(w io.Writer, tasks []models.Task) error {
	return WriteCSV(w, TaskHeader(), TaskRows(tasks))
}
