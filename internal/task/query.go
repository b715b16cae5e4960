package task

import (
	"strings"

	"github.com/zulandar/teamdesk/internal/models"
)

// Any is the filter value that imposes no constraint.
const Any = "All"

// Unassigned labels tasks with no assignee in CountByAssignee.
const Unassigned = "Unassigned"

// Criteria narrows a task list. Empty or Any fields match everything.
type Criteria struct {
	Assignee string
	Status   string
	Type     string
	Text     string // case-insensitive substring of title or notes
}

// Summary holds the aggregate counts shown above the task table.
type Summary struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByStage    map[string]int `json:"by_pipeline_stage"`
	ByAssignee map[string]int `json:"by_assignee"`
}

// Filter returns the tasks matching every supplied criterion, preserving
// order. It never modifies tasks.
func Filter(tasks []models.Task, c Criteria) []models.Task {
	text := strings.ToLower(strings.TrimSpace(c.Text))
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matches(c.Assignee, t.Assignee) || !matches(c.Status, t.Status) || !matches(c.Type, t.Type) {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(t.Title), text) &&
			!strings.Contains(strings.ToLower(t.Notes), text) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matches(want, got string) bool {
	return want == "" || want == Any || want == got
}

// CountByStatus counts tasks per status. Statuses with no tasks are omitted.
func CountByStatus(tasks []models.Task) map[string]int {
	return countBy(tasks, func(t models.Task) string { return t.Status })
}

// CountByPipelineStage counts tasks per pipeline stage.
func CountByPipelineStage(tasks []models.Task) map[string]int {
	return countBy(tasks, func(t models.Task) string { return t.PipelineStage })
}

// CountByAssignee counts tasks per assignee; tasks with no assignee are
// counted under Unassigned.
func CountByAssignee(tasks []models.Task) map[string]int {
	return countBy(tasks, func(t models.Task) string {
		if t.Assignee == "" {
			return Unassigned
		}
		return t.Assignee
	})
}

// Summarize computes every aggregate at once.
func Summarize(tasks []models.Task) Summary {
	return Summary{
		Total:      len(tasks),
		ByStatus:   CountByStatus(tasks),
		ByStage:    CountByPipelineStage(tasks),
		ByAssignee: CountByAssignee(tasks),
	}
}

func countBy(tasks []models.Task, key func(models.Task) string) map[string]int {
	out := make(map[string]int)
	for _, t := range tasks {
		out[key(t)]++
	}
	return out
}

// Filter returns the current tasks matching c.
func (s *Store) Filter(c Criteria) ([]models.Task, error) {
	tasks, err := s.All()
	if err != nil {
		return nil, err
	}
	return Filter(tasks, c), nil
}

// Summary returns the aggregate counts of the current table.
func (s *Store) Summary() (Summary, error) {
	tasks, err := s.All()
	if err != nil {
		return Summary{}, err
	}
	return Summarize(tasks), nil
}
