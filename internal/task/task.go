// Package task provides the session task table: CRUD, bulk actions, import
// and the demo seed.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/teamdesk/internal/apperr"
	"github.com/zulandar/teamdesk/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DateLayout is the format for due dates in forms and files.
const DateLayout = "2006-01-02"

// Store is the task table of one session.
type Store struct {
	db     *gorm.DB
	now    func() time.Time
	logger *zap.Logger
}

// Opts holds optional collaborators for a Store.
type Opts struct {
	Now    func() time.Time
	Logger *zap.Logger
}

// CreateOpts holds parameters for creating a new task.
type CreateOpts struct {
	Title         string
	Type          string
	Assignee      string
	Status        string // defaults to Backlog
	PipelineStage string // defaults to Backlog
	Due           *time.Time
	Notes         string
}

// updatableColumns maps accepted Update keys to their column names.
var updatableColumns = map[string]string{
	"title":          "title",
	"type":           "type",
	"assignee":       "assignee",
	"status":         "status",
	"pipeline_stage": "pipeline_stage",
	"due":            "due",
	"notes":          "notes",
}

// immutableFields may never appear in an Update.
var immutableFields = map[string]bool{
	"task_id":    true,
	"id":         true,
	"created":    true,
	"created_at": true,
}

// NewStore wraps db as a task table.
func NewStore(db *gorm.DB, opts Opts) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("task: db is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{db: db, now: opts.Now, logger: opts.Logger}, nil
}

// NewID returns a fresh task ID.
func NewID() string {
	return uuid.NewString()
}

// Create adds a task at the end of the table.
func (s *Store) Create(opts CreateOpts) (*models.Task, error) {
	opts.Title = strings.TrimSpace(opts.Title)
	if opts.Title == "" {
		return nil, fmt.Errorf("task: %w: title is required", apperr.ErrValidation)
	}
	if opts.Status == "" {
		opts.Status = models.StatusBacklog
	}
	if opts.PipelineStage == "" {
		opts.PipelineStage = models.StageBacklog
	}
	if err := checkStatus(opts.Status); err != nil {
		return nil, err
	}
	if err := checkStage(opts.PipelineStage); err != nil {
		return nil, err
	}

	seq, err := s.nextSeq()
	if err != nil {
		return nil, err
	}

	t := models.Task{
		ID:            NewID(),
		Seq:           seq,
		Title:         opts.Title,
		Type:          opts.Type,
		Assignee:      opts.Assignee,
		Status:        opts.Status,
		PipelineStage: opts.PipelineStage,
		Due:           truncateDate(opts.Due),
		Notes:         opts.Notes,
		CreatedAt:     s.now(),
	}
	if err := s.db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("task: create: %w", err)
	}
	return &t, nil
}

// Get retrieves a task by ID.
func (s *Store) Get(id string) (*models.Task, error) {
	var t models.Task
	if err := s.db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task: %w: %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("task: get %s: %w", id, err)
	}
	return &t, nil
}

// All returns every task in table order.
func (s *Store) All() ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.Order("seq ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list: %w", err)
	}
	return tasks, nil
}

// Count returns the number of tasks.
func (s *Store) Count() (int, error) {
	var n int64
	if err := s.db.Model(&models.Task{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("task: count: %w", err)
	}
	return int(n), nil
}

// Assignees returns the distinct non-empty assignees, sorted.
func (s *Store) Assignees() ([]string, error) {
	var out []string
	if err := s.db.Model(&models.Task{}).
		Where("assignee <> ?", "").
		Distinct("assignee").Order("assignee ASC").
		Pluck("assignee", &out).Error; err != nil {
		return nil, fmt.Errorf("task: assignees: %w", err)
	}
	return out, nil
}

// Update overwrites only the supplied fields. Keys are the tabular column
// names (title, type, assignee, status, pipeline_stage, due, notes).
func (s *Store) Update(id string, changes map[string]interface{}) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	updates := make(map[string]interface{}, len(changes))
	for key, val := range changes {
		if immutableFields[key] {
			return fmt.Errorf("task: %w: field %q cannot be changed", apperr.ErrValidation, key)
		}
		col, ok := updatableColumns[key]
		if !ok {
			return fmt.Errorf("task: %w: unknown field %q", apperr.ErrValidation, key)
		}
		v, err := normalizeField(key, val)
		if err != nil {
			return err
		}
		updates[col] = v
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("task: update %s: %w", id, err)
	}
	return nil
}

// Delete removes a task permanently.
func (s *Store) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Task{})
	if res.Error != nil {
		return fmt.Errorf("task: delete %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task: %w: %s", apperr.ErrNotFound, id)
	}
	return nil
}

// nextSeq returns the position after the last task.
func (s *Store) nextSeq() (int64, error) {
	var maxSeq int64
	if err := s.db.Model(&models.Task{}).
		Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
		return 0, fmt.Errorf("task: next sequence: %w", err)
	}
	return maxSeq + 1, nil
}

// normalizeField validates and converts one Update value.
func normalizeField(key string, val interface{}) (interface{}, error) {
	if key == "due" {
		return normalizeDue(val)
	}
	str, ok := val.(string)
	if !ok {
		return nil, fmt.Errorf("task: %w: field %q must be a string, got %T", apperr.ErrValidation, key, val)
	}
	switch key {
	case "title":
		str = strings.TrimSpace(str)
		if str == "" {
			return nil, fmt.Errorf("task: %w: title is required", apperr.ErrValidation)
		}
	case "status":
		if err := checkStatus(str); err != nil {
			return nil, err
		}
	case "pipeline_stage":
		if err := checkStage(str); err != nil {
			return nil, err
		}
	}
	return str, nil
}

func normalizeDue(val interface{}) (interface{}, error) {
	switch v := val.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return truncateDate(&v), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return truncateDate(v), nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, nil
		}
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("task: %w: due %q is not a YYYY-MM-DD date", apperr.ErrValidation, v)
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("task: %w: due has unsupported type %T", apperr.ErrValidation, val)
	}
}

// truncateDate drops the time of day, keeping the calendar date.
func truncateDate(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	y, m, d := t.Date()
	out := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &out
}

func checkStatus(s string) error {
	if !models.ValidStatus(s) {
		return fmt.Errorf("task: %w: invalid status %q; valid statuses: %v", apperr.ErrValidation, s, models.TaskStatuses)
	}
	return nil
}

func checkStage(s string) error {
	if !models.ValidPipelineStage(s) {
		return fmt.Errorf("task: %w: invalid pipeline stage %q; valid stages: %v", apperr.ErrValidation, s, models.PipelineStages)
	}
	return nil
}
