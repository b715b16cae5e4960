package task

import (
	"fmt"

	"github.com/zulandar/teamdesk/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImportRows replaces the whole table with rows, in order. Rows without an ID,
// or repeating an earlier row's ID, get a fresh one. Out-of-range enums fall
// back to Backlog and a zero CreatedAt becomes now. Nothing changes if any
// write fails.
func (s *Store) ImportRows(rows []models.Task) error {
	prepared := s.prepare(rows)
	if err := s.replaceAll(prepared); err != nil {
		return fmt.Errorf("task: import: %w", err)
	}
	s.logger.Info("tasks imported", zap.Int("rows", len(prepared)))
	return nil
}

// ResetToDemo replaces the whole table with the fixed demo task set.
func (s *Store) ResetToDemo() error {
	if err := s.replaceAll(s.prepare(DemoTasks())); err != nil {
		return fmt.Errorf("task: reset to demo: %w", err)
	}
	return nil
}

func (s *Store) prepare(rows []models.Task) []models.Task {
	now := s.now()
	seen := make(map[string]bool, len(rows))
	out := make([]models.Task, len(rows))
	for i, r := range rows {
		if r.ID == "" || seen[r.ID] {
			r.ID = NewID()
		}
		seen[r.ID] = true
		r.Seq = int64(i + 1)
		if !models.ValidStatus(r.Status) {
			r.Status = models.StatusBacklog
		}
		if !models.ValidPipelineStage(r.PipelineStage) {
			r.PipelineStage = models.StageBacklog
		}
		r.Due = truncateDate(r.Due)
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		out[i] = r
	}
	return out
}

func (s *Store) replaceAll(rows []models.Task) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, 100).Error
	})
}
