package task

import (
	"fmt"

	"github.com/zulandar/teamdesk/internal/apperr"
	"github.com/zulandar/teamdesk/internal/models"
	"go.uber.org/zap"
)

// Bulk action kinds.
const (
	ActionSetStatus = "set_status"
	ActionAssign    = "assign"
	ActionDelete    = "delete"
)

// BulkAction is one operation applied to a selection of tasks.
type BulkAction struct {
	Kind  string
	Value string
}

// SetStatus moves every selected task to status.
func SetStatus(status string) BulkAction { return BulkAction{Kind: ActionSetStatus, Value: status} }

// Assign gives every selected task to assignee.
func Assign(assignee string) BulkAction { return BulkAction{Kind: ActionAssign, Value: assignee} }

// DeleteAll removes every selected task.
func DeleteAll() BulkAction { return BulkAction{Kind: ActionDelete} }

// BulkApply applies action to every id present in the table. Unknown ids and
// repeated ids are skipped silently; the only failures are an invalid action
// or a database error.
func (s *Store) BulkApply(ids []string, action BulkAction) error {
	switch action.Kind {
	case ActionSetStatus:
		if err := checkStatus(action.Value); err != nil {
			return err
		}
	case ActionAssign:
	case ActionDelete:
	default:
		return fmt.Errorf("task: %w: unknown bulk action %q", apperr.ErrValidation, action.Kind)
	}

	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}

	q := s.db.Model(&models.Task{}).Where("id IN ?", ids)
	var err error
	var affected int64
	switch action.Kind {
	case ActionSetStatus:
		res := q.Update("status", action.Value)
		err, affected = res.Error, res.RowsAffected
	case ActionAssign:
		res := q.Update("assignee", action.Value)
		err, affected = res.Error, res.RowsAffected
	case ActionDelete:
		res := s.db.Where("id IN ?", ids).Delete(&models.Task{})
		err, affected = res.Error, res.RowsAffected
	}
	if err != nil {
		return fmt.Errorf("task: bulk %s: %w", action.Kind, err)
	}

	s.logger.Info("bulk action applied",
		zap.String("action", action.Kind),
		zap.Int("selected", len(ids)),
		zap.Int64("affected", affected))
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
