package models

import "time"

// Task statuses.
const (
	StatusBacklog    = "Backlog"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusOnHold     = "On Hold"
	StatusCancelled  = "Cancelled"
)

// Pipeline stages, in funnel order.
const (
	StageBacklog       = "Backlog"
	StageLead          = "Lead"
	StageContacted     = "Contacted"
	StageAppointment   = "Appointment"
	StageOffer         = "Offer"
	StageUnderContract = "Under Contract"
	StageClosed        = "Closed"
)

// TaskStatuses lists valid task statuses in display order.
var TaskStatuses = []string{StatusBacklog, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled}

// PipelineStages lists valid pipeline stages in funnel order.
var PipelineStages = []string{StageBacklog, StageLead, StageContacted, StageAppointment, StageOffer, StageUnderContract, StageClosed}

// Task is a single row of the team's task tracker.
type Task struct {
	ID            string `gorm:"primaryKey;size:36"`
	Seq           int64  `gorm:"not null;index"`
	Title         string `gorm:"not null"`
	Type          string `gorm:"size:32"`
	Assignee      string `gorm:"size:64;index"`
	Status        string `gorm:"size:16;default:Backlog;index"`
	PipelineStage string `gorm:"size:16;default:Backlog"`
	Due           *time.Time
	Notes         string `gorm:"type:text"`
	CreatedAt     time.Time
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool { return contains(TaskStatuses, s) }

// ValidPipelineStage reports whether s is a known pipeline stage.
func ValidPipelineStage(s string) bool { return contains(PipelineStages, s) }

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
