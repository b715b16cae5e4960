package models

import "time"

// Call outcomes.
var CallOutcomes = []string{
	"No answer",
	"Left voicemail",
	"Spoke - interested",
	"Spoke - not interested",
	"Callback later",
}

// VOP delivery states.
var VOPStatuses = []string{"Sent", "Delivered", "Opened", "Click", "Bounced", "Unverified"}

// Call is one entry in the cold-call log.
type Call struct {
	ID       string `gorm:"primaryKey;size:36"`
	Seq      int64  `gorm:"not null;index"`
	LeadName string `gorm:"size:128"`
	Phone    string `gorm:"size:32"`
	Agent    string `gorm:"size:64"`
	CalledAt time.Time
	Outcome  string `gorm:"size:32"`
	Notes    string `gorm:"type:text"`
}

// BPO is a broker price opinion recorded by an agent.
type BPO struct {
	ID              string `gorm:"primaryKey;size:36"`
	Seq             int64  `gorm:"not null;index"`
	PropertyAddress string `gorm:"size:256"`
	EstimatedValue  float64
	CompsSummary    string `gorm:"type:text"`
	Agent           string `gorm:"size:64"`
	Date            time.Time
	Notes           string `gorm:"type:text"`
}

// VOP tracks a single verification email.
type VOP struct {
	ID           string `gorm:"primaryKey;size:36"`
	Seq          int64  `gorm:"not null;index"`
	EmailSubject string `gorm:"size:256"`
	Recipient    string `gorm:"size:256"`
	SentDate     time.Time
	Status       string `gorm:"size:16"`
	Notes        string `gorm:"type:text"`
}

// ValidCallOutcome reports whether s is a known call outcome.
func ValidCallOutcome(s string) bool { return contains(CallOutcomes, s) }

// ValidVOPStatus reports whether s is a known VOP status.
func ValidVOPStatus(s string) bool { return contains(VOPStatuses, s) }
