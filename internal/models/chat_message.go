package models

import "time"

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage stores one turn of a persona conversation. Seq 0 is always the
// persona's system instruction.
type ChatMessage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Persona   string `gorm:"size:64;not null;index:idx_persona_seq"`
	Seq       int    `gorm:"not null;index:idx_persona_seq"`
	Role      string `gorm:"size:16;not null"` // "system", "user", "assistant"
	Content   string `gorm:"type:text;not null"`
	Timestamp string `gorm:"size:19"`
	CreatedAt time.Time
}
