package db

import (
	"fmt"

	"github.com/zulandar/teamdesk/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Task{},
		&models.Call{},
		&models.BPO{},
		&models.VOP{},
		&models.ChatMessage{},
	}
}

// AutoMigrate creates or updates all session tables.
func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// OpenSession opens a named in-memory database and migrates every table.
func OpenSession(name string) (*gorm.DB, error) {
	gdb, err := OpenMemory(name)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(gdb); err != nil {
		Close(gdb)
		return nil, err
	}
	return gdb, nil
}
