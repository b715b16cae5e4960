package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN builds a DSN for a named in-memory sqlite database. Connections
// using the same name share one database; different names never see each
// other's tables.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
}

// OpenMemory opens a GORM connection to a fresh in-memory database named
// after the owning session. The pool is pinned to a single connection so the
// database lives exactly as long as the returned handle.
func OpenMemory(name string) (*gorm.DB, error) {
	if name == "" {
		return nil, fmt.Errorf("db: database name is required")
	}
	gdb, err := gorm.Open(sqlite.Open(MemoryDSN(name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open memory database %s: %w", name, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("db: pool for %s: %w", name, err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)
	return gdb, nil
}

// Close releases the underlying connection. For in-memory databases this
// discards every table.
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("db: close: %w", err)
	}
	return sqlDB.Close()
}
