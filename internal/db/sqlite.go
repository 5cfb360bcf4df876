package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"solarops/fieldstore/internal/apperrors"
)

// Open opens or creates the local sqlite store. The handle is passed
// explicitly to every component; there is no package-level singleton.
// Writes serialize on the single connection, reads proceed against the
// last committed state (WAL).
func Open(path string) (*gorm.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store at %s: %v: %w", path, err, apperrors.ErrStoreUnavailable)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite connection: %v: %w", err, apperrors.ErrStoreUnavailable)
	}
	// One writer at a time; the store is single-process by design.
	sqlDB.SetMaxOpenConns(1)

	return gdb, nil
}
