package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"today-i-need/internal/model"
)

// DefaultDSN is the database file used when DATABASE_URL is empty.
const DefaultDSN = "today_i_need.db"

// schema lists every table the tracker owns, parents before children.
// completions carries a unique (task_id, date) index so a task can have at
// most one completion per calendar date, and cascades when its task row goes.
var schema = []any{
	&model.User{},
	&model.Task{},
	&model.Completion{},
}

// Open opens the tracker's SQLite database with foreign keys enforced and
// brings the schema up to date.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(withForeignKeys(dsn)), &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(schema...); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	log.Printf("[info] database ready at %s", dsn)
	return db, nil
}

// newGormLogger only surfaces slow queries and real errors; lookups by id
// prefix miss routinely.
func newGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// withForeignKeys turns on SQLite foreign key enforcement for the
// completions -> tasks cascade.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// ensureDirForSQLite creates the parent dir of a file DSN.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
