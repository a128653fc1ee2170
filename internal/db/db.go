// Package db provides a GORM-based database layer for Till.
// It uses the pure-Go SQLite driver so the binary stays cgo-free.
package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tillworks/till/internal/models"
)

// DB wraps the GORM database connection with Till-specific operations.
type DB struct {
	*gorm.DB
	path string
}

// Config holds database configuration options.
type Config struct {
	Path        string
	Debug       bool
	MaxIdleConn int
	MaxOpenConn int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		Debug:       false,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	}
}

// New creates a new database connection and runs migrations.
func New(cfg Config) (*DB, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	// DELETE journal mode: WAL has read-after-write visibility issues with
	// the pure-Go SQLite driver, and the sync engine depends on reading
	// its own writes between phases.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", cfg.Path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	wrapped := &DB{DB: db, path: cfg.Path}

	if err := wrapped.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := wrapped.seedSyncMeta(); err != nil {
		return nil, fmt.Errorf("seed sync meta: %w", err)
	}

	return wrapped, nil
}

// migrate runs GORM auto-migrations for all models.
func (db *DB) migrate() error {
	return db.AutoMigrate(
		&models.Business{},
		&models.Employee{},
		&models.Customer{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.RackAssignment{},
		&models.SyncMeta{},
	)
}

// seedSyncMeta inserts default sync metadata if not present.
func (db *DB) seedSyncMeta() error {
	defaults := []models.SyncMeta{
		{Key: models.SyncMetaLastFullSync, Value: ""},
		{Key: models.SyncMetaSchemaVersion, Value: "1"},
	}

	for _, meta := range defaults {
		result := db.Where("key = ?", meta.Key).FirstOrCreate(&meta)
		if result.Error != nil {
			return result.Error
		}
	}

	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction executes a function within a database transaction.
// The callback receives a *DB wrapper that uses the transaction.
func (db *DB) Transaction(fc func(tx *DB) error) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		wrappedTx := &DB{DB: tx, path: db.path}
		return fc(wrappedTx)
	})
}

// Stats holds aggregate record counts for the status display.
type Stats struct {
	Counts        map[string]int64
	Unsynced      int64
	DBSizeBytes   int64
	LastCollected time.Time
}

// GetStats returns aggregate statistics about the database.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{Counts: make(map[string]int64)}

	tables := map[string]interface{}{
		"businesses":       &models.Business{},
		"employees":        &models.Employee{},
		"customers":        &models.Customer{},
		"categories":       &models.Category{},
		"products":         &models.Product{},
		"orders":           &models.Order{},
		"rack_assignments": &models.RackAssignment{},
	}

	for name, model := range tables {
		var count int64
		if err := db.Model(model).Where("is_deleted = ?", false).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		stats.Counts[name] = count

		var unsynced int64
		if err := db.Model(model).
			Where("(is_deleted = ? AND is_local_only = ?) OR (is_deleted = ? AND remote_id <> '')",
				false, true, true).
			Count(&unsynced).Error; err != nil {
			return nil, fmt.Errorf("count unsynced %s: %w", name, err)
		}
		stats.Unsynced += unsynced
	}

	if info, err := os.Stat(db.path); err == nil {
		stats.DBSizeBytes = info.Size()
	}
	stats.LastCollected = time.Now()

	return stats, nil
}
