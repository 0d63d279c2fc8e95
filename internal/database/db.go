package database

import (
	"fmt"
	"time"

	"github.com/dootask/asset-hub-sub002/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Models lists every table the service owns, in migration order
func Models() []interface{} {
	return []interface{}{
		&model.ActionConfig{},
		&model.Role{},
		&model.Asset{},
		&model.Operation{},
		&model.Consumable{},
		&model.ConsumableOperation{},
		&model.ApprovalRequest{},
		&model.BorrowRecord{},
		&model.AuditLog{},
	}
}

// NewConnection opens the database for driver ("postgres" or "sqlite") and migrates the models
func NewConnection(driver, dsn string, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(log)})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// sqlite serializes writers; a single connection keeps transactions from tripping SQLITE_BUSY
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %w", err)
	}

	return db, nil
}

func newGormLogger(log zerolog.Logger) gormlogger.Interface {
	return gormlogger.New(zerologWriter{log: log}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// zerologWriter adapts gorm's printf logger onto zerolog
type zerologWriter struct {
	log zerolog.Logger
}

func (w zerologWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Str("component", "gorm").Msgf(format, args...)
}
