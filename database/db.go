package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/krau/SaveLink-Bot/config"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

var db *gorm.DB

func Open(ctx context.Context, path string) (*gorm.DB, error) {
	logger := log.FromContext(ctx)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	gdb, err := gorm.Open(GetDialect(path), &gorm.Config{
		Logger: glogger.New(logger, glogger.Config{
			Colorful:                  true,
			SlowThreshold:             time.Second * 5,
			LogLevel:                  glogger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(&User{}, &DailyUsage{}, &Settings{}); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return gdb, nil
}

// Init opens the configured database and exits the process when it is unusable.
func Init(ctx context.Context) *Store {
	logger := log.FromContext(ctx)
	var err error
	db, err = Open(ctx, config.C().DB.Path)
	if err != nil {
		logger.Fatal("Failed to init database", "error", err)
	}
	logger.Info("Database initialized")
	return NewStore(db)
}

func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
