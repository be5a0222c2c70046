package database

import (
	"context"
	"fmt"
	"strings"

	"taskdesk/taskdesk/config"
	"taskdesk/taskdesk/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

// Dialector picks the gorm driver named by cfg.DBDriver.
func Dialector(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres", "":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		sep := "?"
		if strings.Contains(cfg.DBPath, "?") {
			sep = "&"
		}
		return sqlite.Open(cfg.DBPath + sep + "_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func Setup(cfg config.Config) (*Database, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}

	gormConfig := &gorm.Config{
		Logger:            gormlogger.Default.LogMode(logLevel),
		PrepareStmt:       true,
		AllowGlobalUpdate: false,
		TranslateError:    true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully", "driver", dialector.Name())

	return &Database{DB: db}, nil
}

func (d *Database) Close() {
	if d.DB == nil {
		logger.Warn("Database connection is nil, nothing to close")
		return
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		logger.Error("Failed to get database connection", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database connection", "error", err)
	}
}

// Ping checks that the underlying connection pool can reach the server.
func (d *Database) Ping(ctx context.Context) error {
	if d.DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
