package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/pkg/logger"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	Health(ctx context.Context) map[string]string

	// Close terminates the database connection.
	Close() error

	// DB returns the underlying GORM database instance.
	DB() *gorm.DB
}

type service struct {
	db *gorm.DB
}

// GormWriter forwards GORM's SQL log to the query logger.
type GormWriter struct{}

func (w *GormWriter) Printf(format string, args ...interface{}) {
	logger.QueryLogger.Info(fmt.Sprintf(format, args...))
}

// Open connects to postgres and migrates the schema.
func Open(dsn string) (Service, error) {
	logger.AppLogger.Info("Attempting database connection")

	queryLogger := gormLogger.New(
		&GormWriter{},
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: queryLogger, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.AppLogger.Info("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &service{db: db}, nil
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB) error {
	logger.AppLogger.Info("Starting database migration")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.AccessToken{},
		&domain.Survey{},
		&domain.Question{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.AppLogger.Info("Database migration completed successfully")
	return nil
}

// DB returns the underlying GORM database instance.
func (s *service) DB() *gorm.DB {
	return s.db
}

func (s *service) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		logger.AppLogger.Error("Database health check failed - cannot get DB instance", zap.Error(err))
		return stats
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		logger.AppLogger.Error("Database health check failed - ping failed", zap.Error(err))
		return stats
	}

	dbStats := sqlDB.Stats()
	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)
	stats["wait_count"] = fmt.Sprintf("%d", dbStats.WaitCount)
	return stats
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	logger.AppLogger.Info("Disconnecting from database")
	return sqlDB.Close()
}

// New wraps an existing connection, as used by tests.
func New(db *gorm.DB) Service {
	return &service{db: db}
}
