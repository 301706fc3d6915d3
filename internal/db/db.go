package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned by First when no row matches.
var ErrNotFound = errors.New("record not found")

// Service is the data service every module talks to. It is built once in
// main and handed to each module's Init.
type Service struct {
	gdb *gorm.DB
}

// Connect opens the hosted Postgres at dsn. verbose turns on per-query SQL
// logging; slow queries are always logged.
func Connect(dsn string, verbose bool) (*Service, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	// Surfaces slow queries in the hosting platform's logs.
	lg := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  verbose,
		},
	)

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: lg,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sql.DB")
	}

	// Reasonable pool defaults for a single app instance against Supabase
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return New(gdb), nil
}

// New wraps an already opened gorm handle.
func New(gdb *gorm.DB) *Service {
	return &Service{gdb: gdb}
}

// Gorm exposes the underlying handle for migrations.
func (s *Service) Gorm() *gorm.DB { return s.gdb }

func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.gdb.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "failed to ping database")
}

func (s *Service) Close() error {
	sqlDB, err := s.gdb.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB")
	}
	return sqlDB.Close()
}
