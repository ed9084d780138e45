// Package db wires the GORM connection used by every repo.
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/envutil"
	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the relational store. DATABASE_URL wins if set; otherwise
// the decomposed POSTGRES_* variables are assembled, matching the
// teacher's internal/db/postgres.go fallback shape. Setting
// SQLITE_PATH instead runs against an embedded sqlite file — used by
// this repo's own tests and by local development without a Postgres
// instance.
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "db.Service")

	if path := envutil.String("SQLITE_PATH", ""); path != "" {
		gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: quietGormLogger()})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &Service{db: gdb, log: serviceLog}, nil
	}

	dsn := envutil.String("DATABASE_URL", "")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			envutil.String("POSTGRES_USER", "postgres"),
			envutil.String("POSTGRES_PASSWORD", ""),
			envutil.String("POSTGRES_HOST", "localhost"),
			envutil.String("POSTGRES_PORT", "5432"),
			envutil.String("POSTGRES_NAME", "shopcore"),
		)
	}

	serviceLog.Info("connecting to postgres")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: quietGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Warn("uuid-ossp extension not enabled", "error", err)
	}

	return &Service{db: gdb, log: serviceLog}, nil
}

// quietGormLogger mirrors the teacher's tuned GORM logger: record-not-
// found is expected constantly by a polling dispatcher and must not
// spam logs.
func quietGormLogger() gormlogger.Interface {
	return gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) AutoMigrate() error {
	s.log.Info("auto-migrating tables")
	return s.db.AutoMigrate(
		&domain.Job{},
		&domain.ScheduleRun{},
		&domain.Task{},
		&domain.Technician{},
		&domain.TechnicianSkill{},
		&domain.Bay{},
		&domain.WorkOrder{},
		&domain.ScheduleItem{},
		&domain.AuditLog{},
	)
}
