package app

import (
	"time"

	"github.com/shopfloor-ops/shopcore/internal/platform/envutil"
	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
)

// Config is the process's env-derived configuration (spec.md §6
// "Environment").
type Config struct {
	WorkerID         string
	WorkerCount      int
	PollInterval     time.Duration
	DefaultTimeLimit time.Duration
	HTTPAddr         string
	OTelServiceName  string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		WorkerID:         envutil.String("WORKER_ID", "worker-1"),
		WorkerCount:      envutil.Int("WORKER_CONCURRENCY", 1),
		PollInterval:     time.Duration(envutil.Int("POLL_INTERVAL_SECONDS", 2)) * time.Second,
		DefaultTimeLimit: time.Duration(envutil.Int("SOLVER_TIME_LIMIT_SECONDS", 30)) * time.Second,
		HTTPAddr:         ":" + envutil.String("PORT", "8080"),
		OTelServiceName:  envutil.String("OTEL_SERVICE_NAME", "shopcore"),
	}
}
