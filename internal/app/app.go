// Package app wires the process: db, repos, job handler registry,
// dispatchers, audit sink, realtime fan-out, tracing, and the HTTP
// router. Grounded on the teacher's internal/app/app.go.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/audit"
	"github.com/shopfloor-ops/shopcore/internal/db"
	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/httpapi"
	"github.com/shopfloor-ops/shopcore/internal/httpapi/handlers"
	"github.com/shopfloor-ops/shopcore/internal/jobs/dispatcher"
	"github.com/shopfloor-ops/shopcore/internal/jobs/handlers/aienrich"
	"github.com/shopfloor-ops/shopcore/internal/jobs/handlers/schedulerun"
	"github.com/shopfloor-ops/shopcore/internal/jobs/registry"
	"github.com/shopfloor-ops/shopcore/internal/observability"
	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
	"github.com/shopfloor-ops/shopcore/internal/realtime"
	"github.com/shopfloor-ops/shopcore/internal/repos"
	"github.com/shopfloor-ops/shopcore/internal/scheduler"
)

type App struct {
	Log         *logger.Logger
	DB          *gorm.DB
	Cfg         Config
	Router      *gin.Engine
	Dispatchers []*dispatcher.Dispatcher
	RealtimeHub *realtime.Hub
	RealtimeBus realtime.Bus

	otelShutdown  func(context.Context) error
	cancel        context.CancelFunc
	cancelForward context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	svc, err := db.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := svc.AutoMigrate(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	gdb := svc.DB()

	otelShutdown := observability.Init(context.Background(), log, cfg.OTelServiceName)

	hub := realtime.NewHub(log)
	bus, err := realtime.NewBus(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init realtime bus: %w", err)
	}
	forwardCtx, cancelForward := context.WithCancel(context.Background())
	if err := bus.StartForwarder(forwardCtx, hub.Publish); err != nil {
		cancelForward()
		log.Sync()
		return nil, fmt.Errorf("start realtime forwarder: %w", err)
	}

	jobRepo := repos.NewJobRepo(gdb)
	scheduleRunRepo := repos.NewScheduleRunRepo(gdb)
	scheduleItemRepo := repos.NewScheduleItemRepo(gdb)
	taskRepo := repos.NewTaskRepo(gdb)
	technicianRepo := repos.NewTechnicianRepo(gdb)
	bayRepo := repos.NewBayRepo(gdb)
	workOrderRepo := repos.NewWorkOrderRepo(gdb)
	auditRepo := repos.NewAuditRepo(gdb)

	auditSink := audit.NewSink(auditRepo, hub, bus, log)

	reg := registry.New()
	aiEnrichHandler := aienrich.New(log, auditSink)
	reg.Register(aienrich.JobType, aiEnrichHandler.Handle)

	loader := scheduler.NewLoader(taskRepo, technicianRepo, bayRepo, workOrderRepo)
	persister := scheduler.NewPersister(gdb, scheduleRunRepo, scheduleItemRepo, taskRepo)
	scheduleRunHandler := schedulerun.New(log, scheduleRunRepo, loader, persister, auditSink)
	reg.Register(schedulerun.JobType, scheduleRunHandler.Handle)

	dispatchers := make([]*dispatcher.Dispatcher, 0, cfg.WorkerCount)
	for i := 0; i < cfg.WorkerCount; i++ {
		workerID := cfg.WorkerID
		if cfg.WorkerCount > 1 {
			workerID = fmt.Sprintf("%s-%d", cfg.WorkerID, i)
		}
		dispatchers = append(dispatchers, dispatcher.New(
			jobRepo, reg, log, workerID,
			dispatcher.WithPollInterval(cfg.PollInterval),
			dispatcher.WithAudit(func(ctx context.Context, job *domain.Job, event string, detail map[string]interface{}) {
				auditSink.Record(ctx, job.OrgID, job.ID, "job", event, detail)
			}),
		))
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Log:       log,
		Jobs:      handlers.NewJobsHandler(jobRepo, reg),
		Schedules: handlers.NewSchedulesHandler(gdb, scheduleRunRepo, scheduleItemRepo, jobRepo),
		Events:    handlers.NewEventsHandler(hub),
	})

	return &App{
		Log:           log,
		DB:            gdb,
		Cfg:           cfg,
		Router:        router,
		Dispatchers:   dispatchers,
		RealtimeHub:   hub,
		RealtimeBus:   bus,
		otelShutdown:  otelShutdown,
		cancelForward: cancelForward,
	}, nil
}

// Start launches the dispatcher pool in the background. Cancelled by
// Close.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	go func() {
		if err := dispatcher.RunGroup(runCtx, a.Dispatchers); err != nil {
			a.Log.Error("dispatcher group exited", "error", err)
		}
	}()
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	if addr == "" {
		addr = a.Cfg.HTTPAddr
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.cancelForward != nil {
		a.cancelForward()
		a.cancelForward = nil
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.RealtimeBus != nil {
		_ = a.RealtimeBus.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
