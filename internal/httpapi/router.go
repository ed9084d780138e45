// Package httpapi assembles the gin engine described in spec.md §6,
// grounded on the teacher's internal/http/router.go.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopfloor-ops/shopcore/internal/httpapi/handlers"
	"github.com/shopfloor-ops/shopcore/internal/httpapi/middleware"
	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
)

// RouterConfig bundles the handler set NewRouter wires into routes,
// the same shape as the teacher's RouterConfig.
type RouterConfig struct {
	Log       *logger.Logger
	Jobs      *handlers.JobsHandler
	Schedules *handlers.SchedulesHandler
	Events    *handlers.EventsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AttachRequestContext())
	r.Use(middleware.CORS())

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.Use(middleware.RequireAuth(cfg.Log))
	{
		adminOrDispatcher := middleware.RequireRole("admin", "dispatcher")

		v1.POST("/jobs", adminOrDispatcher, cfg.Jobs.Enqueue)
		v1.GET("/jobs/:id", cfg.Jobs.Get)
		v1.GET("/jobs", cfg.Jobs.List)

		v1.POST("/schedules", adminOrDispatcher, cfg.Schedules.Create)
		v1.GET("/schedules/:id", cfg.Schedules.Get)
		v1.GET("/schedules/:id/items", cfg.Schedules.ListItems)
		v1.GET("/schedules", cfg.Schedules.List)

		v1.GET("/events", cfg.Events.Stream)
	}

	return r
}
