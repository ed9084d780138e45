package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/httpapi/response"
	domainerrors "github.com/shopfloor-ops/shopcore/internal/pkg/errors"
	"github.com/shopfloor-ops/shopcore/internal/platform/ctxutil"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
	"github.com/shopfloor-ops/shopcore/internal/repos"
)

type SchedulesHandler struct {
	db            *gorm.DB
	scheduleRuns  repos.ScheduleRunRepo
	scheduleItems repos.ScheduleItemRepo
	jobs          repos.JobRepo
}

func NewSchedulesHandler(db *gorm.DB, scheduleRuns repos.ScheduleRunRepo, scheduleItems repos.ScheduleItemRepo, jobs repos.JobRepo) *SchedulesHandler {
	return &SchedulesHandler{db: db, scheduleRuns: scheduleRuns, scheduleItems: scheduleItems, jobs: jobs}
}

type createScheduleRequest struct {
	HorizonStart    time.Time `json:"horizon_start" binding:"required"`
	HorizonEnd      time.Time `json:"horizon_end" binding:"required"`
	Trigger         string    `json:"trigger"`
	TimeLimitSecond int       `json:"time_limit_seconds"`
}

// POST /v1/schedules — creates the ScheduleRun row and enqueues its
// schedule_run job in one transaction (spec.md §6), so a crash between
// the two can never strand a run with no job behind it.
func (h *SchedulesHandler) Create(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}

	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if !req.HorizonStart.Before(req.HorizonEnd) {
		response.Error(c, http.StatusBadRequest, "invalid_horizon", errors.New("horizon_start must be before horizon_end"))
		return
	}
	if req.Trigger == "" {
		req.Trigger = "manual"
	}

	var (
		run *domain.ScheduleRun
		job *domain.Job
	)
	err := h.db.Transaction(func(tx *gorm.DB) error {
		dc := dbctx.Context{Ctx: c.Request.Context(), Tx: tx}

		run = &domain.ScheduleRun{
			ID:           uuid.New(),
			OrgID:        rd.OrgID,
			HorizonStart: req.HorizonStart,
			HorizonEnd:   req.HorizonEnd,
			Status:       domain.ScheduleRunQueued,
			Trigger:      req.Trigger,
			CreatedBy:    &rd.UserID,
		}
		if err := h.scheduleRuns.Create(dc, run); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]interface{}{
			"schedule_run_id":    run.ID,
			"org_id":             rd.OrgID,
			"horizon_start":      req.HorizonStart,
			"horizon_end":        req.HorizonEnd,
			"time_limit_seconds": req.TimeLimitSecond,
		})
		if err != nil {
			return err
		}

		// schedule_run jobs default to max_attempts=1 so handler logic
		// errors surface immediately rather than retry silently
		// (spec.md §7).
		job, err = h.jobs.Enqueue(dc, rd.OrgID, "schedule_run", payload, nil, 1)
		return err
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "create_schedule_failed", err)
		return
	}

	response.Created(c, gin.H{"id": run.ID, "status": run.Status, "job_id": job.ID})
}

// GET /v1/schedules/:id
func (h *SchedulesHandler) Get(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	run, err := h.scheduleRuns.Get(dbctxFromGin(c), rd.OrgID, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "schedule_not_found", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "get_schedule_failed", err)
		return
	}
	response.OK(c, gin.H{"schedule_run": run})
}

// GET /v1/schedules/:id/items
func (h *SchedulesHandler) ListItems(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	// Confirm the run is this tenant's before listing items, so a
	// cross-tenant id reads as 404 rather than an empty items list.
	if _, err := h.scheduleRuns.Get(dbctxFromGin(c), rd.OrgID, id); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "schedule_not_found", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "get_schedule_failed", err)
		return
	}
	items, err := h.scheduleItems.ListForRun(dbctxFromGin(c), rd.OrgID, id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list_items_failed", err)
		return
	}
	response.OK(c, gin.H{"items": items})
}

// GET /v1/schedules
func (h *SchedulesHandler) List(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	limit, err := parseLimit(c, 50, 200)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	runs, err := h.scheduleRuns.List(dbctxFromGin(c), rd.OrgID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list_schedules_failed", err)
		return
	}
	response.OK(c, gin.H{"schedule_runs": runs})
}
