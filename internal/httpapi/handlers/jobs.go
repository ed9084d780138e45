// Package handlers implements the HTTP surface of spec.md §6, grounded
// on the teacher's internal/http/handlers package.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopfloor-ops/shopcore/internal/httpapi/response"
	"github.com/shopfloor-ops/shopcore/internal/jobs/registry"
	domainerrors "github.com/shopfloor-ops/shopcore/internal/pkg/errors"
	"github.com/shopfloor-ops/shopcore/internal/platform/ctxutil"
	"github.com/shopfloor-ops/shopcore/internal/repos"
)

type JobsHandler struct {
	repo repos.JobRepo
	reg  *registry.Registry
}

func NewJobsHandler(repo repos.JobRepo, reg *registry.Registry) *JobsHandler {
	return &JobsHandler{repo: repo, reg: reg}
}

type enqueueJobRequest struct {
	Type        string          `json:"type" binding:"required"`
	Payload     json.RawMessage `json:"payload"`
	MaxAttempts int             `json:"max_attempts"`
}

// POST /v1/jobs
func (h *JobsHandler) Enqueue(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}

	var req enqueueJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if !h.reg.Known(req.Type) {
		response.Error(c, http.StatusBadRequest, "unknown_job_type", domainerrors.ErrUnknownJobType)
		return
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}
	if maxAttempts < 1 || maxAttempts > 10 {
		response.Error(c, http.StatusBadRequest, "invalid_max_attempts", errors.New("max_attempts must be in [1,10]"))
		return
	}
	payload := req.Payload
	if payload == nil {
		payload = json.RawMessage("{}")
	}

	job, err := h.repo.Enqueue(dbctxFromGin(c), rd.OrgID, req.Type, payload, nil, maxAttempts)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "enqueue_failed", err)
		return
	}
	response.Created(c, gin.H{"job": job})
}

// GET /v1/jobs/:id
func (h *JobsHandler) Get(c *gin.Context) {
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
	job, err := h.repo.Get(dbctxFromGin(c), rd.OrgID, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "job_not_found", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "get_job_failed", err)
		return
	}
	response.OK(c, gin.H{"job": job})
}

// GET /v1/jobs
func (h *JobsHandler) List(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	limit, err := parseLimit(c, 100, 1000)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	var statusPtr, typePtr *string
	if s := c.Query("status"); s != "" {
		statusPtr = &s
	}
	if t := c.Query("type"); t != "" {
		typePtr = &t
	}
	jobs, err := h.repo.List(dbctxFromGin(c), rd.OrgID, statusPtr, typePtr, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list_jobs_failed", err)
		return
	}
	response.OK(c, gin.H{"jobs": jobs})
}

func parseLimit(c *gin.Context, def, max int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	if n < 1 || n > max {
		return 0, errors.New("limit out of range")
	}
	return n, nil
}
