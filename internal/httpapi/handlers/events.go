package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopfloor-ops/shopcore/internal/httpapi/response"
	"github.com/shopfloor-ops/shopcore/internal/platform/ctxutil"
	"github.com/shopfloor-ops/shopcore/internal/realtime"
)

// EventsHandler serves the dashboard's SSE stream, grounded on the
// teacher's internal/http/handlers/realtime.go RealtimeHandler.
type EventsHandler struct {
	hub *realtime.Hub
}

func NewEventsHandler(hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// GET /v1/events — streams every audit event for the caller's org
// (spec.md §4.9: job/schedule-run state transitions, fanned out
// live to dashboards).
func (h *EventsHandler) Stream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}

	sub := h.hub.Subscribe(rd.OrgID)
	defer h.hub.Unsubscribe(sub)

	h.hub.ServeHTTP(c.Writer, c.Request, sub)
}
