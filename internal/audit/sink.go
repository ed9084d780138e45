// Package audit is the append-only audit trail (spec.md §2: "audit
// records are emitted at every state boundary"). It has no analogue in
// the original worker, whose routers called a thin audit_service.py
// directly from each handler; this promotes that cross-cutting concern
// to its own collaborator so both the job dispatcher and the HTTP
// surface record through one path.
package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
	"github.com/shopfloor-ops/shopcore/internal/realtime"
	"github.com/shopfloor-ops/shopcore/internal/repos"
)

type Sink struct {
	repo repos.AuditRepo
	hub  *realtime.Hub
	bus  realtime.Bus
	log  *logger.Logger
}

func NewSink(repo repos.AuditRepo, hub *realtime.Hub, bus realtime.Bus, log *logger.Logger) *Sink {
	return &Sink{repo: repo, hub: hub, bus: bus, log: log.With("component", "audit.Sink")}
}

// Record appends one row to audit_log and best-effort publishes the
// same event to the realtime hub (local subscribers) and the bus
// (other processes, if configured). A publish failure never fails the
// caller's operation — audit and realtime fan-out are observability,
// not correctness, concerns.
func (s *Sink) Record(ctx context.Context, orgID, entityID uuid.UUID, entityType, event string, detail map[string]interface{}) {
	raw, err := json.Marshal(detail)
	if err != nil {
		s.log.Warn("failed to marshal audit detail", "error", err, "event", event)
		raw = []byte("null")
	}

	if err := s.repo.Append(dbctx.Context{Ctx: ctx}, orgID, entityID, entityType, event, datatypes.JSON(raw)); err != nil {
		s.log.Warn("failed to append audit row", "error", err, "event", event)
	}

	ev := realtime.Event{OrgID: orgID, EntityType: entityType, EntityID: entityID, Name: event, Detail: detail}
	s.hub.Publish(ev)
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.log.Debug("realtime bus publish failed", "error", err, "event", event)
	}
}
