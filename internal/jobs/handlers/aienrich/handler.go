// Package aienrich implements the ai_enrich job type. It is a stub in
// this repo for the same reason it is a stub in the original
// (handlers/ai_enrich.py): the LLM enrichment pipeline is future
// scope. It still validates its payload and records the expected
// audit events so the Queue Dispatcher's contract is fully exercised.
package aienrich

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/shopfloor-ops/shopcore/internal/audit"
	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
)

type payload struct {
	WorkOrderID uuid.UUID `json:"work_order_id"`
}

const JobType = "ai_enrich"

type Handler struct {
	log   *logger.Logger
	audit *audit.Sink
}

func New(log *logger.Logger, sink *audit.Sink) *Handler {
	return &Handler{log: log.With("handler", JobType), audit: sink}
}

func (h *Handler) Handle(ctx context.Context, orgID, jobID uuid.UUID, raw json.RawMessage) error {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("invalid ai_enrich payload: %w", err)
	}
	if p.WorkOrderID == uuid.Nil {
		return fmt.Errorf("work_order_id is required in payload")
	}

	h.log.Info("ai_enrich_job_started", "job_id", jobID, "work_order_id", p.WorkOrderID)
	h.audit.Record(ctx, orgID, p.WorkOrderID, "work_order", "ai_enrich.started", map[string]interface{}{"job_id": jobID})

	// Enrichment pipeline (LLM gateway, response parsing, ai_results
	// storage) is out of scope for this milestone.

	h.log.Info("ai_enrich_job_completed_stub", "job_id", jobID, "work_order_id", p.WorkOrderID)
	h.audit.Record(ctx, orgID, p.WorkOrderID, "work_order", "ai_enrich.completed", map[string]interface{}{"job_id": jobID})
	return nil
}
