// Package realtime is the in-process fan-out hub for audit events,
// generalized from the teacher's internal/sse package: subscriptions
// key on org id instead of per-user channel name, since every event
// this system emits is already org-scoped (spec.md §2).
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
)

// Event is one audit-worthy state transition, fanned out to every
// subscriber of its org.
type Event struct {
	OrgID      uuid.UUID   `json:"org_id"`
	EntityType string      `json:"entity_type"`
	EntityID   uuid.UUID   `json:"entity_id"`
	Name       string      `json:"event"`
	Detail     interface{} `json:"detail,omitempty"`
}

// Subscriber is one listener's mailbox.
type Subscriber struct {
	ID       uuid.UUID
	OrgID    uuid.UUID
	Outbound chan Event
	done     chan struct{}
}

type Hub struct {
	mu   sync.RWMutex
	log  *logger.Logger
	subs map[uuid.UUID]map[*Subscriber]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:  log.With("component", "realtime.Hub"),
		subs: make(map[uuid.UUID]map[*Subscriber]bool),
	}
}

func (h *Hub) Subscribe(orgID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		ID:       uuid.New(),
		OrgID:    orgID,
		Outbound: make(chan Event, 16),
		done:     make(chan struct{}),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[orgID] == nil {
		h.subs[orgID] = make(map[*Subscriber]bool)
	}
	h.subs[orgID][sub] = true
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.OrgID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.OrgID)
		}
	}
	select {
	case <-sub.done:
	default:
		close(sub.done)
	}
}

// Publish fans an event out to every local subscriber of its org.
// Dropped on a full mailbox rather than blocking the publisher — a
// slow SSE client must never stall a dispatcher or HTTP request.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ev.OrgID] {
		select {
		case sub.Outbound <- ev:
		default:
			h.log.Warn("dropping realtime event; subscriber mailbox full", "org_id", ev.OrgID, "subscriber_id", sub.ID)
		}
	}
}

// ServeHTTP streams sub's events to w as Server-Sent Events until the
// request context is cancelled, grounded on the teacher's
// internal/sse.SSEHub.ServeHTTP.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, sub *Subscriber) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev := <-sub.Outbound:
			raw, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("failed to marshal realtime event for SSE", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, raw)
			flusher.Flush()
		}
	}
}
