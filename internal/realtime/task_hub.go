package realtime

import (
	"context"
	"log"
	"net/http"
	"sync"

	"crmtasks/internal/models"
)

// TaskHub fans task events out to dashboard subscribers.
type TaskHub struct {
	mu    sync.RWMutex
	conns map[*Conn]struct{}
}

func NewTaskHub() *TaskHub {
	return &TaskHub{
		conns: make(map[*Conn]struct{}),
	}
}

func (h *TaskHub) Register(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *TaskHub) Unregister(conn *Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}

func (h *TaskHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast queues the event for every subscriber allowed to see it. It
// never waits on a socket: a subscriber whose queue is full is dropped.
func (h *TaskHub) Broadcast(e *models.TaskEvent) {
	payload, err := e.JSON()
	if err != nil {
		log.Printf("[ws][broadcast][err] encode event id=%s: %v", e.ID, err)
		return
	}

	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns))
	for conn := range h.conns {
		if visible(conn, e) {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if !conn.enqueue(payload) {
			log.Printf("[ws][drop] subscriber too slow, unregistering")
			h.Unregister(conn)
		}
	}
}

// Notify lets the hub sit in a notifier chain when no database listener relays events.
func (h *TaskHub) Notify(_ context.Context, e *models.TaskEvent) error {
	h.Broadcast(e)
	return nil
}

// ServeWS upgrades the request and blocks until the subscriber disconnects
// or is dropped.
func (h *TaskHub) ServeWS(w http.ResponseWriter, r *http.Request, tenantID string) error {
	conn, err := Upgrade(w, r, tenantID)
	if err != nil {
		return err
	}
	h.Register(conn)
	defer h.Unregister(conn)

	go conn.writePump()
	conn.readLoop()
	return nil
}

func visible(c *Conn, e *models.TaskEvent) bool {
	if c.tenantID == "" {
		return true
	}
	return e.TenantID != nil && *e.TenantID == c.tenantID
}
