package realtime

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"crmtasks/internal/models"
)

// PGListener relays pg_notify task events from any replica into the local hub.
type PGListener struct {
	dsn      string
	hub      *TaskHub
	channels []string
}

func NewPGListener(dsn string, hub *TaskHub) *PGListener {
	return &PGListener{
		dsn: dsn,
		hub: hub,
		channels: []string{
			string(models.EventTaskCreated),
			string(models.EventTaskCompleted),
		},
	}
}

// Run listens until ctx is done.
func (l *PGListener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("[listen][event=%d][err] %v", ev, err)
		}
	})
	defer listener.Close()

	for _, ch := range l.channels {
		if err := listener.Listen(ch); err != nil {
			return fmt.Errorf("listen %s: %w", ch, err)
		}
	}
	log.Printf("[listen] subscribed to %v", l.channels)

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; notifications sent meanwhile are lost
			if n == nil {
				continue
			}
			l.Dispatch(n.Extra)
		case <-time.After(90 * time.Second):
			go func() { _ = listener.Ping() }()
		}
	}
}

func (l *PGListener) Dispatch(payload string) {
	e, err := models.ParseTaskEvent([]byte(payload))
	if err != nil {
		log.Printf("[listen][err] bad payload %q: %v", payload, err)
		return
	}
	l.hub.Broadcast(e)
}
