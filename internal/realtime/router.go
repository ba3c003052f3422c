package realtime

import (
	"sync"

	"go.uber.org/zap"

	"campus-chat-service/internal/metrics"
)

type EventKind int

const (
	MessageCreated EventKind = iota + 1
	StatusUpdated
	PresenceChanged
)

func (k EventKind) String() string {
	switch k {
	case MessageCreated:
		return "message_created"
	case StatusUpdated:
		return "status_updated"
	case PresenceChanged:
		return "presence_changed"
	}
	return "unknown"
}

func (k EventKind) wireName() string {
	switch k {
	case MessageCreated:
		return EventNewMessage
	case StatusUpdated:
		return EventStatusUpdated
	case PresenceChanged:
		return EventUserStatusChange
	}
	return ""
}

// Event is a domain event whose payload has already been persisted.
// Global only applies to StatusUpdated.
type Event struct {
	Kind    EventKind
	Room    string
	Global  bool
	Payload interface{}
}

// EventRouter computes delivery sets and enqueues events on recipients.
// Dispatch calls are serialised, so every recipient sees events in submission order.
type EventRouter struct {
	mu       sync.Mutex
	registry *Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewEventRouter(registry *Registry, m *metrics.Metrics, logger *zap.Logger) *EventRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRouter{registry: registry, metrics: m, logger: logger}
}

// Dispatch delivers ev and returns the number of recipients it was queued for.
// A recipient that cannot accept the frame is skipped.
func (r *EventRouter) Dispatch(ev Event) int {
	name := ev.Kind.wireName()
	if name == "" {
		r.logger.Warn("Dropping event of unknown kind", zap.Int("kind", int(ev.Kind)))
		return 0
	}

	frame, err := encodeEnvelope(name, ev.Payload)
	if err != nil {
		r.logger.Error("Failed to encode event", zap.String("event", name), zap.Error(err))
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	recipients := r.recipients(ev)
	delivered, dropped := 0, 0
	for _, p := range recipients {
		if p.Send(frame) {
			delivered++
			continue
		}
		dropped++
		r.logger.Debug("Delivery dropped",
			zap.String("event", name),
			zap.String("conn_id", p.ConnID),
		)
	}

	r.metrics.RecordDispatch(name, dropped)
	return delivered
}

func (r *EventRouter) recipients(ev Event) []*Peer {
	switch ev.Kind {
	case MessageCreated, PresenceChanged:
		if ev.Room == "" {
			return nil
		}
		return r.registry.Peers(ev.Room)
	case StatusUpdated:
		if ev.Global {
			return r.registry.AllPeers()
		}
		return union(r.registry.Peers(ev.Room), r.registry.Peers(GlobalRoom))
	}
	return nil
}

func union(sets ...[]*Peer) []*Peer {
	seen := make(map[string]struct{})
	var out []*Peer
	for _, set := range sets {
		for _, p := range set {
			if _, ok := seen[p.ConnID]; ok {
				continue
			}
			seen[p.ConnID] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
