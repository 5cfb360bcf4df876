package services

import "sync"

// EntityKind names a table for change notifications.
type EntityKind string

const (
	KindSite        EntityKind = "site"
	KindSchedule    EntityKind = "schedule"
	KindActivity    EntityKind = "activity"
	KindForm        EntityKind = "form"
	KindPerformance EntityKind = "performance"
)

// ChangeEvent signals that rows of one entity kind changed. ID is the
// primary affected row where a single row is known, empty for bulk
// operations.
type ChangeEvent struct {
	Kind EntityKind
	ID   string
}

// ChangeBus fans mutation notifications out to subscribers. Publishes
// never block: a subscriber that falls behind misses events and is
// expected to issue a manual refresh.
type ChangeBus struct {
	mu   sync.RWMutex
	subs []chan ChangeEvent
}

func NewChangeBus() *ChangeBus {
	return &ChangeBus{}
}

// Subscribe registers a buffered listener channel.
func (b *ChangeBus) Subscribe() <-chan ChangeEvent {
	ch := make(chan ChangeEvent, 64)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers an event to every subscriber without blocking.
func (b *ChangeBus) Publish(event ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
