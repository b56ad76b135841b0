package events

import (
	"context"
	"sync"

	"lv-papertrade/internal/model"
)

// Bus fans trade events out to in-process subscribers of the trading user.
// Slow subscribers drop events rather than block the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[chan Event]struct{})}
}

func (b *Bus) Subscribe(userID string) chan Event {
	ch := make(chan Event, 100)
	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan Event]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Bus) Unsubscribe(userID string, ch chan Event) {
	b.mu.Lock()
	if set, ok := b.subs[userID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(b.subs, userID)
		}
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(_ context.Context, t model.Transaction) error {
	evt := Event{Type: TypeTrade, Data: t}
	b.mu.RLock()
	for ch := range b.subs[t.UserID] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.RUnlock()
	return nil
}
