package web

import (
	"sync"

	"gpsdclient/feed"
)

// FixBroadcaster fans out feed snapshots to any listeners (e.g. the
// websocket handler). It keeps the most recent value so new
// subscribers get an immediate sample.
type FixBroadcaster struct {
	mu       sync.Mutex
	subs     map[int]chan feed.Snapshot
	nextID   int
	last     feed.Snapshot
	haveLast bool
}

func NewFixBroadcaster() *FixBroadcaster {
	return &FixBroadcaster{subs: make(map[int]chan feed.Snapshot)}
}

func (b *FixBroadcaster) Subscribe(buffer int) (int, <-chan feed.Snapshot) {
	if b == nil {
		return 0, nil
	}
	if buffer <= 0 {
		buffer = 2
	}
	ch := make(chan feed.Snapshot, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	last := b.last
	have := b.haveLast
	b.mu.Unlock()
	if have {
		select {
		case ch <- last:
		default:
		}
	}
	return id, ch
}

func (b *FixBroadcaster) Unsubscribe(id int) {
	if b == nil {
		return
	}
	b.mu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers snap to every subscriber. Slow subscribers lose
// samples rather than block the feed. Sends happen under the lock so
// Unsubscribe cannot close a channel mid-send.
func (b *FixBroadcaster) Publish(snap feed.Snapshot) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = snap
	b.haveLast = true
	for _, ch := range b.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
