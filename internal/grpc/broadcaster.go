package grpc

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mr1hm/zerostrike/internal/geojson"
	"github.com/mr1hm/zerostrike/internal/metrics"
)

// LayerUpdate announces that a layer was rebuilt. Collection is nil when the
// layer currently has nothing to draw.
type LayerUpdate struct {
	Layer      geojson.Layer
	UpdatedAt  time.Time
	Collection *geojson.FeatureCollection
}

type Broadcaster struct {
	subscribers map[uint64]chan *LayerUpdate
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *LayerUpdate),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan *LayerUpdate) {
	id := b.nextID.Add(1)
	ch := make(chan *LayerUpdate, 100)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	metrics.StreamSubscribers.Inc()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
		metrics.StreamSubscribers.Dec()
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(u *LayerUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- u:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
		metrics.StreamSubscribers.Dec()
	}
}
