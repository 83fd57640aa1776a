package notify

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/opsdesk/internal/models"
)

// Publisher announces a persisted notification to live listeners. The
// notification row is the source of truth; publishing is best effort.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

// Subscriber streams notifications addressed to one user until cancel is
// called or ctx ends.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (<-chan models.Notification, func(), error)
}

type Bus interface {
	Publisher
	Subscriber
}

func channelFor(userID string) string {
	return "notifications:" + userID
}

// Hub is the in-process bus used when no Redis is configured.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan models.Notification]struct{}
	size int
}

var _ Bus = (*Hub)(nil)

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs: make(map[string]map[chan models.Notification]struct{}),
		size: buffer,
	}
}

func (h *Hub) Publish(_ context.Context, n models.Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[channelFor(n.RecipientUserID)] {
		select {
		case ch <- n:
		default:
			// slow listener; it will see the row on its next inbox read
		}
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, userID string) (<-chan models.Notification, func(), error) {
	key := channelFor(userID)
	ch := make(chan models.Notification, h.size)

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[chan models.Notification]struct{})
	}
	h.subs[key][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[key], ch)
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
			}
			h.mu.Unlock()
			close(ch)
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel, nil
}
