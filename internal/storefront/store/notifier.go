package store

import (
	"sync"

	"github.com/terra-tattva/storefront/internal/storefront/model"
	logx "github.com/terra-tattva/storefront/pkg/logger"
)

// Notifier receives the confirmation emitted by each successful operation.
type Notifier interface {
	Notify(n model.Notification)
}

// Queue buffers notifications until the caller drains them.
// It keeps at most limit entries, dropping the oldest.
type Queue struct {
	mu    sync.Mutex
	items []model.Notification
	limit int
}

const defaultQueueLimit = 20

func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = defaultQueueLimit
	}
	return &Queue{limit: limit}
}

func (q *Queue) Notify(n model.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()

	logx.Debug().Str("title", n.Title).Str("description", n.Description).Msg("notification")
	q.items = append(q.items, n)
	if over := len(q.items) - q.limit; over > 0 {
		q.items = q.items[over:]
	}
}

// Drain returns the buffered notifications in emission order and empties the queue.
func (q *Queue) Drain() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	if out == nil {
		return []model.Notification{}
	}
	return out
}

type discard struct{}

func (discard) Notify(model.Notification) {}
