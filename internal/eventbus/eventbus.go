// Package eventbus is the in-process publish/subscribe channel between source
// and target pages. Delivery is synchronous: Publish returns after every
// handler has run, in the order handlers subscribed.
package eventbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
)

type Handler[T any] func(ctx context.Context, event T)

type subscription[T any] struct {
	name    string
	handler Handler[T]
}

type Topic[T any] struct {
	name   string
	logger logger.Logger

	mu   sync.RWMutex
	subs []subscription[T]
}

func NewTopic[T any](name string, log logger.Logger) *Topic[T] {
	return &Topic[T]{
		name:   name,
		logger: log.With("topic", name),
	}
}

// Subscribe appends h to the delivery list. name only shows up in logs.
func (t *Topic[T]) Subscribe(name string, h Handler[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, subscription[T]{name: name, handler: h})
}

func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

// Publish delivers event to every subscriber and returns how many handlers
// completed without panicking. A panicking handler is logged and skipped.
func (t *Topic[T]) Publish(ctx context.Context, event T) int {
	t.mu.RLock()
	subs := make([]subscription[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.RUnlock()

	delivered := 0
	for _, s := range subs {
		if err := t.invoke(ctx, s, event); err != nil {
			t.logger.Error("Subscriber failed", "subscriber", s.name, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (t *Topic[T]) invoke(ctx context.Context, s subscription[T], event T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s handler: %v", t.name, r)
		}
	}()
	s.handler(ctx, event)
	return nil
}

// Bus carries the two notifications of the relay pipeline.
type Bus struct {
	// Incoming fires when a source page caches a new post.
	Incoming *Topic[domain.SourceRecord]
	// Outgoing fires when a target page records a published post.
	Outgoing *Topic[domain.TargetRecord]
}

func New(log logger.Logger) *Bus {
	log = log.WithComponent("EventBus")
	return &Bus{
		Incoming: NewTopic[domain.SourceRecord]("incoming", log),
		Outgoing: NewTopic[domain.TargetRecord]("outgoing", log),
	}
}
