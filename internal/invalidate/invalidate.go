// Package invalidate defines the cache-invalidation port the write
// paths broadcast on. Delivery is fire-and-forget: a failed broadcast
// never fails the write that triggered it.
package invalidate

import (
	"context"
	"sync"
)

// Topics broadcast by the services.
const (
	TopicSubstitution = "substitution"
	TopicIngredient   = "ingredient"
)

// Invalidator broadcasts that data behind a topic has changed so that
// downstream caches can refresh.
type Invalidator interface {
	Invalidate(ctx context.Context, topic string) error
}

// Nop discards every invalidation. Used when no broadcast backend is
// configured.
type Nop struct{}

// Invalidate implements Invalidator.
func (Nop) Invalidate(context.Context, string) error { return nil }

// Recorder captures invalidations in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	topics []string
}

// Invalidate implements Invalidator.
func (r *Recorder) Invalidate(_ context.Context, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return nil
}

// Topics returns a copy of every topic recorded so far.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.topics))
	copy(out, r.topics)
	return out
}
