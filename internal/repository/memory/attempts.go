package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Redabouizer/crealik-auth/internal/core/port"
)

type attemptEntry struct {
	count       int
	windowStart time.Time
}

// AttemptRepository is a process-local port.AttemptStore. It keeps the same
// window semantics as the Redis implementation but counters are per instance,
// so it only suits single-node deployments and tests.
type AttemptRepository struct {
	mu      sync.Mutex
	entries map[string]*attemptEntry
}

// NewAttemptRepository constructs an empty in-memory attempt store.
func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{entries: make(map[string]*attemptEntry)}
}

// CheckAndRecord applies the fixed-window rules for the key under a single
// lock. The window boundary instant still belongs to the old window.
func (r *AttemptRepository) CheckAndRecord(_ context.Context, email, clientAddr string, limit int, window time.Duration, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := attemptKey(email, clientAddr)
	entry, ok := r.entries[key]
	if !ok || now.Sub(entry.windowStart) > window {
		r.entries[key] = &attemptEntry{count: 1, windowStart: now}
		return true, nil
	}

	if entry.count >= limit {
		return false, nil
	}

	entry.count++
	return true, nil
}

// ResetOnSuccess zeroes the counter for the key, keeping the window start.
func (r *AttemptRepository) ResetOnSuccess(_ context.Context, email, clientAddr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[attemptKey(email, clientAddr)]; ok {
		entry.count = 0
	}
	return nil
}

func attemptKey(email, clientAddr string) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(clientAddr))
}

var _ port.AttemptStore = (*AttemptRepository)(nil)
