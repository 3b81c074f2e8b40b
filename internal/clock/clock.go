// Package clock owns the simulated, monotonically advancing integer day
// that drives campaign activeness and statistics binning across the system.
package clock

import (
	"context"
	"sync"

	"github.com/subculture-collective/adserve/internal/apperr"
)

// Store is the minimal persistence contract the clock needs; satisfied by
// repository.ClockStore.
type Store interface {
	Load(ctx context.Context) (uint32, error)
	Save(ctx context.Context, day uint32) error
}

// AdvanceListener is notified after a successful advance, with the old and
// new day, so ActiveCache can reconcile (§4.4 rebuild policy) without the
// clock importing the cache package.
type AdvanceListener func(ctx context.Context, oldDay, newDay uint32)

// Service is the process-wide clock singleton. All reads are served from
// an in-memory value guarded by a mutex; writes persist through Store
// before being made visible, so a crash never exposes an unpersisted day.
type Service struct {
	mu        sync.RWMutex
	now       uint32
	store     Store
	listeners []AdvanceListener
}

// New constructs a Service, loading the last-persisted day from store.
func New(ctx context.Context, store Store) (*Service, error) {
	day, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Service{now: day, store: store}, nil
}

// OnAdvance registers a listener invoked synchronously after each
// successful Advance call, in registration order.
func (s *Service) OnAdvance(l AdvanceListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Now returns the current simulated day.
func (s *Service) Now() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now
}

// Advance sets the simulated day to target, failing Validation if target is
// behind the current day. Advancing to the current value is a no-op success
// (idempotent) and does not fire listeners.
func (s *Service) Advance(ctx context.Context, target uint32) (uint32, error) {
	s.mu.Lock()
	if target < s.now {
		old := s.now
		s.mu.Unlock()
		return old, apperr.Validationf("clock cannot move backward: now=%d target=%d", old, target)
	}
	if target == s.now {
		current := s.now
		s.mu.Unlock()
		return current, nil
	}

	old := s.now
	if err := s.store.Save(ctx, target); err != nil {
		s.mu.Unlock()
		return old, err
	}
	s.now = target
	listeners := append([]AdvanceListener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(ctx, old, target)
	}
	return target, nil
}
