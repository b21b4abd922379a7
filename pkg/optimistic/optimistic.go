// Package optimistic applies local state changes ahead of the server and
// reverts them when the server rejects the change.
package optimistic

import (
	"context"
	"errors"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/metrics"
)

// ErrNotFound is returned when the entity to update is not held locally
var ErrNotFound = errors.New("entity not found")

// Op describes one optimistic mutation of a value of type T
type Op[T any] struct {
	// Kind labels the mutation in logs and metrics
	Kind string
	// Load returns the current value, or false if it is not held
	Load func() (T, bool)
	// Store replaces the current value
	Store func(T)
	// Apply derives the optimistic value from the snapshot
	Apply func(T) T
	// Commit performs the remote call
	Commit func(context.Context) error
}

// Do snapshots the value, stores Apply(snapshot), then runs Commit. If the
// commit fails the snapshot is stored back and the commit error returned.
func Do[T any](ctx context.Context, op Op[T]) error {
	snapshot, ok := op.Load()
	if !ok {
		return ErrNotFound
	}

	op.Store(op.Apply(snapshot))
	m := metrics.Get()
	m.OptimisticUpdatesTotal.WithLabelValues(op.Kind).Inc()

	if err := op.Commit(ctx); err != nil {
		op.Store(snapshot)
		m.OptimisticRollbacksTotal.WithLabelValues(op.Kind).Inc()
		logger.Warn("Optimistic update rolled back", "kind", op.Kind, "error", err)
		return err
	}
	return nil
}
