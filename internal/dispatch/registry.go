// File: internal/dispatch/registry.go
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// TaskKey identifies one automation routine in the registry.
type TaskKey struct {
	Module string
	Task   string
}

func (k TaskKey) String() string { return k.Module + "/" + k.Task }

// Registry maps (module, task) pairs to routines. Portal packages
// register their routines at process start; after Freeze the registry
// is immutable and safe for concurrent lookups. An unknown pair is a
// configuration error surfaced as UnknownTaskError, not a silent no-op.
type Registry struct {
	mu       sync.Mutex
	frozen   bool
	routines map[TaskKey]schemas.Routine
	logger   *zap.Logger
}

// NewRegistry creates an empty, unfrozen registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		routines: make(map[TaskKey]schemas.Routine),
		logger:   logger.Named("dispatch"),
	}
}

// Register adds a routine for the given keys. Registering after Freeze
// or registering a duplicate is a programming error and panics, so a
// bad wiring fails loudly at startup rather than mid-run.
func (r *Registry) Register(moduleKey, taskKey string, routine schemas.Routine) {
	if routine == nil {
		panic(fmt.Sprintf("dispatch: nil routine for %s/%s", moduleKey, taskKey))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		panic(fmt.Sprintf("dispatch: registry frozen, cannot register %s/%s", moduleKey, taskKey))
	}
	key := TaskKey{Module: moduleKey, Task: taskKey}
	if _, exists := r.routines[key]; exists {
		panic(fmt.Sprintf("dispatch: duplicate routine for %s", key))
	}

	r.routines[key] = routine
	r.logger.Debug("Registered routine", zap.String("key", key.String()))
}

// Freeze closes the registry for registration. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Lookup returns the routine for the keys, or UnknownTaskError.
func (r *Registry) Lookup(moduleKey, taskKey string) (schemas.Routine, error) {
	r.mu.Lock()
	routine, ok := r.routines[TaskKey{Module: moduleKey, Task: taskKey}]
	r.mu.Unlock()

	if !ok {
		return nil, schemas.NewUnknownTaskError(moduleKey, taskKey)
	}
	return routine, nil
}

// Dispatch invokes the routine registered for the keys against one
// record. The dispatcher itself never retries; resilience lives inside
// the routine's interactions.
func (r *Registry) Dispatch(ctx context.Context, moduleKey, taskKey string, sess schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
	routine, err := r.Lookup(moduleKey, taskKey)
	if err != nil {
		return schemas.RecordStatus{}, err
	}
	return routine(ctx, sess, rec)
}
