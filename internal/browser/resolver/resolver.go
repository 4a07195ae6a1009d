// File: internal/browser/resolver/resolver.go
package resolver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// Resolver locates elements with explicit, bounded waits. It wraps the
// session's cooperative waits with timeout classification: a wait that
// exhausts its budget becomes a NotFoundError carrying the locator and
// the elapsed time, which is what the retry layer keys on.
type Resolver struct {
	page    schemas.PagePrimitives
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a resolver with the given per-wait ceiling.
func New(page schemas.PagePrimitives, timeout time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		page:    page,
		timeout: timeout,
		logger:  logger.Named("resolver"),
	}
}

// Find blocks until one element matching loc is interactable or the
// per-wait timeout elapses.
func (r *Resolver) Find(ctx context.Context, loc schemas.Locator) (schemas.ElementHandle, error) {
	waitCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	h, err := r.page.ResolveNode(waitCtx, loc)
	if err != nil {
		return nil, r.classify(ctx, waitCtx, loc, time.Since(start), err)
	}

	r.logger.Debug("Element found", zap.String("locator", loc.String()),
		zap.Duration("elapsed", time.Since(start)))
	return h, nil
}

// FindAll blocks until elements matching loc exist or the timeout
// elapses. With allowEmpty, zero matches is a successful empty result
// instead of a NotFoundError.
func (r *Resolver) FindAll(ctx context.Context, loc schemas.Locator, allowEmpty bool) ([]schemas.ElementHandle, error) {
	waitCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	handles, err := r.page.ResolveNodes(waitCtx, loc, !allowEmpty)
	if err != nil {
		return nil, r.classify(ctx, waitCtx, loc, time.Since(start), err)
	}
	if len(handles) == 0 && !allowEmpty {
		return nil, schemas.NewNotFoundError(loc, time.Since(start), nil)
	}

	r.logger.Debug("Elements found", zap.String("locator", loc.String()),
		zap.Int("count", len(handles)))
	return handles, nil
}

// classify decides whether a failed wait is a timeout (NotFound), a
// caller cancellation, or a genuine driver error.
func (r *Resolver) classify(ctx, waitCtx context.Context, loc schemas.Locator, elapsed time.Duration, err error) error {
	// The caller's context outranks the per-wait budget: a cancelled
	// run must not be reported as a missing element.
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitCtx.Err() == context.DeadlineExceeded {
		r.logger.Debug("Wait timed out", zap.String("locator", loc.String()),
			zap.Duration("elapsed", elapsed))
		return schemas.NewNotFoundError(loc, elapsed, err)
	}
	return err
}
