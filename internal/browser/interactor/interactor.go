// File: internal/browser/interactor/interactor.go
package interactor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// Finder is the element resolution seam the interactor depends on.
// Satisfied by resolver.Resolver; tests inject scripted fakes.
type Finder interface {
	Find(ctx context.Context, loc schemas.Locator) (schemas.ElementHandle, error)
}

// Interactor layers a retry policy and a script-click fallback over
// element resolution. The two failure modes are kept apart on purpose:
// an element that is not there is retried (a fallback would silently
// no-op against nothing), while an element that is there but blocked
// gets the programmatic click within the same attempt.
type Interactor struct {
	finder  Finder
	page    schemas.PagePrimitives
	retries int
	backoff time.Duration
	logger  *zap.Logger
}

// New creates an interactor. retries is the maximum number of attempts
// per interaction; backoff is the pause between failed attempts.
func New(finder Finder, page schemas.PagePrimitives, retries int, backoff time.Duration, logger *zap.Logger) *Interactor {
	if retries < 1 {
		retries = 1
	}
	return &Interactor{
		finder:  finder,
		page:    page,
		retries: retries,
		backoff: backoff,
		logger:  logger.Named("interactor"),
	}
}

// ClickWithRetry finds and clicks the element, tolerating slow renders
// and overlay interception. The returned outcome always reports how
// many attempts ran and whether the fallback was used.
func (i *Interactor) ClickWithRetry(ctx context.Context, loc schemas.Locator) schemas.InteractionOutcome {
	log := i.logger.With(zap.String("locator", loc.String()))
	var lastErr error

	for attempt := 1; attempt <= i.retries; attempt++ {
		h, err := i.finder.Find(ctx, loc)
		if err != nil {
			if ctx.Err() != nil {
				return i.failure(attempt, false, ctx.Err())
			}
			// Nothing to act on; no fallback for absence.
			log.Debug("Element not found", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			if !i.pause(ctx, attempt) {
				return i.failure(attempt, false, lastErr)
			}
			continue
		}

		err = i.page.ClickNode(ctx, h)
		if err == nil {
			log.Debug("Clicked element", zap.Int("attempt", attempt))
			return schemas.InteractionOutcome{Success: true, Attempts: attempt}
		}

		if schemas.IsKind(err, schemas.KindInteractionBlocked) {
			log.Info("Click intercepted, attempting script click fallback", zap.Int("attempt", attempt))
			if fbErr := i.page.ScriptClick(ctx, h); fbErr == nil {
				return schemas.InteractionOutcome{Success: true, Attempts: attempt, FallbackUsed: true}
			} else {
				log.Debug("Script click fallback failed", zap.Error(fbErr))
			}
		}
		if ctx.Err() != nil {
			return i.failure(attempt, false, ctx.Err())
		}

		lastErr = err
		if !i.pause(ctx, attempt) {
			return i.failure(attempt, false, lastErr)
		}
	}

	return i.failure(i.retries, false, lastErr)
}

// FillField clears the input, types the value, and verifies the field
// round-trips it. A mismatch usually means portal JS rewrote the field
// mid-entry, which must fail the record rather than import bad data.
func (i *Interactor) FillField(ctx context.Context, loc schemas.Locator, value string) schemas.InteractionOutcome {
	if value == "" {
		// The rejection counts as the single attempt; outcomes always
		// report at least one.
		return i.failure(1, false, schemas.NewUnhandledError(
			fmt.Sprintf("missing input for locator %s", loc), nil))
	}

	log := i.logger.With(zap.String("locator", loc.String()))
	var lastErr error

	for attempt := 1; attempt <= i.retries; attempt++ {
		h, err := i.finder.Find(ctx, loc)
		if err != nil {
			if ctx.Err() != nil {
				return i.failure(attempt, false, ctx.Err())
			}
			lastErr = err
			if !i.pause(ctx, attempt) {
				return i.failure(attempt, false, lastErr)
			}
			continue
		}

		if err := i.fillOnce(ctx, h, value); err != nil {
			log.Debug("Fill attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			if ctx.Err() != nil {
				return i.failure(attempt, false, ctx.Err())
			}
			lastErr = err
			if !i.pause(ctx, attempt) {
				return i.failure(attempt, false, lastErr)
			}
			continue
		}

		log.Debug("Filled field", zap.Int("attempt", attempt))
		return schemas.InteractionOutcome{Success: true, Attempts: attempt}
	}

	return i.failure(i.retries, false, lastErr)
}

func (i *Interactor) fillOnce(ctx context.Context, h schemas.ElementHandle, value string) error {
	if err := i.page.ClearNode(ctx, h); err != nil {
		return fmt.Errorf("failed to clear field: %w", err)
	}
	if err := i.page.TypeIntoNode(ctx, h, value); err != nil {
		return fmt.Errorf("failed to type into field: %w", err)
	}
	actual, err := i.page.NodeValue(ctx, h)
	if err != nil {
		return fmt.Errorf("failed to verify field: %w", err)
	}
	if actual != value {
		return fmt.Errorf("value mismatch: expected %q, got %q", value, actual)
	}
	return nil
}

// pause sleeps the backoff between attempts. Returns false when the
// context ended or this was the final attempt (no point sleeping).
func (i *Interactor) pause(ctx context.Context, attempt int) bool {
	if attempt >= i.retries {
		return false
	}
	if i.backoff <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(i.backoff):
		return true
	}
}

func (i *Interactor) failure(attempts int, fallback bool, err error) schemas.InteractionOutcome {
	var serr *schemas.Error
	if err != nil && !errors.As(err, &serr) {
		serr = schemas.NewUnhandledError("interaction failed", err)
	}
	return schemas.InteractionOutcome{
		Success:      false,
		Attempts:     attempts,
		FallbackUsed: fallback,
		Err:          serr,
	}
}
