package interactor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
	"github.com/autoedu/autoedu-cli/internal/browser/resolver"
	"github.com/autoedu/autoedu-cli/internal/mocks"
)

const waitTimeout = 50 * time.Millisecond

func newTestInteractor(t *testing.T, fake *mocks.FakeSession, retries int) *Interactor {
	t.Helper()
	logger := zap.NewNop()
	res := resolver.New(fake, waitTimeout, logger)
	return New(res, fake, retries, time.Millisecond, logger)
}

func TestClickWithRetry(t *testing.T) {
	loc := schemas.Locator{Strategy: schemas.ByID, Selector: "submitBtn"}

	t.Run("succeeds first try without fallback", func(t *testing.T) {
		fake := mocks.NewFakeSession()
		script := fake.Script(loc, &mocks.ElementScript{})

		outcome := newTestInteractor(t, fake, 3).ClickWithRetry(context.Background(), loc)

		assert.True(t, outcome.Success)
		assert.Equal(t, 1, outcome.Attempts)
		assert.False(t, outcome.FallbackUsed)
		assert.Equal(t, 1, script.Clicks)
		assert.Zero(t, script.ScriptClicks)
	})

	t.Run("blocked click falls back to script click within the same attempt", func(t *testing.T) {
		fake := mocks.NewFakeSession()
		script := fake.Script(loc, &mocks.ElementScript{ClickBlocked: 1})

		outcome := newTestInteractor(t, fake, 3).ClickWithRetry(context.Background(), loc)

		assert.True(t, outcome.Success)
		assert.True(t, outcome.FallbackUsed)
		assert.Equal(t, 1, outcome.Attempts)
		assert.Equal(t, 1, script.ScriptClicks)
	})

	t.Run("element never findable exhausts all retries", func(t *testing.T) {
		fake := mocks.NewFakeSession()
		script := fake.Script(loc, &mocks.ElementScript{NeverFound: true})

		outcome := newTestInteractor(t, fake, 2).ClickWithRetry(context.Background(), loc)

		assert.False(t, outcome.Success)
		assert.Equal(t, 2, outcome.Attempts)
		assert.False(t, outcome.FallbackUsed)
		require.NotNil(t, outcome.Err)
		assert.Equal(t, schemas.KindNotFound, outcome.Err.Kind)
		// Absence must never trigger the fallback.
		assert.Zero(t, script.ScriptClicks)
	})

	t.Run("element appearing on a later attempt succeeds", func(t *testing.T) {
		fake := mocks.NewFakeSession()
		fake.Script(loc, &mocks.ElementScript{FindFailures: 2})

		outcome := newTestInteractor(t, fake, 3).ClickWithRetry(context.Background(), loc)

		assert.True(t, outcome.Success)
		assert.Equal(t, 3, outcome.Attempts)
	})

	t.Run("blocked click with failing fallback eventually fails", func(t *testing.T) {
		fake := mocks.NewFakeSession()
		script := fake.Script(loc, &mocks.ElementScript{
			ClickBlocked:   10,
			ScriptClickErr: assert.AnError,
		})

		outcome := newTestInteractor(t, fake, 2).ClickWithRetry(context.Background(), loc)

		assert.False(t, outcome.Success)
		assert.Equal(t, 2, outcome.Attempts)
		require.NotNil(t, outcome.Err)
		assert.Equal(t, schemas.KindInteractionBlocked, outcome.Err.Kind)
		assert.Equal(t, 2, script.ScriptClicks)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		fake := mocks.NewFakeSession()
		fake.Script(loc, &mocks.ElementScript{NeverFound: true})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		outcome := newTestInteractor(t, fake, 5).ClickWithRetry(ctx, loc)

		assert.False(t, outcome.Success)
		assert.LessOrEqual(t, outcome.Attempts, 1)
	})
}

func TestFillField(t *testing.T) {
	loc := schemas.Locator{Strategy: schemas.ByID, Selector: "studentPen"}

	t.Run("clears, types and verifies", func(t *testing.T) {
		fake := mocks.NewFakeSession()
		script := fake.Script(loc, &mocks.ElementScript{Value: "stale"})

		outcome := newTestInteractor(t, fake, 3).FillField(context.Background(), loc, "117700112233")

		assert.True(t, outcome.Success)
		assert.Equal(t, 1, outcome.Attempts)
		assert.Equal(t, 1, script.Cleared)
		assert.Equal(t, []string{"117700112233"}, script.TypedText)
		assert.Equal(t, "117700112233", script.Value)
	})

	t.Run("verification mismatch fails after retries", func(t *testing.T) {
		fake := mocks.NewFakeSession()
		rewritten := "something-else"
		fake.Script(loc, &mocks.ElementScript{ReportedValue: &rewritten})

		outcome := newTestInteractor(t, fake, 2).FillField(context.Background(), loc, "117700112233")

		assert.False(t, outcome.Success)
		assert.Equal(t, 2, outcome.Attempts)
		require.NotNil(t, outcome.Err)
		assert.Contains(t, outcome.Err.Error(), "value mismatch")
	})

	t.Run("empty value is rejected without touching the page", func(t *testing.T) {
		fake := mocks.NewFakeSession()
		script := fake.Script(loc, &mocks.ElementScript{})

		outcome := newTestInteractor(t, fake, 3).FillField(context.Background(), loc, "")

		assert.False(t, outcome.Success)
		assert.Equal(t, 1, outcome.Attempts)
		assert.Zero(t, script.Cleared)
		assert.Empty(t, script.TypedText)
	})
}
