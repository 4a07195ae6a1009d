// File: api/schemas/errors_test.go
package schemas

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindMatching(t *testing.T) {
	loc := Locator{Strategy: ByID, Selector: "mat-input-0"}
	cause := errors.New("wait deadline exceeded")
	err := NewNotFoundError(loc, 30*time.Second, cause)

	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindSession))
	assert.Equal(t, KindNotFound, KindOf(err))

	// Kind matching survives %w wrapping.
	wrapped := fmt.Errorf("clicking import button: %w", err)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.ErrorIs(t, wrapped, cause)

	var typed *Error
	require.True(t, errors.As(wrapped, &typed))
	require.NotNil(t, typed.Locator)
	assert.Equal(t, loc, *typed.Locator)
	assert.Equal(t, 30*time.Second, typed.Elapsed)
}

func TestErrorMessages(t *testing.T) {
	loc := Locator{Strategy: ByXPath, Selector: "//button"}

	notFound := NewNotFoundError(loc, 5*time.Second, nil)
	assert.Contains(t, notFound.Error(), "xpath=//button")

	unknown := NewUnknownTaskError("student", "progression")
	assert.True(t, IsKind(unknown, KindUnknownTask))
	assert.Contains(t, unknown.Error(), "student")
	assert.Contains(t, unknown.Error(), "progression")

	session := NewSessionError("browser exited", errors.New("context canceled"))
	assert.True(t, IsKind(session, KindSession))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnhandled, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindSession))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, Success().Code.Terminal())
	assert.True(t, Failed("x").Code.Terminal())
	assert.True(t, Skipped("x").Code.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}

func TestPipelineRunTally(t *testing.T) {
	run := &PipelineRun{
		Results: []RecordResult{
			{Index: 0, Status: Success()},
			{Index: 1, Status: Failed("element not found")},
			{Index: 2, Status: Skipped("missing PEN")},
			{Index: 3, Status: Success()},
		},
	}
	run.Tally()

	assert.Equal(t, 2, run.Summary.Succeeded)
	assert.Equal(t, 1, run.Summary.Failed)
	assert.Equal(t, 1, run.Summary.Skipped)
}
