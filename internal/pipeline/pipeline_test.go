package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
	"github.com/autoedu/autoedu-cli/internal/dispatch"
	"github.com/autoedu/autoedu-cli/internal/mocks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testRecord struct {
	id     string
	fields map[string]string
}

func (r testRecord) ID() string              { return r.id }
func (r testRecord) Field(key string) string { return r.fields[key] }

func makeRecords(ids ...string) []schemas.Record {
	recs := make([]schemas.Record, 0, len(ids))
	for _, id := range ids {
		recs = append(recs, testRecord{id: id})
	}
	return recs
}

func newRegistry(t *testing.T, routine schemas.Routine) *dispatch.Registry {
	t.Helper()
	reg := dispatch.NewRegistry(zap.NewNop())
	reg.Register("student", "import", routine)
	reg.Freeze()
	return reg
}

func TestRunProducesOneTerminalStatusPerRecordInOrder(t *testing.T) {
	// Record 1 succeeds, record 2 times out after retries, record 3
	// panics. The run must still yield three results, in input order.
	routine := func(_ context.Context, _ schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
		switch rec.ID() {
		case "r1":
			return schemas.Success(), nil
		case "r2":
			loc := schemas.Locator{Strategy: schemas.ByID, Selector: "importGo"}
			return schemas.RecordStatus{}, schemas.NewNotFoundError(loc, 2*time.Second, nil)
		default:
			panic("portal rendered an unexpected page")
		}
	}

	p := New(newRegistry(t, routine), zap.NewNop())
	run, err := p.Run(context.Background(), makeRecords("r1", "r2", "r3"), "student", "import", mocks.NewFakeSession())
	require.NoError(t, err)

	require.Len(t, run.Results, 3)
	assert.Equal(t, []string{"r1", "r2", "r3"}, []string{run.Results[0].RecordID, run.Results[1].RecordID, run.Results[2].RecordID})

	assert.Equal(t, schemas.StatusSuccess, run.Results[0].Status.Code)

	assert.Equal(t, schemas.StatusFailed, run.Results[1].Status.Code)
	assert.Contains(t, run.Results[1].Status.Reason, "not_found")

	assert.Equal(t, schemas.StatusFailed, run.Results[2].Status.Code)
	assert.Contains(t, run.Results[2].Status.Reason, "panicked")

	assert.Equal(t, schemas.RunSummary{Succeeded: 1, Failed: 2}, run.Summary)
	assert.False(t, run.Aborted)

	for i, res := range run.Results {
		assert.Equal(t, i, res.Index)
		assert.True(t, res.Status.Code.Terminal(), "record %d has non-terminal status %s", i, res.Status.Code)
	}
}

func TestRunSkippedCountedSeparately(t *testing.T) {
	routine := func(_ context.Context, _ schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
		if rec.ID() == "no-pen" {
			return schemas.Skipped("missing PEN"), nil
		}
		return schemas.Success(), nil
	}

	p := New(newRegistry(t, routine), zap.NewNop())
	run, err := p.Run(context.Background(), makeRecords("ok-1", "no-pen", "ok-2"), "student", "import", mocks.NewFakeSession())
	require.NoError(t, err)

	assert.Equal(t, schemas.RunSummary{Succeeded: 2, Skipped: 1}, run.Summary)
	// The skipped record keeps its input-order slot.
	assert.Equal(t, "no-pen", run.Results[1].RecordID)
	assert.Equal(t, schemas.StatusSkipped, run.Results[1].Status.Code)
}

func TestRunUnknownTaskAbortsBeforeAnyRecord(t *testing.T) {
	invoked := false
	routine := func(context.Context, schemas.SessionContext, schemas.Record) (schemas.RecordStatus, error) {
		invoked = true
		return schemas.Success(), nil
	}

	p := New(newRegistry(t, routine), zap.NewNop())
	run, err := p.Run(context.Background(), makeRecords("r1"), "teacher", "transfer", mocks.NewFakeSession())

	require.Error(t, err)
	assert.True(t, schemas.IsKind(err, schemas.KindUnknownTask))
	assert.Nil(t, run)
	assert.False(t, invoked)
}

func TestRunFailureDoesNotStopSubsequentRecords(t *testing.T) {
	routine := func(_ context.Context, _ schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
		if rec.ID() == "bad" {
			return schemas.RecordStatus{}, errors.New("portal session bounced to login page")
		}
		return schemas.Success(), nil
	}

	p := New(newRegistry(t, routine), zap.NewNop())
	run, err := p.Run(context.Background(), makeRecords("bad", "after"), "student", "import", mocks.NewFakeSession())
	require.NoError(t, err)

	require.Len(t, run.Results, 2)
	assert.Equal(t, schemas.StatusFailed, run.Results[0].Status.Code)
	// The record after the failure still reaches a terminal state.
	assert.Equal(t, schemas.StatusSuccess, run.Results[1].Status.Code)
}

func TestRunCancellationBetweenRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	processed := 0
	routine := func(context.Context, schemas.SessionContext, schemas.Record) (schemas.RecordStatus, error) {
		processed++
		if processed == 2 {
			// Signal abort mid-run; the current record still finishes.
			cancel()
		}
		return schemas.Success(), nil
	}

	p := New(newRegistry(t, routine), zap.NewNop())
	run, err := p.Run(ctx, makeRecords("r1", "r2", "r3", "r4"), "student", "import", mocks.NewFakeSession())
	require.NoError(t, err)

	assert.True(t, run.Aborted)
	// Records before the abort have terminal results; the rest were
	// never started.
	assert.Len(t, run.Results, 2)
	assert.Equal(t, 2, processed)
	assert.Equal(t, schemas.RunSummary{Succeeded: 2}, run.Summary)
}

func TestRunRoutineReturningNonTerminalStatusIsFailed(t *testing.T) {
	routine := func(context.Context, schemas.SessionContext, schemas.Record) (schemas.RecordStatus, error) {
		return schemas.RecordStatus{Code: schemas.StatusInProgress}, nil
	}

	p := New(newRegistry(t, routine), zap.NewNop())
	run, err := p.Run(context.Background(), makeRecords("r1"), "student", "import", mocks.NewFakeSession())
	require.NoError(t, err)

	assert.Equal(t, schemas.StatusFailed, run.Results[0].Status.Code)
	assert.Contains(t, run.Results[0].Status.Reason, "non-terminal")
}

func TestRunSessionErrorAbortsTheRun(t *testing.T) {
	processed := 0
	routine := func(_ context.Context, _ schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
		processed++
		if rec.ID() == "r2" {
			return schemas.RecordStatus{}, schemas.NewSessionError("browser exited", errors.New("context canceled"))
		}
		return schemas.Success(), nil
	}

	p := New(newRegistry(t, routine), zap.NewNop())
	run, err := p.Run(context.Background(), makeRecords("r1", "r2", "r3"), "student", "import", mocks.NewFakeSession())

	require.Error(t, err)
	assert.True(t, schemas.IsKind(err, schemas.KindSession))
	require.NotNil(t, run, "partial run must survive a session failure")

	assert.True(t, run.Aborted)
	assert.Len(t, run.Results, 2, "the record that hit the failure keeps its result; r3 never started")
	assert.Equal(t, 2, processed)
	assert.Equal(t, schemas.StatusFailed, run.Results[1].Status.Code)
}
