// File: internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// Dispatcher is the lookup seam the pipeline needs from the task
// registry.
type Dispatcher interface {
	Lookup(moduleKey, taskKey string) (schemas.Routine, error)
}

// Pipeline drives one import run: every input record is dispatched in
// order and classified into exactly one terminal status. A record's
// failure never stops the records after it; only a missing session or
// an unregistered task aborts the whole run.
type Pipeline struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

// New creates a pipeline.
func New(dispatcher Dispatcher, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		dispatcher: dispatcher,
		logger:     logger.Named("pipeline"),
	}
}

// Run processes records in input order against the session. The
// returned PipelineRun preserves input order and holds one terminal
// result per processed record. Cancellation is honored between
// records: the partial run is returned with Aborted set, never nil.
// Run owns the session for its duration but does not close it; the
// caller's scoped teardown does.
func (p *Pipeline) Run(ctx context.Context, records []schemas.Record, moduleKey, taskKey string, sess schemas.SessionContext) (*schemas.PipelineRun, error) {
	// An unregistered task is a configuration error for the whole run,
	// surfaced once up front rather than repeated per record.
	routine, err := p.dispatcher.Lookup(moduleKey, taskKey)
	if err != nil {
		return nil, err
	}
	var runErr error

	run := &schemas.PipelineRun{
		RunID:     uuid.New().String(),
		ModuleKey: moduleKey,
		TaskKey:   taskKey,
		StartedAt: time.Now(),
		Results:   make([]schemas.RecordResult, 0, len(records)),
	}

	log := p.logger.With(
		zap.String("run_id", run.RunID),
		zap.String("module", moduleKey),
		zap.String("task", taskKey),
	)
	log.Info("Starting import run", zap.Int("records", len(records)))

	for i, rec := range records {
		// Abort is checked between records only; a record in flight
		// runs to its own completion.
		if ctx.Err() != nil {
			log.Warn("Run cancelled", zap.Int("processed", i), zap.Int("remaining", len(records)-i))
			run.Aborted = true
			break
		}

		recLog := log.With(zap.Int("index", i), zap.String("record_id", rec.ID()))
		recLog.Debug("Processing record", zap.String("status", string(schemas.StatusInProgress)))

		status, fatal := p.processRecord(ctx, routine, sess, rec, recLog)
		run.Results = append(run.Results, schemas.RecordResult{
			Index:    i,
			RecordID: rec.ID(),
			Status:   status,
		})

		switch status.Code {
		case schemas.StatusSuccess:
			recLog.Info("Record imported")
		case schemas.StatusSkipped:
			recLog.Info("Record skipped", zap.String("reason", status.Reason))
		default:
			recLog.Warn("Record failed", zap.String("reason", status.Reason))
		}

		if fatal != nil {
			log.Error("Session failure, aborting run", zap.Error(fatal))
			run.Aborted = true
			runErr = fatal
			break
		}
	}

	run.FinishedAt = time.Now()
	run.Tally()

	log.Info("Import run finished",
		zap.Int("succeeded", run.Summary.Succeeded),
		zap.Int("failed", run.Summary.Failed),
		zap.Int("skipped", run.Summary.Skipped),
		zap.Bool("aborted", run.Aborted),
	)
	return run, runErr
}

// processRecord invokes the routine, converting panics and
// unclassified errors into a failed status so one bad record cannot
// take the run down. A session-kind error is the one exception: the
// browser is gone, so it is returned as fatal alongside the record's
// failed status.
func (p *Pipeline) processRecord(ctx context.Context, routine schemas.Routine, sess schemas.SessionContext, rec schemas.Record, log *zap.Logger) (status schemas.RecordStatus, fatal error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Routine panicked", zap.Any("panic", r))
			status = schemas.Failed(schemas.NewUnhandledError(fmt.Sprintf("routine panicked: %v", r), nil).Error())
			fatal = nil
		}
	}()

	status, err := routine(ctx, sess, rec)
	if err != nil {
		if schemas.IsKind(err, schemas.KindSession) {
			return schemas.Failed(err.Error()), err
		}
		return schemas.Failed(err.Error()), nil
	}
	if !status.Code.Terminal() {
		// A routine must classify its record; an open status here is a
		// routine bug.
		return schemas.Failed(fmt.Sprintf("routine returned non-terminal status %q", status.Code)), nil
	}
	return status, nil
}
