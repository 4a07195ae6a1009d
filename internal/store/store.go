// File: internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// DBPool abstracts the pgxpool.Pool so tests can substitute a mock connection.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Store persists pipeline run history to PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const sqlInsertRun = `
        INSERT INTO pipeline_runs (id, module_key, task_key, started_at, finished_at, succeeded, failed, skipped, aborted)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
    `

// SaveRun writes the run row and all of its record results in a single transaction.
func (s *Store) SaveRun(ctx context.Context, run *schemas.PipelineRun) error {
	if run == nil {
		return errors.New("nil run")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback on an already committed transaction returns pgx.ErrTxClosed,
		// which is not an error worth logging.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if _, err := tx.Exec(ctx, sqlInsertRun,
		run.RunID, run.ModuleKey, run.TaskKey,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Summary.Succeeded, run.Summary.Failed, run.Summary.Skipped,
		run.Aborted,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := s.persistResults(ctx, tx, run.RunID, run.Results); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Debug("Run persisted",
		zap.String("run_id", run.RunID),
		zap.Int("records", len(run.Results)))
	return nil
}

func (s *Store) persistResults(ctx context.Context, tx pgx.Tx, runID string, results []schemas.RecordResult) error {
	if len(results) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(results))
	for i, r := range results {
		rows[i] = []interface{}{
			runID, r.Index, r.RecordID,
			string(r.Status.Code), r.Status.Reason,
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"record_results"},
		[]string{"run_id", "row_index", "record_id", "status", "reason"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy record results: %w", err)
	}
	if int(copyCount) != len(results) {
		return fmt.Errorf("mismatch in copied result count: expected %d, got %d", len(results), copyCount)
	}

	return nil
}
