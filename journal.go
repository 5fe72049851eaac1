package refreshflow

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Journal persists finished batches into MySQL so outcomes survive the
// process. The core never reads these rows back; they exist for alerting and
// retry-by-hand. See schema.sql for the expected tables.
type Journal struct {
	db     *sql.DB
	dbName string
}

// NewJournal wraps a user-provided database connection. dbName is the schema
// holding the batches and batch_items tables.
func NewJournal(db *sql.DB, dbName string) *Journal {
	return &Journal{db: db, dbName: dbName}
}

// Record inserts one row per batch and one per item, in a single transaction.
func (j *Journal) Record(ctx context.Context, br *BatchResult) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting journal TX: %w", err)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s.batches (batch_id, item_count, succeeded_count, started_at, finished_at) VALUES (?, ?, ?, ?, ?)",
		j.dbName,
	)
	_, err = tx.ExecContext(ctx, query,
		br.BatchID,
		len(br.Results),
		len(br.Succeeded()),
		br.StartedAt.UTC().Round(time.Microsecond),
		br.FinishedAt.UTC().Round(time.Microsecond),
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("inserting batch %s: %w", br.BatchID, err)
	}

	itemQuery := fmt.Sprintf(
		"INSERT INTO %s.batch_items (batch_id, idx, kind, resource_id, job_id, outcome, error_output, last_checked_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		j.dbName,
	)
	for _, res := range br.Results {
		var resourceID, jobID *string
		var lastChecked *time.Time
		if res.Handle != nil {
			resourceID = &res.Handle.ResourceID
			jobID = &res.Handle.JobID
			if !res.Handle.LastCheckedAt.IsZero() {
				t := res.Handle.LastCheckedAt.UTC().Round(time.Microsecond)
				lastChecked = &t
			}
		}

		var errorOutput *string
		if res.Err != nil {
			msg := res.Err.Error()
			if msg != "" {
				errorOutput = &msg
			}
		}

		_, err = tx.ExecContext(ctx, itemQuery,
			br.BatchID,
			res.Index,
			string(res.Ref.Kind),
			resourceID,
			jobID,
			string(res.Outcome),
			errorOutput,
			lastChecked,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting item %d of batch %s: %w", res.Index, br.BatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing journal TX for batch %s: %w", br.BatchID, err)
	}
	return nil
}
