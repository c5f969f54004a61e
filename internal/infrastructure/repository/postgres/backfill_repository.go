package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/ingest/internal/domain/backfill"
	qb "github.com/matchpulse/ingest/internal/platform/querybuilder"
)

type BackfillRepository struct {
	db *sqlx.DB
}

func NewBackfillRepository(db *sqlx.DB) *BackfillRepository {
	return &BackfillRepository{db: db}
}

func (r *BackfillRepository) UpsertOutcome(ctx context.Context, outcome backfill.Outcome) error {
	insertModel := backfillRunInsertModel{
		PhaseKey:     outcome.PhaseKey,
		Competition:  outcome.Competition,
		Season:       outcome.Season,
		State:        string(outcome.State),
		Imported:     outcome.Imported,
		Skipped:      outcome.Skipped,
		Errors:       outcome.Errors,
		ErrorMessage: nullableString(outcome.ErrorMessage),
		StartedAt:    outcome.StartedAt.UTC(),
		FinishedAt:   outcome.FinishedAt,
		TraceID:      nullableString(outcome.TraceID),
	}

	query, args, err := qb.InsertModel("backfill_runs", insertModel, `ON CONFLICT (phase_key)
DO UPDATE SET
    state = EXCLUDED.state,
    imported = EXCLUDED.imported,
    skipped = EXCLUDED.skipped,
    errors = EXCLUDED.errors,
    error_message = EXCLUDED.error_message,
    started_at = EXCLUDED.started_at,
    finished_at = EXCLUDED.finished_at,
    trace_id = EXCLUDED.trace_id,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert backfill run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert backfill run phase=%s: %w", outcome.PhaseKey, err)
	}

	return nil
}

func (r *BackfillRepository) ListOutcomes(ctx context.Context) ([]backfill.Outcome, error) {
	query, args, err := qb.Select("*").From("backfill_runs").
		OrderBy("competition", "season").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list backfill runs query: %w", err)
	}

	var rows []backfillRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list backfill runs: %w", err)
	}

	out := make([]backfill.Outcome, 0, len(rows))
	for _, row := range rows {
		out = append(out, backfill.Outcome{
			PhaseKey:     row.PhaseKey,
			Competition:  row.Competition,
			Season:       row.Season,
			State:        backfill.PhaseState(row.State),
			Imported:     row.Imported,
			Skipped:      row.Skipped,
			Errors:       row.Errors,
			ErrorMessage: row.ErrorMessage.String,
			StartedAt:    row.StartedAt.UTC(),
			FinishedAt:   row.FinishedAt,
			TraceID:      row.TraceID.String,
		})
	}

	return out, nil
}

type backfillRunTableModel struct {
	PhaseKey     string         `db:"phase_key"`
	Competition  string         `db:"competition"`
	Season       string         `db:"season"`
	State        string         `db:"state"`
	Imported     int            `db:"imported"`
	Skipped      int            `db:"skipped"`
	Errors       int            `db:"errors"`
	ErrorMessage sql.NullString `db:"error_message"`
	StartedAt    time.Time      `db:"started_at"`
	FinishedAt   *time.Time     `db:"finished_at"`
	TraceID      sql.NullString `db:"trace_id"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type backfillRunInsertModel struct {
	PhaseKey     string     `db:"phase_key"`
	Competition  string     `db:"competition"`
	Season       string     `db:"season"`
	State        string     `db:"state"`
	Imported     int        `db:"imported"`
	Skipped      int        `db:"skipped"`
	Errors       int        `db:"errors"`
	ErrorMessage *string    `db:"error_message"`
	StartedAt    time.Time  `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"`
	TraceID      *string    `db:"trace_id"`
}
