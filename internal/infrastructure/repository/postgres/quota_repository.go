package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	qb "github.com/matchpulse/ingest/internal/platform/querybuilder"
)

// QuotaRepository persists the per-provider request counter so a restart
// keeps the local view of the window budget aligned with the provider's.
type QuotaRepository struct {
	db *sqlx.DB
}

func NewQuotaRepository(db *sqlx.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

func (r *QuotaRepository) Get(ctx context.Context, provider string) (time.Time, int, bool, error) {
	query, args, err := qb.Select("window_start", "used").From("provider_quota").
		Where(qb.Eq("provider", provider)).
		Limit(1).
		ToSQL()
	if err != nil {
		return time.Time{}, 0, false, fmt.Errorf("build select provider quota query: %w", err)
	}

	var row providerQuotaTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return time.Time{}, 0, false, nil
		}
		return time.Time{}, 0, false, fmt.Errorf("select provider quota provider=%s: %w", provider, err)
	}

	return row.WindowStart.UTC(), row.Used, true, nil
}

func (r *QuotaRepository) Save(ctx context.Context, provider string, windowStart time.Time, used int) error {
	insertModel := providerQuotaInsertModel{
		Provider:    provider,
		WindowStart: windowStart.UTC(),
		Used:        used,
	}

	query, args, err := qb.InsertModel("provider_quota", insertModel, `ON CONFLICT (provider)
DO UPDATE SET
    window_start = EXCLUDED.window_start,
    used = EXCLUDED.used,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert provider quota query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert provider quota provider=%s: %w", provider, err)
	}

	return nil
}

type providerQuotaTableModel struct {
	Provider    string    `db:"provider"`
	WindowStart time.Time `db:"window_start"`
	Used        int       `db:"used"`
}

type providerQuotaInsertModel struct {
	Provider    string    `db:"provider"`
	WindowStart time.Time `db:"window_start"`
	Used        int       `db:"used"`
}
