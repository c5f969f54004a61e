package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/ingest/internal/domain/event"
	qb "github.com/matchpulse/ingest/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByExternalID(ctx context.Context, sport string, externalID int64) (event.Event, bool, error) {
	query, args, err := qb.Select("*").From("events").
		Where(
			qb.Eq("sport", sport),
			qb.Eq("external_id", externalID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build select event by external id query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("select event by external id: %w", err)
	}

	return toDomainEvent(row), true, nil
}

func (r *EventRepository) GetByFingerprint(ctx context.Context, sport string, fingerprint string) (event.Event, bool, error) {
	query, args, err := qb.Select("*").From("events").
		Where(
			qb.Eq("sport", sport),
			qb.Eq("fingerprint", fingerprint),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build select event by fingerprint query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("select event by fingerprint: %w", err)
	}

	return toDomainEvent(row), true, nil
}

func (r *EventRepository) Insert(ctx context.Context, item event.Event) error {
	query, args, err := qb.InsertModel("events", toEventInsertModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert event query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert event sport=%s home=%s away=%s: %w", item.Sport, item.HomeName, item.AwayName, err)
	}
	return nil
}

func (r *EventRepository) UpdateStatusScore(ctx context.Context, id string, status string, homeScore, awayScore *int) error {
	query, args, err := qb.Update("events").
		Set("status", status).
		Set("home_score", homeScore).
		Set("away_score", awayScore).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update event status query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update event status id=%s: %w", id, err)
	}
	return nil
}

func (r *EventRepository) GroupCountBySeason(ctx context.Context, sport string) ([]event.GroupCount, error) {
	query, args, err := qb.Select("competition", "season", "COUNT(*) AS total").From("events").
		Where(qb.Eq("sport", sport)).
		GroupBy("competition", "season").
		OrderBy("competition", "season").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build group events by season query: %w", err)
	}

	var rows []eventGroupCountModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("group events by season: %w", err)
	}

	out := make([]event.GroupCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, event.GroupCount{
			Competition: row.Competition,
			Season:      row.Season,
			Count:       row.Total,
		})
	}

	return out, nil
}

func (r *EventRepository) ListActiveSince(ctx context.Context, since time.Time, limit int) ([]event.Event, error) {
	liveSet := event.LiveStatuses()
	statuses := make([]any, 0, len(liveSet))
	for _, status := range liveSet {
		statuses = append(statuses, status)
	}

	query, args, err := qb.Select("*").From("events").
		Where(
			qb.Gte("starts_at", since.UTC()),
			qb.Expr("starts_at <= NOW()"),
			qb.In("status", statuses),
		).
		OrderBy("starts_at", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active events query: %w", err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainEvent(row))
	}

	return out, nil
}

type eventGroupCountModel struct {
	Competition string `db:"competition"`
	Season      string `db:"season"`
	Total       int    `db:"total"`
}
