package postgres

import (
	"database/sql"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/matchpulse/ingest/internal/domain/event"
)

type eventTableModel struct {
	ID          string         `db:"id"`
	Sport       string         `db:"sport"`
	ExternalID  sql.NullInt64  `db:"external_id"`
	Fingerprint sql.NullString `db:"fingerprint"`
	HomeName    string         `db:"home_name"`
	AwayName    string         `db:"away_name"`
	HomeScore   sql.NullInt64  `db:"home_score"`
	AwayScore   sql.NullInt64  `db:"away_score"`
	StartsAt    time.Time      `db:"starts_at"`
	Status      string         `db:"status"`
	Competition string         `db:"competition"`
	Season      string         `db:"season"`
	Venue       string         `db:"venue"`
	HomeLogoURL string         `db:"home_logo_url"`
	AwayLogoURL string         `db:"away_logo_url"`
	Details     string         `db:"details"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type eventInsertModel struct {
	ID          string         `db:"id"`
	Sport       string         `db:"sport"`
	ExternalID  *int64         `db:"external_id"`
	Fingerprint *string        `db:"fingerprint"`
	HomeName    string         `db:"home_name"`
	AwayName    string         `db:"away_name"`
	HomeScore   *int           `db:"home_score"`
	AwayScore   *int           `db:"away_score"`
	StartsAt    time.Time      `db:"starts_at"`
	Status      string         `db:"status"`
	Competition string         `db:"competition"`
	Season      string         `db:"season"`
	Venue       string         `db:"venue"`
	HomeLogoURL string         `db:"home_logo_url"`
	AwayLogoURL string         `db:"away_logo_url"`
	Details     string         `db:"details"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func toEventInsertModel(item event.Event) eventInsertModel {
	return eventInsertModel{
		ID:          item.ID,
		Sport:       item.Sport,
		ExternalID:  nullableInt64(item.ExternalID),
		Fingerprint: nullableString(item.Fingerprint),
		HomeName:    item.HomeName,
		AwayName:    item.AwayName,
		HomeScore:   item.HomeScore,
		AwayScore:   item.AwayScore,
		StartsAt:    item.StartsAt.UTC(),
		Status:      item.Status,
		Competition: item.Competition,
		Season:      item.Season,
		Venue:       item.Venue,
		HomeLogoURL: item.HomeLogoURL,
		AwayLogoURL: item.AwayLogoURL,
		Details:     encodeEventDetails(item.Details),
		CreatedAt:   item.CreatedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
	}
}

func toDomainEvent(row eventTableModel) event.Event {
	return event.Event{
		ID:          row.ID,
		Sport:       row.Sport,
		ExternalID:  nullInt64ToInt64(row.ExternalID),
		Fingerprint: row.Fingerprint.String,
		HomeName:    row.HomeName,
		AwayName:    row.AwayName,
		HomeScore:   nullInt64ToIntPtr(row.HomeScore),
		AwayScore:   nullInt64ToIntPtr(row.AwayScore),
		StartsAt:    row.StartsAt.UTC(),
		Status:      row.Status,
		Competition: row.Competition,
		Season:      row.Season,
		Venue:       row.Venue,
		HomeLogoURL: row.HomeLogoURL,
		AwayLogoURL: row.AwayLogoURL,
		Details:     decodeEventDetails(row.Details),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func encodeEventDetails(details event.Details) string {
	if details.IsZero() {
		return "{}"
	}
	encoded, err := sonic.Marshal(details)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func decodeEventDetails(raw string) event.Details {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return event.Details{}
	}
	var out event.Details
	if err := sonic.Unmarshal([]byte(raw), &out); err != nil {
		return event.Details{}
	}
	return out
}

func nullableInt64(value int64) *int64 {
	if value <= 0 {
		return nil
	}
	v := value
	return &v
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	v := value
	return &v
}

func nullInt64ToInt64(value sql.NullInt64) int64 {
	if !value.Valid {
		return 0
	}
	return value.Int64
}

func nullInt64ToIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}
