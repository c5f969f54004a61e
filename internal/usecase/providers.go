package usecase

import (
	"context"
	"time"

	"github.com/matchpulse/ingest/internal/domain/event"
	"github.com/matchpulse/ingest/internal/domain/rawdata"
)

// FixtureProvider is the league-fixture source. One endpoint, one shape,
// stable external ids.
type FixtureProvider interface {
	FetchFinishedFixtures(ctx context.Context, leagueID int64, season int) ([]event.Event, rawdata.Payload, error)
	FetchFixturesByDate(ctx context.Context, day time.Time, onlyFinished bool) ([]event.Event, rawdata.Payload, error)
}

// FixtureProber issues single-fixture lookups for the live poller.
type FixtureProber interface {
	FetchFixtureByID(ctx context.Context, externalID int64) (event.Event, bool, error)
}

// FightProvider is the combat-sport source. CollectYear runs the provider's
// fallback cascade and reports per-strategy diagnostics.
type FightProvider interface {
	CollectYear(ctx context.Context, year int) ([]event.Event, CascadeReport, []rawdata.Payload, error)
}

// CascadeReport explains how the combat-sport fallback cascade arrived at its
// result, so an operator can see why zero fights came back.
type CascadeReport struct {
	Threshold    int         `json:"threshold"`
	PrimaryYear  int         `json:"primaryYear"`
	PrimaryCount int         `json:"primaryCount"`
	PriorYear    int         `json:"priorYear,omitempty"`
	PriorCount   int         `json:"priorCount,omitempty"`
	DateProbes   []DateProbe `json:"dateProbes,omitempty"`
	Malformed    int         `json:"malformed"`
	Merged       int         `json:"merged"`
}

type DateProbe struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}
