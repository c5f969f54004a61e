package backfill

import (
	"fmt"
	"strconv"
	"time"
)

type PhaseState string

const (
	StatePending PhaseState = "pending"
	StateRunning PhaseState = "running"
	StateDone    PhaseState = "done"
	StateFailed  PhaseState = "failed"
)

// Phase is one (competition, season) unit of historical backfill work,
// independently resumable.
type Phase struct {
	Index         int    `json:"index"`
	Competition   string `json:"competition"`
	CompetitionID int64  `json:"competitionId"`
	Season        int    `json:"season"`
}

// Key identifies a phase across runs, independent of plan index.
func (p Phase) Key() string {
	return fmt.Sprintf("%s:%d", p.Competition, p.Season)
}

func (p Phase) SeasonLabel() string {
	return strconv.Itoa(p.Season)
}

// Outcome is the persisted record of one phase run.
type Outcome struct {
	PhaseKey     string     `json:"phaseKey"`
	Competition  string     `json:"competition"`
	Season       string     `json:"season"`
	State        PhaseState `json:"state"`
	Imported     int        `json:"imported"`
	Skipped      int        `json:"skipped"`
	Errors       int        `json:"errors"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
	TraceID      string     `json:"traceId,omitempty"`
}
