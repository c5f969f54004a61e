package event

import (
	"strings"
	"time"
)

const (
	SportFootball = "football"
	SportMMA      = "mma"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Event is the canonical representation of one fixture/fight, independent of
// the source provider shape. Exactly one identity path is authoritative:
// ExternalID when the provider assigns a stable id, Fingerprint otherwise.
type Event struct {
	ID          string
	Sport       string
	ExternalID  int64
	Fingerprint string
	HomeName    string
	AwayName    string
	HomeScore   *int
	AwayScore   *int
	StartsAt    time.Time
	Status      string
	Competition string
	Season      string
	Venue       string
	HomeLogoURL string
	AwayLogoURL string
	Details     Details
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Details carries source-specific extras as a sport-keyed union. At most one
// branch is set; consumers switch on the populated branch instead of probing
// an untyped blob.
type Details struct {
	Football *FootballDetails `json:"football,omitempty"`
	Combat   *CombatDetails   `json:"combat,omitempty"`
}

type FootballDetails struct {
	Round        string `json:"round,omitempty"`
	Referee      string `json:"referee,omitempty"`
	HalftimeHome *int   `json:"halftime_home,omitempty"`
	HalftimeAway *int   `json:"halftime_away,omitempty"`
	Elapsed      *int   `json:"elapsed,omitempty"`
}

type CombatDetails struct {
	WeightClass    string `json:"weight_class,omitempty"`
	Rounds         int    `json:"rounds,omitempty"`
	Winner         string `json:"winner,omitempty"`
	Method         string `json:"method,omitempty"`
	EndRound       int    `json:"end_round,omitempty"`
	EndTime        string `json:"end_time,omitempty"`
	FighterARecord string `json:"fighter_a_record,omitempty"`
	FighterBRecord string `json:"fighter_b_record,omitempty"`
	TitleFight     bool   `json:"title_fight,omitempty"`
}

func (d Details) IsZero() bool {
	return d.Football == nil && d.Combat == nil
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

var liveStatuses = []string{StatusLive, "IN_PLAY", "HT", "1H", "2H", "ET", "BT", "P"}

// LiveStatuses returns the status values that mark an event as started but
// not finished. The poller's store selection is restricted to this set.
func LiveStatuses() []string {
	return append([]string(nil), liveStatuses...)
}

func IsLiveStatus(status string) bool {
	normalized := NormalizeStatus(status)
	for _, candidate := range liveStatuses {
		if normalized == candidate {
			return true
		}
	}
	return false
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

func IsCancelledLikeStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusCancelled, StatusPostponed, "ABANDONED", "WALKOVER":
		return true
	default:
		return false
	}
}
