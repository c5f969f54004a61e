package fightapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/matchpulse/ingest/internal/domain/event"
)

// MalformedRecordError marks a record that failed shape validation. The raw
// payload rides along so the batch log keeps enough context for diagnosis.
type MalformedRecordError struct {
	Reason string
	Raw    []byte
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed fight record: %s", e.Reason)
}

var fightDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
}

// normalizeFight validates the participant pair and builds a canonical event.
// Missing optional sub-fields (records, winner, method, stats) never abort the
// record; a missing or mistyped participant pair does.
func normalizeFight(item datedRecord) (event.Event, error) {
	var record fightRecord
	if err := fightJSON.Unmarshal(item.Raw, &record); err != nil {
		return event.Event{}, &MalformedRecordError{Reason: "undecodable record: " + err.Error(), Raw: item.Raw}
	}

	fighterA := strings.TrimSpace(record.Fighter1)
	fighterB := strings.TrimSpace(record.Fighter2)
	if fighterA == "" || fighterB == "" {
		return event.Event{}, &MalformedRecordError{Reason: "participant pair is incomplete", Raw: item.Raw}
	}

	startsAt, dateKey, ok := resolveFightDate(record.Date, item.DateKey)
	if !ok {
		return event.Event{}, &MalformedRecordError{Reason: "no parseable date", Raw: item.Raw}
	}

	details := &event.CombatDetails{
		WeightClass: strings.TrimSpace(record.WeightClass),
		Rounds:      record.Rounds,
		Winner:      strings.TrimSpace(record.Winner),
		Method:      strings.TrimSpace(record.Method),
		EndRound:    record.EndRound,
		EndTime:     strings.TrimSpace(record.EndTime),
		TitleFight:  record.TitleFight,
	}
	if record.Fighter1Stats != nil {
		details.FighterARecord = strings.TrimSpace(record.Fighter1Stats.Record)
	}
	if record.Fighter2Stats != nil {
		details.FighterBRecord = strings.TrimSpace(record.Fighter2Stats.Record)
	}

	return event.Event{
		Sport:       event.SportMMA,
		ExternalID:  record.ID,
		Fingerprint: event.Fingerprint(fighterA, fighterB, dateKey),
		HomeName:    fighterA,
		AwayName:    fighterB,
		StartsAt:    startsAt,
		Status:      mapFightStatus(record.Status, details.Winner),
		Competition: strings.TrimSpace(record.Event),
		Venue:       strings.TrimSpace(record.Location),
		Season:      dateKey[:4],
		Details:     event.Details{Combat: details},
	}, nil
}

// resolveFightDate prefers the record's own date field and falls back to the
// grouping key the record arrived under.
func resolveFightDate(recordDate, groupKey string) (time.Time, string, bool) {
	for _, candidate := range []string{strings.TrimSpace(recordDate), strings.TrimSpace(groupKey)} {
		if candidate == "" {
			continue
		}
		for _, layout := range fightDateLayouts {
			parsed, err := time.Parse(layout, candidate)
			if err != nil {
				continue
			}
			parsed = parsed.UTC()
			return parsed, parsed.Format("2006-01-02"), true
		}
	}
	return time.Time{}, "", false
}

func mapFightStatus(raw, winner string) string {
	status := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case event.IsFinishedStatus(status) || status == "COMPLETED":
		return event.StatusFinished
	case event.IsLiveStatus(status) || status == "IN_PROGRESS":
		return event.StatusLive
	case event.IsCancelledLikeStatus(status):
		return event.StatusCancelled
	case status == "" && winner != "":
		// Historical payloads often omit status; a recorded winner means the
		// fight happened.
		return event.StatusFinished
	case status == "" || status == "UPCOMING":
		return event.StatusScheduled
	default:
		return status
	}
}
