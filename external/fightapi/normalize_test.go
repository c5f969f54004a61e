package fightapi

import (
	"errors"
	"testing"

	"github.com/matchpulse/ingest/internal/domain/event"
)

func TestNormalizeFight_FullRecord(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"id": 0,
		"fighter1": "Alex Pereira",
		"fighter2": "Jiri Prochazka",
		"date": "2024-06-29",
		"event": "UFC 303",
		"location": "T-Mobile Arena",
		"status": "completed",
		"weight_class": "Light Heavyweight",
		"rounds": 5,
		"winner": "Alex Pereira",
		"method": "KO (head kick)",
		"end_round": 2,
		"end_time": "0:13",
		"title_fight": true,
		"fighter1_stats": {"record": "11-2-0"},
		"fighter2_stats": {"record": "30-5-1"}
	}`)

	normalized, err := normalizeFight(datedRecord{Raw: raw})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if normalized.Sport != event.SportMMA {
		t.Fatalf("unexpected sport %q", normalized.Sport)
	}
	if normalized.Status != event.StatusFinished {
		t.Fatalf("expected finished, got %q", normalized.Status)
	}
	if normalized.Fingerprint != event.Fingerprint("Alex Pereira", "Jiri Prochazka", "2024-06-29") {
		t.Fatal("fingerprint not derived from participants and date")
	}
	combat := normalized.Details.Combat
	if combat == nil {
		t.Fatal("expected combat details populated")
	}
	if combat.Method != "KO (head kick)" || combat.FighterARecord != "11-2-0" || !combat.TitleFight {
		t.Fatalf("unexpected details: %+v", combat)
	}
	if normalized.Season != "2024" {
		t.Fatalf("unexpected season %q", normalized.Season)
	}
}

func TestNormalizeFight_MissingOptionalFieldsDoNotAbort(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"fighter1": "A", "fighter2": "B", "date": "2023-11-11"}`)
	normalized, err := normalizeFight(datedRecord{Raw: raw})
	if err != nil {
		t.Fatalf("optional fields must not abort normalization: %v", err)
	}
	if normalized.Details.Combat == nil {
		t.Fatal("expected combat details branch set")
	}
	if normalized.Status != event.StatusScheduled {
		t.Fatalf("no status and no winner should map to scheduled, got %q", normalized.Status)
	}
}

func TestNormalizeFight_MissingParticipantIsMalformed(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"fighter1": "A", "date": "2023-11-11"}`)
	_, err := normalizeFight(datedRecord{Raw: raw})
	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedRecordError, got %v", err)
	}
	if len(malformed.Raw) == 0 {
		t.Fatal("malformed error must carry the raw record")
	}
}

func TestNormalizeFight_FallsBackToGroupDateKey(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"fighter1": "A", "fighter2": "B"}`)
	normalized, err := normalizeFight(datedRecord{DateKey: "2022-07-02", Raw: raw})
	if err != nil {
		t.Fatalf("normalize with group key: %v", err)
	}
	if normalized.StartsAt.Format("2006-01-02") != "2022-07-02" {
		t.Fatalf("expected group date key used, got %v", normalized.StartsAt)
	}
}

func TestNormalizeFight_WinnerImpliesFinished(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"fighter1": "A", "fighter2": "B", "date": "2021-01-23", "winner": "A"}`)
	normalized, err := normalizeFight(datedRecord{Raw: raw})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if normalized.Status != event.StatusFinished {
		t.Fatalf("recorded winner should imply finished, got %q", normalized.Status)
	}
}

func TestDecodeFights_BranchesOnShape(t *testing.T) {
	t.Parallel()

	flat, err := decodeFights([]byte(`[{"fighter1": "A", "fighter2": "B"}]`))
	if err != nil {
		t.Fatalf("decode flat array: %v", err)
	}
	if len(flat) != 1 || flat[0].DateKey != "" {
		t.Fatalf("unexpected flat decode: %+v", flat)
	}

	grouped, err := decodeFights([]byte(`{"2024-03-09": [{"fighter1": "A", "fighter2": "B"}, {"fighter1": "C", "fighter2": "D"}]}`))
	if err != nil {
		t.Fatalf("decode grouped object: %v", err)
	}
	if len(grouped) != 2 || grouped[0].DateKey != "2024-03-09" {
		t.Fatalf("unexpected grouped decode: %+v", grouped)
	}

	if _, err := decodeFights([]byte(`"nope"`)); err == nil {
		t.Fatal("expected shape error for scalar payload")
	}
}
