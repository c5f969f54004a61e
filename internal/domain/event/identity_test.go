package event

import (
	"testing"
	"time"
)

func TestFingerprint_OrderIndependent(t *testing.T) {
	t.Parallel()

	left := Fingerprint("Jon Jones", "Stipe Miocic", "2024-11-16")
	right := Fingerprint("Stipe Miocic", "Jon Jones", "2024-11-16")
	if left != right {
		t.Fatalf("fingerprint must be order independent: %s != %s", left, right)
	}
}

func TestFingerprint_NormalizesCaseAndSpacing(t *testing.T) {
	t.Parallel()

	left := Fingerprint("  jon   JONES ", "Stipe Miocic", "2024-11-16")
	right := Fingerprint("Jon Jones", "stipe miocic", "2024-11-16")
	if left != right {
		t.Fatalf("fingerprint must normalize participant names: %s != %s", left, right)
	}
}

func TestFingerprint_DistinctDatesDiffer(t *testing.T) {
	t.Parallel()

	left := Fingerprint("Jon Jones", "Stipe Miocic", "2024-11-16")
	right := Fingerprint("Jon Jones", "Stipe Miocic", "2024-11-17")
	if left == right {
		t.Fatal("fingerprint must separate rematches on different dates")
	}
}

func TestResolveIdentity_PrefersExternalID(t *testing.T) {
	t.Parallel()

	identity := ResolveIdentity(Event{
		Sport:      SportFootball,
		ExternalID: 8899,
		HomeName:   "Arsenal",
		AwayName:   "Chelsea",
		StartsAt:   time.Date(2024, 8, 17, 15, 0, 0, 0, time.UTC),
	})
	if identity.Kind != IdentityExternalID {
		t.Fatalf("expected external id identity, got %s", identity.Kind)
	}
	if identity.ExternalID != 8899 {
		t.Fatalf("unexpected external id: %d", identity.ExternalID)
	}
}

func TestResolveIdentity_FallsBackToFingerprint(t *testing.T) {
	t.Parallel()

	startsAt := time.Date(2024, 11, 16, 23, 0, 0, 0, time.UTC)
	identity := ResolveIdentity(Event{
		Sport:    SportMMA,
		HomeName: "Jon Jones",
		AwayName: "Stipe Miocic",
		StartsAt: startsAt,
	})
	if identity.Kind != IdentityFingerprint {
		t.Fatalf("expected fingerprint identity, got %s", identity.Kind)
	}
	if identity.Fingerprint != Fingerprint("Stipe Miocic", "Jon Jones", "2024-11-16") {
		t.Fatal("derived fingerprint does not match the swapped-order derivation")
	}
}

func TestStatusFamilies(t *testing.T) {
	t.Parallel()

	if !IsLiveStatus("1h") || !IsLiveStatus("HT") || IsLiveStatus("FT") {
		t.Fatal("live status family mismatch")
	}
	if !IsFinishedStatus("FT") || !IsFinishedStatus("FINISHED") || IsFinishedStatus("LIVE") {
		t.Fatal("finished status family mismatch")
	}
	if !IsCancelledLikeStatus("postponed") || IsCancelledLikeStatus("SCHEDULED") {
		t.Fatal("cancelled-like status family mismatch")
	}
}
