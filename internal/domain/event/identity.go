package event

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

type IdentityKind string

const (
	IdentityExternalID  IdentityKind = "external_id"
	IdentityFingerprint IdentityKind = "fingerprint"
)

// Identity is the dedup key for one event. Kind selects which store lookup
// applies.
type Identity struct {
	Kind        IdentityKind
	ExternalID  int64
	Fingerprint string
}

// ResolveIdentity picks the authoritative identity path: the provider's
// stable id when present, otherwise the derived participant fingerprint.
func ResolveIdentity(item Event) Identity {
	if item.ExternalID > 0 {
		return Identity{Kind: IdentityExternalID, ExternalID: item.ExternalID}
	}
	fingerprint := item.Fingerprint
	if fingerprint == "" {
		fingerprint = Fingerprint(item.HomeName, item.AwayName, item.StartsAt.Format("2006-01-02"))
	}
	return Identity{Kind: IdentityFingerprint, Fingerprint: fingerprint}
}

// Fingerprint derives an order-independent identity key from the participant
// pair and a date key. Participants are normalized and sorted so that
// A-vs-B and B-vs-A resolve to the same key regardless of provider field
// order.
func Fingerprint(participantA, participantB, dateKey string) string {
	first := normalizeParticipant(participantA)
	second := normalizeParticipant(participantB)
	if second < first {
		first, second = second, first
	}

	sum := sha256.Sum256([]byte(first + "|" + second + "|" + strings.TrimSpace(dateKey)))
	return hex.EncodeToString(sum[:])
}

func normalizeParticipant(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), " ")
}
