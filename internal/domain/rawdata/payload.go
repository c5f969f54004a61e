package rawdata

import "time"

// Payload is one archived provider response, kept verbatim so malformed
// records and zero-result cascades can be diagnosed after the fact.
type Payload struct {
	Source          string
	EntityType      string
	EntityKey       string
	PayloadJSON     string
	SourceFetchedAt time.Time
}
