package event

import "testing"

func TestLiveStatuses_AgreeWithIsLiveStatus(t *testing.T) {
	t.Parallel()

	for _, status := range LiveStatuses() {
		if !IsLiveStatus(status) {
			t.Fatalf("status %q must be reported live", status)
		}
	}
	for _, status := range []string{StatusScheduled, StatusFinished, StatusCancelled, StatusPostponed, "FT"} {
		if IsLiveStatus(status) {
			t.Fatalf("status %q must not be reported live", status)
		}
	}
}
