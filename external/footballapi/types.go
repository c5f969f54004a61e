package footballapi

// Wire shapes for the league-fixture provider. One endpoint, one envelope;
// every fixture carries a stable numeric id.

type fixturesEnvelope struct {
	Results  int           `json:"results"`
	Response []fixtureItem `json:"response"`
	Errors   any           `json:"errors"`
}

type fixtureItem struct {
	Fixture fixtureCore   `json:"fixture"`
	League  fixtureLeague `json:"league"`
	Teams   fixtureTeams  `json:"teams"`
	Goals   fixtureGoals  `json:"goals"`
	Score   fixtureScore  `json:"score"`
}

type fixtureCore struct {
	ID       int64         `json:"id"`
	Date     string        `json:"date"` // RFC3339
	Referee  string        `json:"referee"`
	Status   fixtureStatus `json:"status"`
	Venue    fixtureVenue  `json:"venue"`
	Timezone string        `json:"timezone"`
}

type fixtureStatus struct {
	Short   string `json:"short"`
	Long    string `json:"long"`
	Elapsed *int   `json:"elapsed"`
}

type fixtureVenue struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

type fixtureLeague struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Season int    `json:"season"`
	Round  string `json:"round"`
	Logo   string `json:"logo"`
}

type fixtureTeams struct {
	Home fixtureTeam `json:"home"`
	Away fixtureTeam `json:"away"`
}

type fixtureTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type fixtureGoals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type fixtureScore struct {
	Halftime fixtureGoals `json:"halftime"`
	Fulltime fixtureGoals `json:"fulltime"`
}
