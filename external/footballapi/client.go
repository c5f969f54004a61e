package footballapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/matchpulse/ingest/internal/domain/event"
	"github.com/matchpulse/ingest/internal/domain/rawdata"
	"github.com/matchpulse/ingest/internal/platform/logging"
	"github.com/matchpulse/ingest/internal/platform/quota"
	"github.com/matchpulse/ingest/internal/platform/resilience"
	"github.com/matchpulse/ingest/internal/usecase"
)

const (
	defaultBaseURL       = "https://v3.football.api-sports.io"
	finishedStatusFilter = "FT-AET-PEN"
	sourceName           = "footballapi"
)

var errFootballTransient = crerr.New("football provider transient failure")

// ProviderError is a non-2xx provider response. It is per-call: callers count
// it and move on rather than aborting the enclosing phase.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("football provider status=%d: %s", e.Status, e.Message)
}

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Logger     *logging.Logger
	Governor   *quota.Governor
	Breaker    resilience.BreakerConfig
}

// Client wraps the league-fixture provider. Every outbound call is charged
// against the quota governor before the request is issued.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	logger         *logging.Logger
	governor       *quota.Governor
	breaker        *resilience.Breaker
	breakerEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeBreakerConfig(cfg.Breaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		logger:         logger,
		governor:       cfg.Governor,
		breaker:        resilience.NewBreaker(breakerCfg),
		breakerEnabled: breakerCfg.Enabled,
	}
}

// FetchFinishedFixtures returns the finished fixtures of one league season.
// In-progress and scheduled fixtures are filtered server-side; they belong to
// the live poller, not the backfill path.
func (c *Client) FetchFinishedFixtures(ctx context.Context, leagueID int64, season int) ([]event.Event, rawdata.Payload, error) {
	if leagueID <= 0 {
		return nil, rawdata.Payload{}, fmt.Errorf("%w: league id must be greater than zero", usecase.ErrInvalidInput)
	}

	query := map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(season),
		"status": finishedStatusFilter,
	}
	var envelope fixturesEnvelope
	raw, err := c.doJSON(ctx, "/fixtures", query, &envelope)
	if err != nil {
		return nil, rawdata.Payload{}, fmt.Errorf("fetch fixtures league=%d season=%d: %w", leagueID, season, err)
	}

	events := make([]event.Event, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		mapped := mapFixture(item)
		if !event.IsFinishedStatus(mapped.Status) {
			continue
		}
		events = append(events, mapped)
	}
	return events, buildAPIPayload("/fixtures", query, raw), nil
}

// FetchFixturesByDate returns fixtures for one calendar day. The daily-sync
// path passes onlyFinished=true for yesterday's results.
func (c *Client) FetchFixturesByDate(ctx context.Context, day time.Time, onlyFinished bool) ([]event.Event, rawdata.Payload, error) {
	query := map[string]string{
		"date": day.UTC().Format("2006-01-02"),
	}
	if onlyFinished {
		query["status"] = finishedStatusFilter
	}

	var envelope fixturesEnvelope
	raw, err := c.doJSON(ctx, "/fixtures", query, &envelope)
	if err != nil {
		return nil, rawdata.Payload{}, fmt.Errorf("fetch fixtures date=%s: %w", query["date"], err)
	}

	events := make([]event.Event, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		mapped := mapFixture(item)
		if onlyFinished && !event.IsFinishedStatus(mapped.Status) {
			continue
		}
		events = append(events, mapped)
	}
	return events, buildAPIPayload("/fixtures", query, raw), nil
}

// FetchFixtureByID probes a single fixture for the live poller. A fixture the
// provider no longer returns reports found=false, not an error.
func (c *Client) FetchFixtureByID(ctx context.Context, externalID int64) (event.Event, bool, error) {
	if externalID <= 0 {
		return event.Event{}, false, fmt.Errorf("%w: fixture id must be greater than zero", usecase.ErrInvalidInput)
	}

	query := map[string]string{"id": strconv.FormatInt(externalID, 10)}
	var envelope fixturesEnvelope
	if _, err := c.doJSON(ctx, "/fixtures", query, &envelope); err != nil {
		return event.Event{}, false, fmt.Errorf("fetch fixture id=%d: %w", externalID, err)
	}
	if len(envelope.Response) == 0 {
		return event.Event{}, false, nil
	}
	return mapFixture(envelope.Response[0]), true, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.breakerEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "football circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: football provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	if c.governor != nil {
		if _, err := c.governor.Acquire(ctx); err != nil {
			return nil, err
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if c.breakerEnabled {
		if err != nil && stderrors.Is(err, errFootballTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return nil, err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}
	return raw, nil
}

// executeRequest issues exactly one attempt. Retrying here would double-charge
// the quota counter silently; retry/skip is the caller's decision.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("x-apisports-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reqErr := fmt.Errorf("%w: send request: %v", errFootballTransient, err)
		c.logger.WarnContext(ctx, "football request failed", "url", fullURL, "error", reqErr)
		return nil, reqErr
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errFootballTransient, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	provErr := &ProviderError{Status: resp.StatusCode, Message: abbreviateBody(raw)}
	if isRetryableStatus(resp.StatusCode) {
		c.logger.WarnContext(ctx, "football request failed", "url", fullURL, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %v", errFootballTransient, provErr)
	}
	return nil, provErr
}

func mapFixture(item fixtureItem) event.Event {
	startsAt, _ := time.Parse(time.RFC3339, item.Fixture.Date)

	details := &event.FootballDetails{
		Round:        strings.TrimSpace(item.League.Round),
		Referee:      strings.TrimSpace(item.Fixture.Referee),
		HalftimeHome: item.Score.Halftime.Home,
		HalftimeAway: item.Score.Halftime.Away,
		Elapsed:      item.Fixture.Status.Elapsed,
	}

	return event.Event{
		Sport:       event.SportFootball,
		ExternalID:  item.Fixture.ID,
		HomeName:    strings.TrimSpace(item.Teams.Home.Name),
		AwayName:    strings.TrimSpace(item.Teams.Away.Name),
		HomeScore:   item.Goals.Home,
		AwayScore:   item.Goals.Away,
		StartsAt:    startsAt.UTC(),
		Status:      mapStatus(item.Fixture.Status.Short),
		Competition: strings.TrimSpace(item.League.Name),
		Season:      strconv.Itoa(item.League.Season),
		Venue:       strings.TrimSpace(item.Fixture.Venue.Name),
		HomeLogoURL: strings.TrimSpace(item.Teams.Home.Logo),
		AwayLogoURL: strings.TrimSpace(item.Teams.Away.Logo),
		Details:     event.Details{Football: details},
	}
}

// mapStatus collapses the provider's short codes into the canonical status
// families. Unknown codes pass through uppercased so nothing is silently lost.
func mapStatus(short string) string {
	code := strings.ToUpper(strings.TrimSpace(short))
	switch {
	case code == "" || code == "NS" || code == "TBD":
		return event.StatusScheduled
	case event.IsLiveStatus(code):
		return event.StatusLive
	case event.IsFinishedStatus(code):
		return event.StatusFinished
	case code == "PST":
		return event.StatusPostponed
	case code == "CANC" || code == "ABD" || code == "AWD" || code == "WO":
		return event.StatusCancelled
	default:
		return code
	}
}

func buildAPIPayload(path string, query map[string]string, raw []byte) rawdata.Payload {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	entityKey := path
	if encoded := values.Encode(); encoded != "" {
		entityKey += "?" + encoded
	}
	return rawdata.Payload{
		Source:          sourceName,
		EntityType:      "api_response",
		EntityKey:       entityKey,
		PayloadJSON:     string(raw),
		SourceFetchedAt: time.Now().UTC(),
	}
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
