package fightapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	resty "github.com/go-resty/resty/v2"

	"github.com/matchpulse/ingest/internal/domain/event"
	"github.com/matchpulse/ingest/internal/domain/rawdata"
	"github.com/matchpulse/ingest/internal/platform/logging"
	"github.com/matchpulse/ingest/internal/platform/quota"
	"github.com/matchpulse/ingest/internal/platform/resilience"
	"github.com/matchpulse/ingest/internal/usecase"
)

const (
	defaultBaseURL   = "https://api.fightdata.example/v1"
	defaultThreshold = 50
	sourceName       = "fightapi"
)

var (
	errFightTransient  = crerr.New("fight provider transient failure")
	errUnexpectedShape = crerr.New("unexpected fight payload shape")
)

// ProviderError is a non-2xx, non-404 provider response. A 404 is data, not
// an error: it means "no fights for this query" and feeds the cascade.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("fight provider status=%d: %s", e.Status, e.Message)
}

type ClientConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	Threshold int
	// KnownEventDates is the fixed list of historical event dates probed by
	// the last cascade strategy, formatted YYYY-MM-DD.
	KnownEventDates []string
	Logger          *logging.Logger
	Governor        *quota.Governor
	Breaker         resilience.BreakerConfig
}

// Client wraps the combat-sport provider. The provider has no reliable
// bulk-by-range endpoint, so CollectYear runs a fallback cascade of fetch
// strategies and short-circuits once the threshold is met.
type Client struct {
	rest           *resty.Client
	threshold      int
	knownDates     []string
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

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	breakerCfg := resilience.NormalizeBreakerConfig(cfg.Breaker)

	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("accept", "application/json").
		SetHeader("x-api-key", strings.TrimSpace(cfg.APIKey)).
		SetRetryCount(0) // a retry would double-charge the quota counter

	return &Client{
		rest:           rest,
		threshold:      threshold,
		knownDates:     append([]string(nil), cfg.KnownEventDates...),
		logger:         logger,
		governor:       cfg.Governor,
		breaker:        resilience.NewBreaker(breakerCfg),
		breakerEnabled: breakerCfg.Enabled,
	}
}

// CollectYear gathers fights for one target year:
//
//  1. fights-by-year for the primary year,
//  2. if below threshold, prior year merged in,
//  3. if still below, each known historical event date probed individually.
//
// Per-date probe failures are recorded in the report and do not abort the
// cascade; year-level fetch failures and quota exhaustion do.
func (c *Client) CollectYear(ctx context.Context, year int) ([]event.Event, usecase.CascadeReport, []rawdata.Payload, error) {
	report := usecase.CascadeReport{Threshold: c.threshold, PrimaryYear: year}
	if year <= 0 {
		return nil, report, nil, fmt.Errorf("%w: year must be greater than zero", usecase.ErrInvalidInput)
	}

	var (
		events   []event.Event
		seen     = map[string]struct{}{}
		payloads []rawdata.Payload
	)

	records, payload, err := c.fightsByYear(ctx, year)
	if err != nil {
		return nil, report, nil, fmt.Errorf("fetch fights year=%d: %w", year, err)
	}
	if payload.Source != "" {
		payloads = append(payloads, payload)
	}
	report.PrimaryCount = c.mergeRecords(ctx, records, &events, seen, &report)
	if len(events) >= c.threshold {
		report.Merged = len(events)
		return events, report, payloads, nil
	}

	prior := year - 1
	report.PriorYear = prior
	records, payload, err = c.fightsByYear(ctx, prior)
	if err != nil {
		return nil, report, payloads, fmt.Errorf("fetch fights year=%d: %w", prior, err)
	}
	if payload.Source != "" {
		payloads = append(payloads, payload)
	}
	report.PriorCount = c.mergeRecords(ctx, records, &events, seen, &report)
	if len(events) >= c.threshold {
		report.Merged = len(events)
		return events, report, payloads, nil
	}

	for _, date := range c.knownDates {
		probe := usecase.DateProbe{Date: date}
		records, payload, err = c.fightsByDate(ctx, date)
		switch {
		case err != nil && stderrors.Is(err, quota.ErrExhausted):
			probe.Error = err.Error()
			report.DateProbes = append(report.DateProbes, probe)
			report.Merged = len(events)
			return events, report, payloads, err
		case err != nil:
			probe.Error = err.Error()
			c.logger.WarnContext(ctx, "fight date probe failed", "date", date, "error", err)
		default:
			if payload.Source != "" {
				payloads = append(payloads, payload)
			}
			probe.Count = c.mergeRecords(ctx, records, &events, seen, &report)
		}
		report.DateProbes = append(report.DateProbes, probe)
	}

	report.Merged = len(events)
	return events, report, payloads, nil
}

// mergeRecords normalizes raw records into the accumulator, deduplicating by
// identity key across strategies. Returns the number of records added.
func (c *Client) mergeRecords(ctx context.Context, records []datedRecord, events *[]event.Event, seen map[string]struct{}, report *usecase.CascadeReport) int {
	added := 0
	for _, record := range records {
		normalized, err := normalizeFight(record)
		if err != nil {
			report.Malformed++
			c.logger.WarnContext(ctx, "skip malformed fight record", "error", err, "raw", string(record.Raw))
			continue
		}

		key := identityKey(normalized)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		*events = append(*events, normalized)
		added++
	}
	return added
}

func (c *Client) fightsByYear(ctx context.Context, year int) ([]datedRecord, rawdata.Payload, error) {
	return c.fetchFights(ctx, map[string]string{"year": strconv.Itoa(year)})
}

func (c *Client) fightsByDate(ctx context.Context, date string) ([]datedRecord, rawdata.Payload, error) {
	return c.fetchFights(ctx, map[string]string{"date": date})
}

func (c *Client) fetchFights(ctx context.Context, params map[string]string) ([]datedRecord, rawdata.Payload, error) {
	if c.breakerEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fight circuit breaker rejected request", "state", c.breaker.State())
			return nil, rawdata.Payload{}, fmt.Errorf("%w: fight provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	if c.governor != nil {
		if _, err := c.governor.Acquire(ctx); err != nil {
			return nil, rawdata.Payload{}, err
		}
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/fights")
	if err != nil {
		reqErr := fmt.Errorf("%w: send request: %v", errFightTransient, err)
		c.recordBreaker(reqErr)
		c.logger.WarnContext(ctx, "fight request failed", "params", params, "error", reqErr)
		return nil, rawdata.Payload{}, reqErr
	}

	status := resp.StatusCode()
	raw := resp.Body()
	switch {
	case status == http.StatusNotFound:
		// No data for this query. Feeds the cascade's next strategy.
		c.recordBreaker(nil)
		return nil, rawdata.Payload{}, nil
	case status >= 200 && status < 300:
		c.recordBreaker(nil)
	default:
		provErr := error(&ProviderError{Status: status, Message: abbreviateBody(raw)})
		if isRetryableStatus(status) {
			provErr = fmt.Errorf("%w: %v", errFightTransient, provErr)
		}
		c.recordBreaker(provErr)
		return nil, rawdata.Payload{}, provErr
	}

	records, err := decodeFights(raw)
	if err != nil {
		return nil, rawdata.Payload{}, fmt.Errorf("decode fight payload: %w", err)
	}
	return records, buildAPIPayload(params, raw), nil
}

func (c *Client) recordBreaker(err error) {
	if !c.breakerEnabled {
		return
	}
	if err != nil && stderrors.Is(err, errFightTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func identityKey(item event.Event) string {
	if item.ExternalID > 0 {
		return "id:" + strconv.FormatInt(item.ExternalID, 10)
	}
	return "fp:" + item.Fingerprint
}

func buildAPIPayload(params map[string]string, raw []byte) rawdata.Payload {
	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	return rawdata.Payload{
		Source:          sourceName,
		EntityType:      "api_response",
		EntityKey:       "/fights?" + values.Encode(),
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
