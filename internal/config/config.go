package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matchpulse/ingest/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                        string
	ServiceName                   string
	ServiceVersion                string
	HTTPAddr                      string
	DBURL                         string
	DBDisablePreparedBinaryResult bool
	ReadTimeout                   time.Duration
	WriteTimeout                  time.Duration
	LogLevel                      logging.Level

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	FootballAPIBaseURL            string
	FootballAPIKey                string
	FootballAPITimeout            time.Duration
	FootballDailyCeiling          int
	FootballCallsPerSecond        float64
	FootballBurst                 int
	FootballCircuitEnabled        bool
	FootballCircuitFailureCount   int
	FootballCircuitOpenTimeout    time.Duration
	FootballCircuitHalfOpenMaxReq int

	FightAPIBaseURL            string
	FightAPIKey                string
	FightAPITimeout            time.Duration
	FightMonthlyCeiling        int
	FightCallsPerSecond        float64
	FightBurst                 int
	FightFallbackThreshold     int
	FightKnownEventDates       []string
	FightCircuitEnabled        bool
	FightCircuitFailureCount   int
	FightCircuitOpenTimeout    time.Duration
	FightCircuitHalfOpenMaxReq int

	BackfillCompetitions   map[string]int64
	BackfillSeasons        []int
	BackfillPacingInterval time.Duration

	LiveSyncWindow    time.Duration
	LiveSyncMaxProbes int

	InternalJobToken string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	dbDisablePreparedBinaryResult, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	footballTimeout, err := time.ParseDuration(getEnv("FOOTBALL_API_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_TIMEOUT: %w", err)
	}
	if footballTimeout <= 0 {
		return Config{}, fmt.Errorf("FOOTBALL_API_TIMEOUT must be > 0")
	}
	footballDailyCeiling, err := getEnvAsInt("FOOTBALL_API_DAILY_CEILING", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_DAILY_CEILING: %w", err)
	}
	if footballDailyCeiling < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_API_DAILY_CEILING must be >= 1")
	}
	footballCallsPerSecond, err := getEnvAsFloat("FOOTBALL_API_CALLS_PER_SECOND", 0.5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CALLS_PER_SECOND: %w", err)
	}
	if footballCallsPerSecond < 0 {
		return Config{}, fmt.Errorf("FOOTBALL_API_CALLS_PER_SECOND must be >= 0")
	}
	footballBurst, err := getEnvAsInt("FOOTBALL_API_BURST", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_BURST: %w", err)
	}
	footballCircuit, err := loadCircuitSettings("FOOTBALL_API")
	if err != nil {
		return Config{}, err
	}

	fightTimeout, err := time.ParseDuration(getEnv("FIGHT_API_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FIGHT_API_TIMEOUT: %w", err)
	}
	if fightTimeout <= 0 {
		return Config{}, fmt.Errorf("FIGHT_API_TIMEOUT must be > 0")
	}
	fightMonthlyCeiling, err := getEnvAsInt("FIGHT_API_MONTHLY_CEILING", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIGHT_API_MONTHLY_CEILING: %w", err)
	}
	if fightMonthlyCeiling < 1 {
		return Config{}, fmt.Errorf("FIGHT_API_MONTHLY_CEILING must be >= 1")
	}
	fightCallsPerSecond, err := getEnvAsFloat("FIGHT_API_CALLS_PER_SECOND", 0.5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIGHT_API_CALLS_PER_SECOND: %w", err)
	}
	if fightCallsPerSecond < 0 {
		return Config{}, fmt.Errorf("FIGHT_API_CALLS_PER_SECOND must be >= 0")
	}
	fightBurst, err := getEnvAsInt("FIGHT_API_BURST", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIGHT_API_BURST: %w", err)
	}
	fightFallbackThreshold, err := getEnvAsInt("FIGHT_API_FALLBACK_THRESHOLD", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIGHT_API_FALLBACK_THRESHOLD: %w", err)
	}
	if fightFallbackThreshold < 1 {
		return Config{}, fmt.Errorf("FIGHT_API_FALLBACK_THRESHOLD must be >= 1")
	}
	fightKnownEventDates, err := parseDateList(getEnv("FIGHT_API_KNOWN_EVENT_DATES", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse FIGHT_API_KNOWN_EVENT_DATES: %w", err)
	}
	fightCircuit, err := loadCircuitSettings("FIGHT_API")
	if err != nil {
		return Config{}, err
	}

	backfillCompetitions, err := parseIDMap(getEnv("BACKFILL_COMPETITIONS", "Premier League:39,La Liga:140"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BACKFILL_COMPETITIONS: %w", err)
	}
	if len(backfillCompetitions) == 0 {
		return Config{}, fmt.Errorf("BACKFILL_COMPETITIONS cannot be empty")
	}
	backfillSeasons, err := parseIntList(getEnv("BACKFILL_SEASONS", "2022,2023"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BACKFILL_SEASONS: %w", err)
	}
	if len(backfillSeasons) == 0 {
		return Config{}, fmt.Errorf("BACKFILL_SEASONS cannot be empty")
	}
	backfillPacingInterval, err := time.ParseDuration(getEnv("BACKFILL_PACING_INTERVAL", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BACKFILL_PACING_INTERVAL: %w", err)
	}
	if backfillPacingInterval < 0 {
		return Config{}, fmt.Errorf("BACKFILL_PACING_INTERVAL must be >= 0")
	}

	liveSyncWindow, err := time.ParseDuration(getEnv("LIVE_SYNC_WINDOW", "6h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_SYNC_WINDOW: %w", err)
	}
	if liveSyncWindow <= 0 {
		return Config{}, fmt.Errorf("LIVE_SYNC_WINDOW must be > 0")
	}
	liveSyncMaxProbes, err := getEnvAsInt("LIVE_SYNC_MAX_PROBES", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_SYNC_MAX_PROBES: %w", err)
	}
	if liveSyncMaxProbes < 1 {
		return Config{}, fmt.Errorf("LIVE_SYNC_MAX_PROBES must be >= 1")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("APP_SERVICE_NAME", "matchpulse-ingest"),
		ServiceVersion:                getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                         strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinaryResult: dbDisablePreparedBinaryResult,
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,
		LogLevel:                      parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled:     uptraceEnabled,
		UptraceDSN:         uptraceDSN,
		UptraceLogsEnabled: uptraceLogsEnabled,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		FootballAPIBaseURL:            strings.TrimSpace(getEnv("FOOTBALL_API_BASE_URL", "https://v3.football.api-sports.io")),
		FootballAPIKey:                strings.TrimSpace(getEnv("FOOTBALL_API_KEY", "")),
		FootballAPITimeout:            footballTimeout,
		FootballDailyCeiling:          footballDailyCeiling,
		FootballCallsPerSecond:        footballCallsPerSecond,
		FootballBurst:                 footballBurst,
		FootballCircuitEnabled:        footballCircuit.enabled,
		FootballCircuitFailureCount:   footballCircuit.failureCount,
		FootballCircuitOpenTimeout:    footballCircuit.openTimeout,
		FootballCircuitHalfOpenMaxReq: footballCircuit.halfOpenMaxReq,

		FightAPIBaseURL:            strings.TrimSpace(getEnv("FIGHT_API_BASE_URL", "")),
		FightAPIKey:                strings.TrimSpace(getEnv("FIGHT_API_KEY", "")),
		FightAPITimeout:            fightTimeout,
		FightMonthlyCeiling:        fightMonthlyCeiling,
		FightCallsPerSecond:        fightCallsPerSecond,
		FightBurst:                 fightBurst,
		FightFallbackThreshold:     fightFallbackThreshold,
		FightKnownEventDates:       fightKnownEventDates,
		FightCircuitEnabled:        fightCircuit.enabled,
		FightCircuitFailureCount:   fightCircuit.failureCount,
		FightCircuitOpenTimeout:    fightCircuit.openTimeout,
		FightCircuitHalfOpenMaxReq: fightCircuit.halfOpenMaxReq,

		BackfillCompetitions:   backfillCompetitions,
		BackfillSeasons:        backfillSeasons,
		BackfillPacingInterval: backfillPacingInterval,

		LiveSyncWindow:    liveSyncWindow,
		LiveSyncMaxProbes: liveSyncMaxProbes,

		InternalJobToken: strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
}

type circuitSettings struct {
	enabled        bool
	failureCount   int
	openTimeout    time.Duration
	halfOpenMaxReq int
}

func loadCircuitSettings(prefix string) (circuitSettings, error) {
	enabled, err := strconv.ParseBool(getEnv(prefix+"_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_ENABLED: %w", prefix, err)
	}
	failureCount, err := getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if failureCount < 1 {
		return circuitSettings{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	openTimeout, err := time.ParseDuration(getEnv(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_OPEN_TIMEOUT: %w", prefix, err)
	}
	if openTimeout <= 0 {
		return circuitSettings{}, fmt.Errorf("%s_CIRCUIT_OPEN_TIMEOUT must be > 0", prefix)
	}
	halfOpenMaxReq, err := getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if halfOpenMaxReq < 1 {
		return circuitSettings{}, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	return circuitSettings{
		enabled:        enabled,
		failureCount:   failureCount,
		openTimeout:    openTimeout,
		halfOpenMaxReq: halfOpenMaxReq,
	}, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseIDMap(raw string) (map[string]int64, error) {
	out := make(map[string]int64)
	parts := strings.Split(raw, ",")
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}

		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid map item %q, expected name:number", item)
		}

		key := strings.TrimSpace(segments[0])
		if key == "" {
			return nil, fmt.Errorf("empty name in item %q", item)
		}
		value, err := strconv.ParseInt(strings.TrimSpace(segments[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number in item %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0 in item %q", item)
		}

		out[key] = value
	}
	return out, nil
}

func parseIntList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		value, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", item, err)
		}
		out = append(out, value)
	}
	return out, nil
}

func parseDateList(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", item); err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", item)
		}
		out = append(out, item)
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
