package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mapl11/fantasy-cricket/internal/domain/scoring"
	"github.com/mapl11/fantasy-cricket/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	DBURL                      string
	DBDisablePreparedBinary    bool
	CORSAllowedOrigins         []string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	AccountsBaseURL            string
	AccountsIntrospectPath     string
	AccountsAPIKey             string
	AccountsTimeout            time.Duration
	FantasyFeedBaseURL         string
	FantasyFeedAPIKey          string
	FantasyFeedTimeout         time.Duration
	TeamSize                   int
	ScoringPolicy              scoring.Policy
	FixtureWinBonus            int
	MatchBracket               []scoring.FixturePair
	RankBonusTiers             scoring.RankBonusTiers
	SweepWorkers               int
	InternalJobToken           string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	LogLevel                   logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	teamSize, err := getEnvAsInt("TEAM_SIZE", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse TEAM_SIZE: %w", err)
	}
	if teamSize < 2 {
		return Config{}, fmt.Errorf("TEAM_SIZE must be >= 2")
	}

	scoringPolicy, err := scoring.ParsePolicy(getEnv("SCORING_POLICY", string(scoring.PolicyFixture)))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCORING_POLICY: %w", err)
	}

	fixtureWinBonus, err := getEnvAsInt("FIXTURE_WIN_BONUS", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIXTURE_WIN_BONUS: %w", err)
	}
	if fixtureWinBonus <= 0 {
		return Config{}, fmt.Errorf("FIXTURE_WIN_BONUS must be > 0")
	}

	matchBracket, err := parseBracket(getEnv("MATCH_BRACKET", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCH_BRACKET: %w", err)
	}
	if len(matchBracket) == 0 {
		matchBracket = scoring.DefaultBracket()
	}

	rankTiers, err := parseRankTiers()
	if err != nil {
		return Config{}, err
	}

	sweepWorkers, err := getEnvAsInt("SCORING_SWEEP_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCORING_SWEEP_WORKERS: %w", err)
	}
	if sweepWorkers < 1 {
		return Config{}, fmt.Errorf("SCORING_SWEEP_WORKERS must be >= 1")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
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

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	accountsTimeout, err := time.ParseDuration(getEnv("ACCOUNTS_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNTS_TIMEOUT: %w", err)
	}

	fantasyFeedTimeout, err := time.ParseDuration(getEnv("FANTASY_FEED_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FANTASY_FEED_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "fantasy-cricket-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                      strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:    dbDisablePreparedBinary,
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		AccountsBaseURL:            getEnv("ACCOUNTS_BASE_URL", "http://localhost:8081"),
		AccountsIntrospectPath:     getEnv("ACCOUNTS_INTROSPECT_PATH", "/v1/auth/introspect"),
		AccountsAPIKey:             strings.TrimSpace(getEnv("ACCOUNTS_API_KEY", "")),
		AccountsTimeout:            accountsTimeout,
		FantasyFeedBaseURL:         strings.TrimSpace(getEnv("FANTASY_FEED_BASE_URL", "")),
		FantasyFeedAPIKey:          strings.TrimSpace(getEnv("FANTASY_FEED_API_KEY", "")),
		FantasyFeedTimeout:         fantasyFeedTimeout,
		TeamSize:                   teamSize,
		ScoringPolicy:              scoringPolicy,
		FixtureWinBonus:            fixtureWinBonus,
		MatchBracket:               matchBracket,
		RankBonusTiers:             rankTiers,
		SweepWorkers:               sweepWorkers,
		InternalJobToken:           strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.DBURL != "" && cfg.FantasyFeedBaseURL == "" {
		return Config{}, fmt.Errorf("FANTASY_FEED_BASE_URL is required when DB_URL is set")
	}

	return cfg, nil
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

// parseBracket reads "Home:Away" pairs separated by commas, for example
// "Team 1:Team 14,Team 2:Team 13".
func parseBracket(raw string) ([]scoring.FixturePair, error) {
	out := make([]scoring.FixturePair, 0)
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}

		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid bracket item %q, expected home:away", item)
		}

		home := strings.TrimSpace(segments[0])
		away := strings.TrimSpace(segments[1])
		if home == "" || away == "" {
			return nil, fmt.Errorf("empty team name in bracket item %q", item)
		}

		out = append(out, scoring.FixturePair{HomeTeamName: home, AwayTeamName: away})
	}

	return out, nil
}

func parseRankTiers() (scoring.RankBonusTiers, error) {
	defaults := scoring.DefaultRankBonusTiers()

	first, err := getEnvAsInt("RANK_BONUS_FIRST", defaults.First)
	if err != nil {
		return scoring.RankBonusTiers{}, fmt.Errorf("parse RANK_BONUS_FIRST: %w", err)
	}
	second, err := getEnvAsInt("RANK_BONUS_SECOND", defaults.Second)
	if err != nil {
		return scoring.RankBonusTiers{}, fmt.Errorf("parse RANK_BONUS_SECOND: %w", err)
	}
	third, err := getEnvAsInt("RANK_BONUS_THIRD", defaults.Third)
	if err != nil {
		return scoring.RankBonusTiers{}, fmt.Errorf("parse RANK_BONUS_THIRD: %w", err)
	}
	topFive, err := getEnvAsInt("RANK_BONUS_TOP_FIVE", defaults.TopFive)
	if err != nil {
		return scoring.RankBonusTiers{}, fmt.Errorf("parse RANK_BONUS_TOP_FIVE: %w", err)
	}

	for _, tier := range []int{first, second, third, topFive} {
		if tier < 0 {
			return scoring.RankBonusTiers{}, fmt.Errorf("rank bonus tiers must be >= 0")
		}
	}

	return scoring.RankBonusTiers{First: first, Second: second, Third: third, TopFive: topFive}, nil
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

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
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
