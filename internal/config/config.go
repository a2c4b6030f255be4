package config

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env        string
	Addr       string
	PublicURL  *url.URL
	DBDSN      string
	SQLitePath string
	LogLevel   string

	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	GoogleClientID     string
	AppleServiceID     string
	ModeratorSubjects  []string
	FriendRequestRate  int
	FCMProjectID       string
	FCMCredentialsFile string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	GameCacheTTL  time.Duration
	GamesSeedPath string
}

// Load reads the optional dotenv file (APP_DOTENV, default .env) and then the
// process environment. Variables already set are never overridden by the file.
func Load() (Config, error) {
	path := os.Getenv("APP_DOTENV")
	if path == "" {
		path = ".env"
	}
	if err := loadDotEnvFile(path, os.Setenv, os.Getenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:                getenv("APP_ENV"),
		Addr:               getenv("APP_ADDR"),
		DBDSN:              getenv("APP_DB_DSN"),
		SQLitePath:         strings.TrimSpace(getenv("APP_SQLITE_PATH")),
		LogLevel:           getenv("APP_LOG_LEVEL"),
		JWTSecret:          getenv("APP_JWT_SECRET"),
		JWTIssuer:          strings.TrimSpace(getenv("APP_JWT_ISSUER")),
		JWTAudience:        strings.TrimSpace(getenv("APP_JWT_AUDIENCE")),
		GoogleClientID:     strings.TrimSpace(getenv("APP_GOOGLE_CLIENT_ID")),
		AppleServiceID:     strings.TrimSpace(getenv("APP_APPLE_SERVICE_ID")),
		FCMProjectID:       strings.TrimSpace(getenv("APP_FCM_PROJECT_ID")),
		FCMCredentialsFile: strings.TrimSpace(getenv("APP_FCM_CREDENTIALS")),
		RedisAddr:          strings.TrimSpace(getenv("APP_REDIS_ADDR")),
		RedisPassword:      getenv("APP_REDIS_PASSWORD"),
		GamesSeedPath:      strings.TrimSpace(getenv("APP_GAMES_SEED")),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "gamemate"
	}

	publicURLRaw := getenv("APP_PUBLIC_URL")
	if publicURLRaw != "" {
		parsed, err := url.Parse(publicURLRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_PUBLIC_URL: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return Config{}, errors.New("APP_PUBLIC_URL: must be an absolute URL")
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return Config{}, errors.New("APP_PUBLIC_URL: scheme must be http or https")
		}
		cfg.PublicURL = parsed
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	ttl, err := parseDuration(getenv("APP_GAME_CACHE_TTL"), 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("APP_GAME_CACHE_TTL: %w", err)
	}
	cfg.GameCacheTTL = ttl

	if cfg.RedisDB, err = parseInt(getenv("APP_REDIS_DB"), 0, 0); err != nil {
		return Config{}, fmt.Errorf("APP_REDIS_DB: %w", err)
	}
	if cfg.FriendRequestRate, err = parseInt(getenv("APP_FRIEND_REQUEST_RATE"), 20, 1); err != nil {
		return Config{}, fmt.Errorf("APP_FRIEND_REQUEST_RATE: %w", err)
	}

	cfg.ModeratorSubjects = parseCSV(getenv("APP_MODERATOR_SUBJECTS"))

	if cfg.FCMProjectID != "" && cfg.FCMCredentialsFile == "" {
		return Config{}, errors.New("APP_FCM_CREDENTIALS: required when APP_FCM_PROJECT_ID is set")
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32 && cfg.IsProd() {
		return Config{}, errors.New("APP_JWT_SECRET: must be at least 32 bytes in prod")
	}

	if cfg.IsProd() {
		if cfg.PublicURL == nil {
			return Config{}, errors.New("APP_PUBLIC_URL: required in prod")
		}
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if !cfg.HasVerifier() {
			return Config{}, errors.New("one of APP_JWT_SECRET, APP_GOOGLE_CLIENT_ID, APP_APPLE_SERVICE_ID is required in prod")
		}
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) HasVerifier() bool {
	return c.JWTSecret != "" || c.GoogleClientID != "" || c.AppleServiceID != ""
}

// IsModerator reports whether the identity subject may manage the game catalog.
func (c Config) IsModerator(subject string) bool {
	return contains(c.ModeratorSubjects, strings.ToLower(strings.TrimSpace(subject)))
}

func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be > 0")
	}
	return d, nil
}

func parseInt(raw string, def, min int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < min {
		return 0, fmt.Errorf("must be >= %d", min)
	}
	return n, nil
}

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func contains(ss []string, needle string) bool {
	for _, s := range ss {
		if s == needle {
			return true
		}
	}
	return false
}

// loadDotEnvFile applies KEY=VALUE lines from path. Comments, blank lines,
// lines without '=' and empty values are skipped; an optional "export "
// prefix and matching surrounding quotes are stripped.
func loadDotEnvFile(path string, setenv func(string, string) error, getenv func(string) string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))
		if key == "" || value == "" || getenv(key) != "" {
			continue
		}
		if err := setenv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
