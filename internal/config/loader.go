package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the eventboard
// service. It is read once at start and passed explicitly to constructors.
type Config struct {
	HTTPPort       int
	SQLiteDSN      string
	JWTSecret      string
	AdminEmails    []string
	TokenTTL       time.Duration
	ClockTolerance time.Duration
	SeedFile       string
	LogLevel       string
	LogFormat      string
}

// Environment variable names.
const (
	EnvHTTPPort       = "EVENTBOARD_HTTP_PORT"
	EnvSQLiteDSN      = "EVENTBOARD_SQLITE_DSN"
	EnvJWTSecret      = "EVENTBOARD_JWT_SECRET"
	EnvAdminEmails    = "EVENTBOARD_ADMIN_EMAILS"
	EnvTokenTTL       = "EVENTBOARD_TOKEN_TTL"
	EnvClockTolerance = "EVENTBOARD_CLOCK_TOLERANCE"
	EnvSeedFile       = "EVENTBOARD_SEED_FILE"
	EnvLogLevel       = "EVENTBOARD_LOG_LEVEL"
	EnvLogFormat      = "EVENTBOARD_LOG_FORMAT"
)

// Load parses configuration values from the current process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom parses configuration using lookup in place of os.Getenv.
//
// Optional values fall back to defaults. Every missing required value and
// every invalid value is reported, not only the first.
func LoadFrom(lookup func(string) string) (Config, error) {
	cfg := Config{
		HTTPPort:       3001,
		SQLiteDSN:      "eventboard.db",
		TokenTTL:       time.Hour,
		ClockTolerance: 300 * time.Second,
		LogLevel:       "info",
		LogFormat:      "json",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if portValue := strings.TrimSpace(lookup(EnvHTTPPort)); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, EnvHTTPPort)
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(lookup(EnvSQLiteDSN)); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	// The secret is used byte for byte; whitespace only decides emptiness.
	if secret := lookup(EnvJWTSecret); strings.TrimSpace(secret) == "" {
		missing = append(missing, EnvJWTSecret)
	} else {
		cfg.JWTSecret = secret
	}

	cfg.AdminEmails = ParseAdminEmails(lookup(EnvAdminEmails))

	if ttlValue := strings.TrimSpace(lookup(EnvTokenTTL)); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl < time.Second {
			invalid = append(invalid, EnvTokenTTL)
		} else {
			cfg.TokenTTL = ttl
		}
	}

	if toleranceValue := strings.TrimSpace(lookup(EnvClockTolerance)); toleranceValue != "" {
		tolerance, err := time.ParseDuration(toleranceValue)
		if err != nil || tolerance < 0 {
			invalid = append(invalid, EnvClockTolerance)
		} else {
			cfg.ClockTolerance = tolerance
		}
	}

	cfg.SeedFile = strings.TrimSpace(lookup(EnvSeedFile))

	if level := strings.ToLower(strings.TrimSpace(lookup(EnvLogLevel))); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			invalid = append(invalid, EnvLogLevel)
		}
	}

	if format := strings.ToLower(strings.TrimSpace(lookup(EnvLogFormat))); format != "" {
		switch format {
		case "json", "text":
			cfg.LogFormat = format
		default:
			invalid = append(invalid, EnvLogFormat)
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// ParseAdminEmails splits a comma separated allow-list. Entries are trimmed
// and empty entries dropped; case is preserved.
func ParseAdminEmails(raw string) []string {
	emails := make([]string, 0)
	for _, entry := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			emails = append(emails, trimmed)
		}
	}
	return emails
}
