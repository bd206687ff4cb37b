package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AlertPolicy selects which pending matches are alert candidates per evaluation.
type AlertPolicy string

const (
	// AlertPolicyLatest only considers the newest request of the donor's blood group.
	AlertPolicyLatest AlertPolicy = "latest"
	// AlertPolicyAll considers every pending request of the donor's blood group.
	AlertPolicyAll AlertPolicy = "all"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Hospital     HospitalConfig
	Engine       EngineConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Format  string
	Service string
}

// AuthConfig defines donor session parameters. The credential itself is cosmetic.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	PushEnabled    bool
	WebhookURL     string
	BannerCapacity int
}

// HospitalConfig describes the hospital profile used when a request names none.
type HospitalConfig struct {
	Name string
}

// EngineConfig tunes the availability poller and matching.
type EngineConfig struct {
	PollIntervalMS int
	AlertPolicy    AlertPolicy
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	policy, err := ParseAlertPolicy(getEnv("ENGINE_ALERT_POLICY", string(AlertPolicyLatest)))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "redlink"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: getEnv("APP_NAME", "redlink"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 12*60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Notification: NotificationConfig{
			PushEnabled:    getEnvAsBool("NOTIFY_PUSH_ENABLED", true),
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			BannerCapacity: getEnvAsInt("NOTIFY_BANNER_CAPACITY", 20),
		},
		Hospital: HospitalConfig{
			Name: getEnv("HOSPITAL_NAME", "City General Hospital"),
		},
		Engine: EngineConfig{
			PollIntervalMS: getEnvAsInt("ENGINE_POLL_INTERVAL_MS", 1000),
			AlertPolicy:    policy,
		},
	}

	return cfg, nil
}

// ParseAlertPolicy validates a policy name.
func ParseAlertPolicy(raw string) (AlertPolicy, error) {
	switch p := AlertPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case AlertPolicyLatest, AlertPolicyAll:
		return p, nil
	default:
		return "", fmt.Errorf("invalid ENGINE_ALERT_POLICY %q", raw)
	}
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// PollInterval returns the deadline poll cadence, one second when unset.
func (e EngineConfig) PollInterval() time.Duration {
	if e.PollIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(e.PollIntervalMS) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
