package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Admin    AdminConfig
	ATS      ATSConfig
	Queue    QueueConfig
	Schedule ScheduleConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
}

// AdminConfig is the single operator account allowed to drive sync runs.
// PasswordHash is a bcrypt hash; an empty hash disables login.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

// ATSConfig covers the External ATS connection and the two feature flags.
// Scheduled runs need both flags; the real-time path only checks Enabled.
type ATSConfig struct {
	BaseURL  string
	ClientID string
	Username string
	Password string

	Enabled          bool
	ScheduledEnabled bool

	TokenTTL       time.Duration
	RequestTimeout time.Duration
	UploadTimeout  time.Duration

	BatchSize     int
	UpdatedWindow time.Duration
	RatePerSecond float64
	RunLockTTL    time.Duration
}

type QueueConfig struct {
	RabbitMQURL string
	QueueName   string
	Workers     int
	Buffer      int
}

type ScheduleConfig struct {
	PushJobs       string
	PushCandidates string
	PullJobs       string
	PullCandidates string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  optDefault("DB_SSL_MODE", "disable"),

		ConnectTimeout:        seconds(opt("DB_CONNECT_TIMEOUT_SECONDS"), 5*time.Second),
		PoolMaxConns:          int32(intOr(opt("DB_POOL_MAX_CONNS"), 10)),
		PoolMinConns:          int32(intOr(opt("DB_POOL_MIN_CONNS"), 0)),
		PoolMaxConnLifetime:   minutes(opt("DB_POOL_MAX_CONN_LIFETIME_MINUTES"), time.Hour),
		PoolMaxConnIdleTime:   minutes(opt("DB_POOL_MAX_CONN_IDLE_MINUTES"), 30*time.Minute),
		PoolHealthCheckPeriod: seconds(opt("DB_POOL_HEALTH_CHECK_SECONDS"), time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     optDefault("REDIS_HOST", "localhost"),
		Port:     optDefault("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:    req("JWT_ACCESS_SECRET"),
		AccessExpiresIn: minutes(opt("JWT_ACCESS_EXPIRES_MINUTES"), 15*time.Minute),
	}

	cfg.Admin = AdminConfig{
		Username:     optDefault("ADMIN_USERNAME", "admin"),
		PasswordHash: opt("ADMIN_PASSWORD_HASH"),
	}

	// Credentials are optional here; the token provider reports them as a
	// configuration error on first use so a disabled integration can boot
	// without them.
	cfg.ATS = ATSConfig{
		BaseURL:  opt("ATS_BASE_URL"),
		ClientID: opt("ATS_CLIENT_ID"),
		Username: opt("ATS_USERNAME"),
		Password: opt("ATS_PASSWORD"),

		Enabled:          boolOr(opt("ATS_INTEGRATION_ENABLED"), false),
		ScheduledEnabled: boolOr(opt("ATS_SCHEDULED_SYNC_ENABLED"), false),

		TokenTTL:       minutes(opt("ATS_TOKEN_TTL_MINUTES"), time.Hour),
		RequestTimeout: seconds(opt("ATS_REQUEST_TIMEOUT_SECONDS"), 15*time.Second),
		UploadTimeout:  seconds(opt("ATS_UPLOAD_TIMEOUT_SECONDS"), 60*time.Second),

		BatchSize:     intOr(opt("ATS_BATCH_SIZE"), 50),
		UpdatedWindow: time.Duration(intOr(opt("ATS_UPDATED_WINDOW_HOURS"), 24)) * time.Hour,
		RatePerSecond: floatOr(opt("ATS_RATE_PER_SECOND"), 5),
		RunLockTTL:    minutes(opt("ATS_RUN_LOCK_TTL_MINUTES"), 30*time.Minute),
	}

	cfg.Queue = QueueConfig{
		RabbitMQURL: opt("RABBITMQ_URL"),
		QueueName:   optDefault("ATS_EVENTS_QUEUE", "ats.record_upserted"),
		Workers:     intOr(opt("ATS_EVENT_WORKERS"), 2),
		Buffer:      intOr(opt("ATS_EVENT_BUFFER"), 256),
	}

	cfg.Schedule = ScheduleConfig{
		PushJobs:       optDefault("ATS_CRON_PUSH_JOBS", "0 */2 * * *"),
		PushCandidates: optDefault("ATS_CRON_PUSH_CANDIDATES", "0 */3 * * *"),
		PullJobs:       optDefault("ATS_CRON_PULL_JOBS", "0 1 * * *"),
		PullCandidates: optDefault("ATS_CRON_PULL_CANDIDATES", "0 2 * * *"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func intOr(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func floatOr(raw string, def float64) float64 {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func boolOr(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func seconds(raw string, def time.Duration) time.Duration {
	v := intOr(raw, -1)
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

func minutes(raw string, def time.Duration) time.Duration {
	v := intOr(raw, -1)
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Minute
}
