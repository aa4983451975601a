package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// LedgerYears is the number of ordinal years a student record can hold points for.
const LedgerYears = 6

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Cache        CacheConfig
	Ledger       LedgerConfig
	Certificates CertificatesConfig
	UploadWindow UploadWindowConfig
	Reports      ReportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
	SingleSession     bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig toggles the Redis backed ledger progress cache.
type CacheConfig struct {
	Enabled   bool
	TTL       time.Duration
	KeyPrefix string
}

// LedgerConfig holds the canonical points policy. YearRequirements is the only
// place the per-year requirement is defined.
type LedgerConfig struct {
	YearRequirements    [LedgerYears]int
	DefaultProgramYears int
	FacultyMaxPoints    int
	PolicyFile          string
}

// CertificatesConfig controls certificate scan storage & validation.
type CertificatesConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// UploadWindowConfig defines the gate state for departments without a stored window.
type UploadWindowConfig struct {
	DefaultOpen bool
}

// ReportsConfig configures asynchronous points report generation.
type ReportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
		SingleSession:     v.GetBool("JWT_SINGLE_SESSION"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled:   v.GetBool("ENABLE_LEDGER_CACHE"),
		TTL:       parseDuration(v.GetString("LEDGER_CACHE_TTL"), 5*time.Minute),
		KeyPrefix: v.GetString("CACHE_KEY_PREFIX"),
	}

	requirements, err := parseRequirements(v.GetString("LEDGER_YEAR_REQUIREMENTS"))
	if err != nil {
		return nil, err
	}
	cfg.Ledger = LedgerConfig{
		YearRequirements:    requirements,
		DefaultProgramYears: v.GetInt("LEDGER_DEFAULT_PROGRAM_YEARS"),
		FacultyMaxPoints:    v.GetInt("LEDGER_FACULTY_MAX_POINTS"),
		PolicyFile:          v.GetString("LEDGER_POLICY_FILE"),
	}
	if cfg.Ledger.PolicyFile != "" {
		if err := applyPolicyFile(&cfg.Ledger, cfg.Ledger.PolicyFile); err != nil {
			return nil, err
		}
	}

	maxCertificateSize := v.GetInt64("CERTIFICATES_MAX_FILE_SIZE")
	if maxCertificateSize <= 0 {
		maxCertificateSize = 5 * 1024 * 1024
	}
	cfg.Certificates = CertificatesConfig{
		StorageDir:       v.GetString("CERTIFICATES_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("CERTIFICATES_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("CERTIFICATES_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxCertificateSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("CERTIFICATES_ALLOWED_MIME_TYPES")),
	}

	cfg.UploadWindow = UploadWindowConfig{
		DefaultOpen: v.GetBool("UPLOAD_WINDOW_DEFAULT_OPEN"),
	}

	cfg.Reports = ReportsConfig{
		Enabled:           v.GetBool("ENABLE_REPORTS"),
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "activity_points")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "activity-points-api")
	v.SetDefault("JWT_SINGLE_SESSION", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_LEDGER_CACHE", false)
	v.SetDefault("LEDGER_CACHE_TTL", "5m")

	v.SetDefault("LEDGER_YEAR_REQUIREMENTS", "100,100,100,100,100,100")
	v.SetDefault("LEDGER_DEFAULT_PROGRAM_YEARS", 4)
	v.SetDefault("LEDGER_FACULTY_MAX_POINTS", 50)
	v.SetDefault("LEDGER_POLICY_FILE", "")

	v.SetDefault("CERTIFICATES_STORAGE_DIR", "./certificates")
	v.SetDefault("CERTIFICATES_SIGNED_URL_SECRET", "dev_certificates_secret")
	v.SetDefault("CERTIFICATES_SIGNED_URL_TTL", "30m")
	v.SetDefault("CERTIFICATES_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("CERTIFICATES_ALLOWED_MIME_TYPES", "application/pdf,image/jpeg,image/png")

	v.SetDefault("UPLOAD_WINDOW_DEFAULT_OPEN", true)

	v.SetDefault("ENABLE_REPORTS", true)
	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)
	v.SetDefault("CACHE_KEY_PREFIX", "activity-points:")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// parseRequirements reads a comma separated list of per-year requirements.
// Missing trailing entries repeat the last value given.
func parseRequirements(raw string) ([LedgerYears]int, error) {
	var result [LedgerYears]int
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return result, errors.New("LEDGER_YEAR_REQUIREMENTS must list at least one value")
	}
	if len(parts) > LedgerYears {
		return result, errors.New("LEDGER_YEAR_REQUIREMENTS lists more than six years")
	}
	for i := 0; i < LedgerYears; i++ {
		idx := i
		if idx >= len(parts) {
			idx = len(parts) - 1
		}
		value, err := strconv.Atoi(parts[idx])
		if err != nil || value < 0 {
			return result, errors.New("LEDGER_YEAR_REQUIREMENTS must contain non-negative integers")
		}
		result[i] = value
	}
	return result, nil
}
