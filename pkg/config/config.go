package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App             AppConfig
	DB              DBConfig
	Redis           RedisConfig
	GCP             GCPConfig
	Storage         StorageConfig
	EmailJS         EmailJSConfig
	Form            FormConfig
	SubmitRateLimit SubmitRateLimitConfig
	FeatureFlags    FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Provider)) {
	case "drive", "gcs", "none":
	default:
		return fmt.Errorf("%s must be one of drive, gcs, none (got %q)", EnvStorageProvider, c.Storage.Provider)
	}
	if c.FeatureFlags.AuditEnabled && c.DB.DSN == "" {
		return fmt.Errorf("%s is required when %s is set", EnvDBDSN, EnvAuditEnabled)
	}
	if _, err := c.App.Location(); err != nil {
		return fmt.Errorf("%s: %w", EnvTimezone, err)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"CUSTOMORDER_APP_ENV" required:"true"`
	Port         string `envconfig:"CUSTOMORDER_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CUSTOMORDER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CUSTOMORDER_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"CUSTOMORDER_LOG_FORMAT" default:"json"`
	Timezone     string `envconfig:"CUSTOMORDER_APP_TIMEZONE" default:"America/New_York"`

	CORSAllowedOrigins []string `envconfig:"CUSTOMORDER_CORS_ALLOWED_ORIGINS"`
	CatalogFile        string   `envconfig:"CUSTOMORDER_CATALOG_FILE"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the timezone used for "today" in date rules and for the
// submission timestamp.
func (a AppConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(a.Timezone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(a.Timezone)
}

type DBConfig struct {
	DSN string `envconfig:"CUSTOMORDER_DB_DSN"`

	MaxOpenConns    int           `envconfig:"CUSTOMORDER_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"CUSTOMORDER_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CUSTOMORDER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CUSTOMORDER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"CUSTOMORDER_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CUSTOMORDER_REDIS_URL"`
	Address      string        `envconfig:"CUSTOMORDER_REDIS_ADDR"`
	Password     string        `envconfig:"CUSTOMORDER_REDIS_PASSWORD"`
	DB           int           `envconfig:"CUSTOMORDER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CUSTOMORDER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CUSTOMORDER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CUSTOMORDER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CUSTOMORDER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CUSTOMORDER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CUSTOMORDER_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CUSTOMORDER_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CUSTOMORDER_GOOGLE_APPLICATION_CREDENTIALS"`
}

// StorageConfig selects where logo attachments are uploaded.
type StorageConfig struct {
	Provider      string        `envconfig:"CUSTOMORDER_STORAGE_PROVIDER" default:"drive"`
	DriveFolderID string        `envconfig:"CUSTOMORDER_DRIVE_FOLDER_ID"`
	GCSBucket     string        `envconfig:"CUSTOMORDER_GCS_BUCKET_NAME"`
	Timeout       time.Duration `envconfig:"CUSTOMORDER_STORAGE_TIMEOUT" default:"60s"`
}

type EmailJSConfig struct {
	BaseURL    string        `envconfig:"CUSTOMORDER_EMAILJS_BASE_URL" default:"https://api.emailjs.com"`
	PublicKey  string        `envconfig:"CUSTOMORDER_EMAILJS_PUBLIC_KEY"`
	PrivateKey string        `envconfig:"CUSTOMORDER_EMAILJS_PRIVATE_KEY"`
	ServiceID  string        `envconfig:"CUSTOMORDER_EMAILJS_SERVICE_ID"`
	TemplateID string        `envconfig:"CUSTOMORDER_EMAILJS_TEMPLATE_ID"`
	Timeout    time.Duration `envconfig:"CUSTOMORDER_EMAILJS_TIMEOUT" default:"15s"`
}

// Configured reports whether every identifier needed to send is present.
func (e EmailJSConfig) Configured() bool {
	return strings.TrimSpace(e.PublicKey) != "" &&
		strings.TrimSpace(e.ServiceID) != "" &&
		strings.TrimSpace(e.TemplateID) != ""
}

type FormConfig struct {
	DraftTTL          time.Duration `envconfig:"CUSTOMORDER_FORM_DRAFT_TTL" default:"720h"`
	ResetDelay        time.Duration `envconfig:"CUSTOMORDER_FORM_RESET_DELAY" default:"3s"`
	NoticeAutoDismiss time.Duration `envconfig:"CUSTOMORDER_FORM_NOTICE_AUTO_DISMISS" default:"5s"`
}

type SubmitRateLimitConfig struct {
	Window  time.Duration `envconfig:"CUSTOMORDER_SUBMIT_RATE_LIMIT_WINDOW" default:"10m"`
	IPLimit int           `envconfig:"CUSTOMORDER_SUBMIT_RATE_LIMIT_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AuditEnabled bool `envconfig:"CUSTOMORDER_AUDIT_ENABLED" default:"false"`
	AutoMigrate  bool `envconfig:"CUSTOMORDER_AUTO_MIGRATE" default:"false"`
}
