package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	JWT        JWTConfig
	S3         S3Config
	Log        LogConfig
	Completion CompletionConfig
	Extraction ExtractionConfig
	CORS       CORSConfig
	Email      EmailConfig
	Google     GoogleConfig
	Emergency  EmergencyConfig
}

// EmailConfig holds email delivery settings used for SOS notifications.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	AppURL      string `mapstructure:"app_url"`
}

// GoogleConfig holds Google sign-in settings.
type GoogleConfig struct {
	ClientID string `mapstructure:"client_id"`
}

// EmergencyConfig holds SOS and fall detection settings.
type EmergencyConfig struct {
	// FallThresholdG is the acceleration magnitude, in g, above which a sample counts as a fall.
	FallThresholdG float64 `mapstructure:"fall_threshold_g"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CompletionProviderConfig holds settings for a single generative completion provider.
type CompletionProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
	BaseURL      string `mapstructure:"base_url"`

	// Vertex AI settings, only read by the genai provider.
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
}

// CompletionConfig holds completion endpoint settings with multi-provider failover.
type CompletionConfig struct {
	// Legacy flat fields (single provider)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   CompletionProviderConfig `mapstructure:"primary"`
	Secondary CompletionProviderConfig `mapstructure:"secondary"`
	Tertiary  CompletionProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (p *CompletionConfig) PrimaryConfig() *CompletionProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &CompletionProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *CompletionConfig) SecondaryConfig() *CompletionProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *CompletionConfig) TertiaryConfig() *CompletionProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// ExtractionConfig holds structured extraction settings.
type ExtractionConfig struct {
	TimeoutSecs int `mapstructure:"timeout_secs"`
	// ReadingConfidenceThreshold is the minimum confidence (0-100) for a device
	// reading extracted from a photo to be accepted.
	ReadingConfidenceThreshold float64 `mapstructure:"reading_confidence_threshold"`
	ChatHistoryLimit           int     `mapstructure:"chat_history_limit"`
}

// Timeout returns the completion call ceiling.
func (e *ExtractionConfig) Timeout() time.Duration {
	if e.TimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(e.TimeoutSecs) * time.Second
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for uploaded photos and documents.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var envBindings = map[string]string{
	"server.port":                              "TELEHEALTH_SERVER_PORT",
	"server.read_timeout":                      "TELEHEALTH_SERVER_READ_TIMEOUT",
	"server.write_timeout":                     "TELEHEALTH_SERVER_WRITE_TIMEOUT",
	"server.environment":                       "TELEHEALTH_SERVER_ENVIRONMENT",
	"db.host":                                  "TELEHEALTH_DB_HOST",
	"db.port":                                  "TELEHEALTH_DB_PORT",
	"db.user":                                  "TELEHEALTH_DB_USER",
	"db.password":                              "TELEHEALTH_DB_PASSWORD",
	"db.name":                                  "TELEHEALTH_DB_NAME",
	"db.sslmode":                               "TELEHEALTH_DB_SSLMODE",
	"db.max_open":                              "TELEHEALTH_DB_MAX_OPEN",
	"db.max_idle":                              "TELEHEALTH_DB_MAX_IDLE",
	"jwt.secret":                               "TELEHEALTH_JWT_SECRET",
	"jwt.access_expiry":                        "TELEHEALTH_JWT_ACCESS_EXPIRY",
	"jwt.refresh_expiry":                       "TELEHEALTH_JWT_REFRESH_EXPIRY",
	"jwt.issuer":                               "TELEHEALTH_JWT_ISSUER",
	"s3.region":                                "TELEHEALTH_S3_REGION",
	"s3.bucket":                                "TELEHEALTH_S3_BUCKET",
	"s3.endpoint":                              "TELEHEALTH_S3_ENDPOINT",
	"s3.access_key":                            "TELEHEALTH_S3_ACCESS_KEY",
	"s3.secret_key":                            "TELEHEALTH_S3_SECRET_KEY",
	"s3.max_file_size_mb":                      "TELEHEALTH_S3_MAX_FILE_SIZE_MB",
	"s3.presign_expiry":                        "TELEHEALTH_S3_PRESIGN_EXPIRY",
	"log.level":                                "TELEHEALTH_LOG_LEVEL",
	"log.format":                               "TELEHEALTH_LOG_FORMAT",
	"cors.allowed_origins":                     "TELEHEALTH_CORS_ALLOWED_ORIGINS",
	"completion.provider":                      "TELEHEALTH_COMPLETION_PROVIDER",
	"completion.api_key":                       "TELEHEALTH_COMPLETION_API_KEY",
	"completion.default_model":                 "TELEHEALTH_COMPLETION_DEFAULT_MODEL",
	"completion.timeout_secs":                  "TELEHEALTH_COMPLETION_TIMEOUT_SECS",
	"completion.primary.provider":              "TELEHEALTH_COMPLETION_PRIMARY_PROVIDER",
	"completion.primary.api_key":               "TELEHEALTH_COMPLETION_PRIMARY_API_KEY",
	"completion.primary.default_model":         "TELEHEALTH_COMPLETION_PRIMARY_DEFAULT_MODEL",
	"completion.primary.timeout_secs":          "TELEHEALTH_COMPLETION_PRIMARY_TIMEOUT_SECS",
	"completion.primary.base_url":              "TELEHEALTH_COMPLETION_PRIMARY_BASE_URL",
	"completion.primary.project":               "TELEHEALTH_COMPLETION_PRIMARY_PROJECT",
	"completion.primary.location":              "TELEHEALTH_COMPLETION_PRIMARY_LOCATION",
	"completion.secondary.provider":            "TELEHEALTH_COMPLETION_SECONDARY_PROVIDER",
	"completion.secondary.api_key":             "TELEHEALTH_COMPLETION_SECONDARY_API_KEY",
	"completion.secondary.default_model":       "TELEHEALTH_COMPLETION_SECONDARY_DEFAULT_MODEL",
	"completion.secondary.timeout_secs":        "TELEHEALTH_COMPLETION_SECONDARY_TIMEOUT_SECS",
	"completion.secondary.base_url":            "TELEHEALTH_COMPLETION_SECONDARY_BASE_URL",
	"completion.secondary.project":             "TELEHEALTH_COMPLETION_SECONDARY_PROJECT",
	"completion.secondary.location":            "TELEHEALTH_COMPLETION_SECONDARY_LOCATION",
	"completion.tertiary.provider":             "TELEHEALTH_COMPLETION_TERTIARY_PROVIDER",
	"completion.tertiary.api_key":              "TELEHEALTH_COMPLETION_TERTIARY_API_KEY",
	"completion.tertiary.default_model":        "TELEHEALTH_COMPLETION_TERTIARY_DEFAULT_MODEL",
	"completion.tertiary.timeout_secs":         "TELEHEALTH_COMPLETION_TERTIARY_TIMEOUT_SECS",
	"completion.tertiary.base_url":             "TELEHEALTH_COMPLETION_TERTIARY_BASE_URL",
	"completion.tertiary.project":              "TELEHEALTH_COMPLETION_TERTIARY_PROJECT",
	"completion.tertiary.location":             "TELEHEALTH_COMPLETION_TERTIARY_LOCATION",
	"extraction.timeout_secs":                  "TELEHEALTH_EXTRACTION_TIMEOUT_SECS",
	"extraction.reading_confidence_threshold":  "TELEHEALTH_EXTRACTION_READING_CONFIDENCE_THRESHOLD",
	"extraction.chat_history_limit":            "TELEHEALTH_EXTRACTION_CHAT_HISTORY_LIMIT",
	"email.provider":                           "TELEHEALTH_EMAIL_PROVIDER",
	"email.region":                             "TELEHEALTH_EMAIL_REGION",
	"email.from_address":                       "TELEHEALTH_EMAIL_FROM_ADDRESS",
	"email.from_name":                          "TELEHEALTH_EMAIL_FROM_NAME",
	"email.app_url":                            "TELEHEALTH_EMAIL_APP_URL",
	"google.client_id":                         "TELEHEALTH_GOOGLE_CLIENT_ID",
	"emergency.fall_threshold_g":               "TELEHEALTH_EMERGENCY_FALL_THRESHOLD_G",
}

// Load reads configuration from environment variables with the TELEHEALTH_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TELEHEALTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TELEHEALTH_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TELEHEALTH_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Completion = CompletionConfig{
		Provider:     v.GetString("completion.provider"),
		APIKey:       v.GetString("completion.api_key"),
		DefaultModel: v.GetString("completion.default_model"),
		TimeoutSecs:  v.GetInt("completion.timeout_secs"),
		Primary:      providerConfig(v, "completion.primary"),
		Secondary:    providerConfig(v, "completion.secondary"),
		Tertiary:     providerConfig(v, "completion.tertiary"),
	}
	cfg.Extraction = ExtractionConfig{
		TimeoutSecs:                v.GetInt("extraction.timeout_secs"),
		ReadingConfidenceThreshold: v.GetFloat64("extraction.reading_confidence_threshold"),
		ChatHistoryLimit:           v.GetInt("extraction.chat_history_limit"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		AppURL:      v.GetString("email.app_url"),
	}
	cfg.Google = GoogleConfig{
		ClientID: v.GetString("google.client_id"),
	}
	cfg.Emergency = EmergencyConfig{
		FallThresholdG: v.GetFloat64("emergency.fall_threshold_g"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "telehealth")
	v.SetDefault("db.password", "telehealth_secret")
	v.SetDefault("db.name", "telehealth_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "telehealth")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "telehealth-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 10)
	v.SetDefault("s3.presign_expiry", 3600)

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:8081,http://127.0.0.1:8081,http://localhost:19006")

	// Completion defaults (legacy flat)
	v.SetDefault("completion.provider", "gemini")
	v.SetDefault("completion.api_key", "")
	v.SetDefault("completion.default_model", "gemini-2.0-flash")
	v.SetDefault("completion.timeout_secs", 30)
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("completion."+tier+".provider", "")
		v.SetDefault("completion."+tier+".api_key", "")
		v.SetDefault("completion."+tier+".default_model", "")
		v.SetDefault("completion."+tier+".timeout_secs", 30)
		v.SetDefault("completion."+tier+".base_url", "")
		v.SetDefault("completion."+tier+".project", "")
		v.SetDefault("completion."+tier+".location", "")
	}

	v.SetDefault("extraction.timeout_secs", 30)
	v.SetDefault("extraction.reading_confidence_threshold", 50)
	v.SetDefault("extraction.chat_history_limit", 10)

	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "alerts@telehealth.local")
	v.SetDefault("email.from_name", "Telehealth SOS")
	v.SetDefault("email.app_url", "http://localhost:8081")

	v.SetDefault("google.client_id", "")

	v.SetDefault("emergency.fall_threshold_g", 2.5)
}

func providerConfig(v *viper.Viper, prefix string) CompletionProviderConfig {
	return CompletionProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
		BaseURL:      v.GetString(prefix + ".base_url"),
		Project:      v.GetString(prefix + ".project"),
		Location:     v.GetString(prefix + ".location"),
	}
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
