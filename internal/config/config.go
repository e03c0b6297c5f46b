package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Translate TranslateConfig `mapstructure:"translate"`
	Drafts    DraftsConfig    `mapstructure:"drafts"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	ClamdAddr      string   `mapstructure:"clamd_addr"`
}

// DatabaseConfig contains connection options for PostgreSQL.
// Host 与 Password 缺省时远程内容库视为未配置，所有远程操作返回 ErrNotConfigured。
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// AuthConfig 包含后台登录所需的 RSA 密钥与令牌有效期。
type AuthConfig struct {
	PrivateKeyPath     string        `mapstructure:"private_key_path"`
	PublicKeyPath      string        `mapstructure:"public_key_path"`
	AccessTokenTTL     time.Duration `mapstructure:"access_token_ttl"`
	LoginLimitPerHour  int           `mapstructure:"login_limit_per_hour"`
	LoginLockThreshold int           `mapstructure:"login_lock_threshold"`
	LoginLockTTL       time.Duration `mapstructure:"login_lock_ttl"`
}

// TranslateConfig 包含主、备翻译服务的配置。
type TranslateConfig struct {
	OpenAIAPIKey     string        `mapstructure:"openai_api_key"`
	OpenAIModel      string        `mapstructure:"openai_model"`
	OpenAIBaseURL    string        `mapstructure:"openai_base_url"`
	MyMemoryEndpoint string        `mapstructure:"mymemory_endpoint"`
	MyMemoryEmail    string        `mapstructure:"mymemory_email"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// DraftsConfig 控制本地草稿存储的容量与过期时间。
type DraftsConfig struct {
	MaxBytes int           `mapstructure:"max_bytes"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Enabled reports whether remote store credentials are present.
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.Host) != "" && strings.TrimSpace(d.Password) != ""
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Addr 返回 host:port 形式的 Redis 地址。
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled reports whether object storage is configured.
func (m MinIOConfig) Enabled() bool {
	return strings.TrimSpace(m.Endpoint) != "" && strings.TrimSpace(m.AccessKeyID) != ""
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.API.AllowedOrigins = splitList(cfg.API.AllowedOrigins)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "postgres")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "require")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "portfolio")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("auth.access_token_ttl", 2*time.Hour)
	v.SetDefault("auth.login_limit_per_hour", 10)
	v.SetDefault("auth.login_lock_threshold", 5)
	v.SetDefault("auth.login_lock_ttl", 15*time.Minute)
	v.SetDefault("translate.openai_model", "gpt-4o-mini")
	v.SetDefault("translate.mymemory_endpoint", "https://api.mymemory.translated.net/get")
	v.SetDefault("translate.timeout", 15*time.Second)
	v.SetDefault("drafts.max_bytes", 5*1024*1024)
	v.SetDefault("drafts.ttl", 30*24*time.Hour)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                    "API_PORT",
		"api.allowed_origins":         "API_ALLOWED_ORIGINS",
		"api.clamd_addr":              "CLAMD_ADDR",
		"database.host":               "DATABASE_HOST",
		"database.port":               "DATABASE_PORT",
		"database.name":               "POSTGRES_DB",
		"database.user":               "POSTGRES_USER",
		"database.password":           "POSTGRES_PASSWORD",
		"database.sslmode":            "DATABASE_SSLMODE",
		"redis.host":                  "REDIS_HOST",
		"redis.port":                  "REDIS_PORT",
		"minio.endpoint":              "MINIO_ENDPOINT",
		"minio.public_endpoint":       "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":         "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":     "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":               "MINIO_USE_SSL",
		"minio.bucket":                "MINIO_BUCKET",
		"minio.region":                "MINIO_REGION",
		"minio.auto_create_bucket":    "MINIO_AUTO_CREATE_BUCKET",
		"auth.private_key_path":       "AUTH_PRIVATE_KEY_PATH",
		"auth.public_key_path":        "AUTH_PUBLIC_KEY_PATH",
		"auth.access_token_ttl":       "AUTH_ACCESS_TOKEN_TTL",
		"auth.login_limit_per_hour":   "AUTH_LOGIN_LIMIT_PER_HOUR",
		"auth.login_lock_threshold":   "AUTH_LOGIN_LOCK_THRESHOLD",
		"auth.login_lock_ttl":         "AUTH_LOGIN_LOCK_TTL",
		"translate.openai_api_key":    "OPENAI_API_KEY",
		"translate.openai_model":      "OPENAI_MODEL",
		"translate.openai_base_url":   "OPENAI_BASE_URL",
		"translate.mymemory_endpoint": "MYMEMORY_ENDPOINT",
		"translate.mymemory_email":    "MYMEMORY_EMAIL",
		"translate.timeout":           "TRANSLATE_TIMEOUT",
		"drafts.max_bytes":            "DRAFTS_MAX_BYTES",
		"drafts.ttl":                  "DRAFTS_TTL",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// 环境变量中的列表以逗号分隔，viper 只会得到单个元素。
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Database.Enabled() {
		if cfg.Database.Port <= 0 {
			return errors.New("database port must be positive")
		}
		if cfg.Database.Name == "" {
			return errors.New("database name is required")
		}
		if cfg.Database.User == "" {
			return errors.New("database user is required")
		}
		if cfg.Database.SSLMode == "" {
			return errors.New("database sslmode is required")
		}
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Enabled() {
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	}
	if cfg.Translate.MyMemoryEndpoint == "" {
		return errors.New("mymemory endpoint is required")
	}
	if cfg.Drafts.MaxBytes <= 0 {
		return errors.New("drafts max bytes must be positive")
	}
	return nil
}
