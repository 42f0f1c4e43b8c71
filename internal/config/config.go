// Package config provides application configuration loaded from defaults, an
// optional config file and environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	App       AppConfig       `mapstructure:"app" yaml:"app"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	SMTP      SMTPConfig      `mapstructure:"smtp" yaml:"smtp"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string `mapstructure:"port" yaml:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout" yaml:"read_timeout"`         // seconds
	WriteTimeout    int    `mapstructure:"write_timeout" yaml:"write_timeout"`       // seconds
	IdleTimeout     int    `mapstructure:"idle_timeout" yaml:"idle_timeout"`         // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"` // seconds
}

// DatabaseConfig holds connection settings for postgres or sqlite.
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver" yaml:"driver"`
	Host       string `mapstructure:"host" yaml:"host"`
	Port       int    `mapstructure:"port" yaml:"port"`
	User       string `mapstructure:"user" yaml:"user"`
	Password   string `mapstructure:"password" yaml:"password"`
	DBName     string `mapstructure:"name" yaml:"name"`
	SSLMode    string `mapstructure:"sslmode" yaml:"sslmode"`
	RawDSN     string `mapstructure:"dsn" yaml:"dsn,omitempty"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	Debug      bool   `mapstructure:"debug" yaml:"debug"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool `mapstructure:"dev" yaml:"dev"`
	Migrations bool `mapstructure:"migrations" yaml:"migrations"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret" yaml:"secret"`
}

// RedisConfig enables the payroll generation lock when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	LockTTL  int    `mapstructure:"lock_ttl" yaml:"lock_ttl"` // seconds
}

// StorageConfig selects where payroll PDFs are archived.
type StorageConfig struct {
	Backend         string `mapstructure:"backend" yaml:"backend"` // local, s3 or none
	LocalDir        string `mapstructure:"local_dir" yaml:"local_dir"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix"`
	Region          string `mapstructure:"region" yaml:"region"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style" yaml:"use_path_style"`
}

// SMTPConfig configures report delivery. An empty Host logs messages instead.
type SMTPConfig struct {
	Host          string  `mapstructure:"host" yaml:"host"`
	Port          int     `mapstructure:"port" yaml:"port"`
	Username      string  `mapstructure:"username" yaml:"username"`
	Password      string  `mapstructure:"password" yaml:"password"`
	From          string  `mapstructure:"from" yaml:"from"`
	RatePerMinute float64 `mapstructure:"rate_per_minute" yaml:"rate_per_minute"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
}

// DSN returns the connection string for the configured driver. For postgres an
// explicit DATABASE_DSN wins over the individual settings.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.RawDSN != "" {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	if d.RawDSN != "" && strings.HasPrefix(d.RawDSN, "postgres") {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// envKeys maps config keys to the environment variables that set them.
var envKeys = map[string]string{
	"server.port":               "PORT",
	"server.read_timeout":       "SERVER_READ_TIMEOUT",
	"server.write_timeout":      "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":       "SERVER_IDLE_TIMEOUT",
	"server.shutdown_timeout":   "SERVER_SHUTDOWN_TIMEOUT",
	"database.driver":           "DB_DRIVER",
	"database.host":             "DB_HOST",
	"database.port":             "DB_PORT",
	"database.user":             "DB_USER",
	"database.password":         "DB_PASSWORD",
	"database.name":             "DB_NAME",
	"database.sslmode":          "DB_SSLMODE",
	"database.dsn":              "DATABASE_DSN",
	"database.sqlite_path":      "SQLITE_PATH",
	"database.debug":            "DB_DEBUG",
	"app.dev":                   "DEV",
	"app.migrations":            "MIGRATIONS",
	"session.secret":            "SESSION_SECRET",
	"redis.addr":                "REDIS_ADDR",
	"redis.password":            "REDIS_PASSWORD",
	"redis.db":                  "REDIS_DB",
	"redis.lock_ttl":            "REDIS_LOCK_TTL",
	"storage.backend":           "STORAGE_BACKEND",
	"storage.local_dir":         "STORAGE_LOCAL_DIR",
	"storage.bucket":            "STORAGE_BUCKET",
	"storage.prefix":            "STORAGE_PREFIX",
	"storage.region":            "STORAGE_REGION",
	"storage.endpoint":          "STORAGE_ENDPOINT",
	"storage.access_key_id":     "STORAGE_ACCESS_KEY_ID",
	"storage.secret_access_key": "STORAGE_SECRET_ACCESS_KEY",
	"storage.use_path_style":    "STORAGE_USE_PATH_STYLE",
	"smtp.host":                 "SMTP_HOST",
	"smtp.port":                 "SMTP_PORT",
	"smtp.username":             "SMTP_USERNAME",
	"smtp.password":             "SMTP_PASSWORD",
	"smtp.from":                 "SMTP_FROM",
	"smtp.rate_per_minute":      "SMTP_RATE_PER_MINUTE",
	"log.level":                 "LOG_LEVEL",
	"telemetry.otlp_endpoint":   "OTEL_EXPORTER_OTLP_ENDPOINT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "brushwork")
	v.SetDefault("database.password", "brushwork")
	v.SetDefault("database.name", "brushwork")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.sqlite_path", "brushwork.db")
	v.SetDefault("database.debug", false)

	v.SetDefault("app.dev", true)
	v.SetDefault("app.migrations", false)

	v.SetDefault("session.secret", "devsessionsecret")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", 30)

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local_dir", "data/archive")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.use_path_style", false)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "payroll@brushwork.local")
	v.SetDefault("smtp.rate_per_minute", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("telemetry.otlp_endpoint", "")
}

// Load reads configuration. Precedence, lowest first: defaults, the config file
// at path (skipped when empty), environment variables, overrides.
func Load(path string, overrides ...map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	for _, o := range overrides {
		for key, val := range o {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Storage.Backend {
	case "local", "none":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	return nil
}

const masked = "********"

func mask(s string) string {
	if s == "" {
		return ""
	}
	return masked
}

// Redacted returns a copy safe to print, with secrets masked.
func (c Config) Redacted() Config {
	c.Database.Password = mask(c.Database.Password)
	if c.Database.RawDSN != "" {
		c.Database.RawDSN = masked
	}
	c.Session.Secret = mask(c.Session.Secret)
	c.Redis.Password = mask(c.Redis.Password)
	c.Storage.AccessKeyID = mask(c.Storage.AccessKeyID)
	c.Storage.SecretAccessKey = mask(c.Storage.SecretAccessKey)
	c.SMTP.Password = mask(c.SMTP.Password)
	return c
}
