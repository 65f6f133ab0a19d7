package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location, overridable with
// FEEDBACK_CONFIG.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML. Every field can be
// overridden by a FEEDBACK_* environment variable; secrets are expected to
// arrive that way in production.
type FileConfig struct {
	Port              string   `yaml:"port"`
	LogLevel          string   `yaml:"logLevel"`
	DatabaseURL       string   `yaml:"databaseURL"`
	TokenSecret       string   `yaml:"tokenSecret"`
	TokenTTL          string   `yaml:"tokenTTL"`
	AllowRegistration bool     `yaml:"allowRegistration"`
	UploadDir         string   `yaml:"uploadDir"`
	MaxUploadBytes    int64    `yaml:"maxUploadBytes"`
	AllowedExtensions []string `yaml:"allowedExtensions"`
	Branches          []string `yaml:"branches"`
	AllowedOrigins    []string `yaml:"allowedOrigins"`

	S3Endpoint  string `yaml:"s3Endpoint"`
	S3AccessKey string `yaml:"s3AccessKey"`
	S3SecretKey string `yaml:"s3SecretKey"`
	S3Bucket    string `yaml:"s3Bucket"`
	S3UseSSL    bool   `yaml:"s3UseSSL"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	AMQPURL   string `yaml:"amqpURL"`
	AMQPQueue string `yaml:"amqpQueue"`
}

// Load reads config from path (defaults to config.yaml) and applies
// environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
		if v := os.Getenv("FEEDBACK_CONFIG"); v != "" {
			path = v
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("FEEDBACK_PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("FEEDBACK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("FEEDBACK_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("FEEDBACK_TOKEN_SECRET"); v != "" {
		cfg.TokenSecret = v
	}
	if v := os.Getenv("FEEDBACK_TOKEN_TTL"); v != "" {
		cfg.TokenTTL = strings.TrimSpace(v)
	}
	if v := os.Getenv("FEEDBACK_ALLOW_REGISTRATION"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.AllowRegistration = b
		}
	}
	if v := os.Getenv("FEEDBACK_UPLOAD_DIR"); v != "" {
		cfg.UploadDir = strings.TrimSpace(v)
	}
	if v := os.Getenv("FEEDBACK_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("FEEDBACK_ALLOWED_EXTENSIONS"); v != "" {
		cfg.AllowedExtensions = splitCSV(v)
	}
	if v := os.Getenv("FEEDBACK_BRANCHES"); v != "" {
		cfg.Branches = splitCSV(v)
	}
	if v := os.Getenv("FEEDBACK_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("FEEDBACK_S3_ENDPOINT"); v != "" {
		cfg.S3Endpoint = strings.TrimSpace(v)
	}
	if v := os.Getenv("FEEDBACK_S3_ACCESS_KEY"); v != "" {
		cfg.S3AccessKey = v
	}
	if v := os.Getenv("FEEDBACK_S3_SECRET_KEY"); v != "" {
		cfg.S3SecretKey = v
	}
	if v := os.Getenv("FEEDBACK_S3_BUCKET"); v != "" {
		cfg.S3Bucket = strings.TrimSpace(v)
	}
	if v := os.Getenv("FEEDBACK_S3_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.S3UseSSL = b
		}
	}
	if v := os.Getenv("FEEDBACK_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = strings.TrimSpace(v)
	}
	if v := os.Getenv("FEEDBACK_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("FEEDBACK_AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("FEEDBACK_AMQP_QUEUE"); v != "" {
		cfg.AMQPQueue = strings.TrimSpace(v)
	}
	if cfg.TokenTTL == "" {
		cfg.TokenTTL = "1h"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or FEEDBACK_PORT)")
	}
	// The signing secret has no safe default on purpose.
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		return errors.New("config: tokenSecret is required (set FEEDBACK_TOKEN_SECRET)")
	}
	if _, err := time.ParseDuration(cfg.TokenTTL); err != nil {
		return fmt.Errorf("config: invalid tokenTTL: %w", err)
	}
	if cfg.MaxUploadBytes < 0 {
		return errors.New("config: maxUploadBytes must be >= 0")
	}
	if cfg.S3Endpoint != "" && strings.TrimSpace(cfg.S3Bucket) == "" {
		return errors.New("config: s3Bucket is required when s3Endpoint is set")
	}
	if cfg.AMQPURL != "" && strings.TrimSpace(cfg.AMQPQueue) == "" {
		return errors.New("config: amqpQueue is required when amqpURL is set")
	}
	return nil
}

// ParseTokenTTL parses the token lifetime duration string.
func ParseTokenTTL(ttl string) (time.Duration, error) {
	if ttl == "" {
		return time.Hour, nil
	}
	dur, err := time.ParseDuration(ttl)
	if err != nil {
		return 0, fmt.Errorf("invalid tokenTTL duration: %w", err)
	}
	return dur, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
