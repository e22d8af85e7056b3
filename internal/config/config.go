// Package config loads service configuration from YAML with environment
// overrides for deployment-specific values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	// Public addressing: sites are served at https://<subdomain>.<baseDomain>.
	BaseDomain string `yaml:"baseDomain"`

	// Local static root where published file sets are written.
	StaticRoot string `yaml:"staticRoot"`

	// Postgres DSN; empty selects the in-memory store (development only).
	DatabaseDSN string `yaml:"databaseDSN"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	UserTokenSecret string `yaml:"userTokenSecret"`
	UserTokenIssuer string `yaml:"userTokenIssuer"`

	// Remote hosting provider; empty baseURL disables remote deploys.
	HostingBaseURL string `yaml:"hostingBaseURL"`
	HostingToken   string `yaml:"hostingToken"`

	// Optional object-store mirror of published file sets.
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	// Optional AMQP broker for site lifecycle events.
	AMQPURL      string `yaml:"amqpURL"`
	AMQPExchange string `yaml:"amqpExchange"`

	TrustedProxyCIDRs           []string `yaml:"trustedProxyCidrs"`
	AnalyticsRateLimitPerMinute int      `yaml:"analyticsRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("FOLIOHOST_PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("FOLIOHOST_BASE_DOMAIN"); v != "" {
		cfg.BaseDomain = strings.TrimSpace(v)
	}
	if v := os.Getenv("FOLIOHOST_STATIC_ROOT"); v != "" {
		cfg.StaticRoot = strings.TrimSpace(v)
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("USER_TOKEN_SECRET"); v != "" {
		cfg.UserTokenSecret = v
	}
	if v := os.Getenv("USER_TOKEN_ISSUER"); v != "" {
		cfg.UserTokenIssuer = v
	}
	if v := os.Getenv("HOSTING_BASE_URL"); v != "" {
		cfg.HostingBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("HOSTING_TOKEN"); v != "" {
		cfg.HostingToken = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = strings.TrimSpace(v)
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = strings.TrimSpace(v)
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.MinioUseSSL = b
		}
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("AMQP_EXCHANGE"); v != "" {
		cfg.AMQPExchange = strings.TrimSpace(v)
	}
	if v := os.Getenv("FOLIOHOST_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	if v := os.Getenv("FOLIOHOST_ANALYTICS_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AnalyticsRateLimitPerMinute = n
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if strings.TrimSpace(cfg.BaseDomain) == "" {
		return errors.New("config: baseDomain is required (set in config.yaml)")
	}
	if strings.TrimSpace(cfg.StaticRoot) == "" {
		return errors.New("config: staticRoot is required (set in config.yaml)")
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required for locking and rate limiting")
	}
	if strings.TrimSpace(cfg.UserTokenSecret) == "" {
		return errors.New("config: userTokenSecret is required (set in config.yaml or USER_TOKEN_SECRET)")
	}
	if cfg.AnalyticsRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if cfg.MinioEndpoint != "" && cfg.MinioBucket == "" {
		return errors.New("config: minioBucket is required when minioEndpoint is set")
	}
	return nil
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
