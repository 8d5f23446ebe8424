// Package config loads service settings from .env, an optional YAML file and
// the process environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	DBDriver       string        `yaml:"db_driver"`
	DatabaseURL    string        `yaml:"database_url"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	GatewayToken   string        `yaml:"gateway_token"`

	OCR       OCRConfig     `yaml:"ocr"`
	R2        R2Config      `yaml:"r2"`
	Reconcile time.Duration `yaml:"reconcile_interval"`
}

type OCRConfig struct {
	ServiceURL string        `yaml:"service_url"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`
}

type R2Config struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	Bucket          string `yaml:"bucket"`
	CDNBaseURL      string `yaml:"cdn_base_url"`
}

// Enabled reports whether enough R2 settings are present to upload.
func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.AccessKeySecret != "" && r.Bucket != ""
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func defaults() *Config {
	return &Config{
		Port:           "5200",
		DBDriver:       DriverPostgres,
		AllowedOrigins: []string{"http://localhost:3000"},
		TokenTTL:       72 * time.Hour,
		OCR:            OCRConfig{Timeout: 30 * time.Second},
		Reconcile:      time.Hour,
	}
}

// Load builds the configuration. A missing .env is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.GatewayToken, "GATEWAY_TOKEN")
	setString(&cfg.OCR.ServiceURL, "OCR_SERVICE_URL")
	setString(&cfg.OCR.Token, "OCR_SERVICE_TOKEN")
	setString(&cfg.R2.AccountID, "CLOUDFLARE_ACCOUNT_ID")
	setString(&cfg.R2.AccessKeyID, "R2_ACCESS_KEY_ID")
	setString(&cfg.R2.AccessKeySecret, "R2_ACCESS_KEY_SECRET")
	setString(&cfg.R2.Bucket, "R2_BUCKET_NAME")
	setString(&cfg.R2.CDNBaseURL, "CDN_BASE_URL")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	for key, dst := range map[string]*time.Duration{
		"TOKEN_TTL":          &cfg.TokenTTL,
		"OCR_TIMEOUT":        &cfg.OCR.Timeout,
		"RECONCILE_INTERVAL": &cfg.Reconcile,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
	}
	return nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverSQLite {
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q (use postgres or sqlite)", c.DBDriver))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Reconcile <= 0 {
		errs = append(errs, errors.New("RECONCILE_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
