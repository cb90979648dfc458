// Package config loads the runtime configuration of the legaldocs binaries.
//
// Values come from three layers applied in order: built-in defaults, an
// optional YAML file, then LEGALDOCS_* environment variables. A .env file in
// the working directory is loaded into the environment first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-legaldocs/pkg/records"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEGALDOCS_"

// Storage and database drivers.
const (
	StorageLocal = "local"
	StorageS3    = "s3"

	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// JurisdictionConfig overrides the jurisdiction values printed in documents.
type JurisdictionConfig struct {
	CapitalCity    string `yaml:"capital_city"`
	Currency       string `yaml:"currency"`
	CurrencySymbol string `yaml:"currency_symbol"`
	Court          string `yaml:"court"`
}

// Settings converts the section into assembler settings.
func (j JurisdictionConfig) Settings() records.Settings {
	return records.Settings{
		CapitalCity:    j.CapitalCity,
		Currency:       j.Currency,
		CurrencySymbol: j.CurrencySymbol,
		Court:          j.Court,
	}
}

// S3Config locates the bucket used by the s3 storage driver.
type S3Config struct {
	Region   string `yaml:"region"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Endpoint string `yaml:"endpoint"`
}

// StorageConfig selects where artifacts are written.
type StorageConfig struct {
	Driver string   `yaml:"driver"`
	Root   string   `yaml:"root"`
	S3     S3Config `yaml:"s3"`
}

// DatabaseConfig selects the document store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RedisConfig enables the shared render cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// BrowserConfig drives the headless Chrome used for browser PDFs.
type BrowserConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Bin        string        `yaml:"bin"`
	NoSandbox  bool          `yaml:"no_sandbox"`
	ControlURL string        `yaml:"control_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// RenderConfig holds request defaults.
type RenderConfig struct {
	PDFEngine string   `yaml:"pdf_engine"`
	Formats   []string `yaml:"formats"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Service string `yaml:"service"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	BodyLimit       string        `yaml:"body_limit"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Config is the complete runtime configuration.
type Config struct {
	Jurisdiction JurisdictionConfig `yaml:"jurisdiction"`
	Storage      StorageConfig      `yaml:"storage"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Browser      BrowserConfig      `yaml:"browser"`
	Render       RenderConfig       `yaml:"render"`
	Log          LogConfig          `yaml:"log"`
	HTTP         HTTPConfig         `yaml:"http"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Driver: StorageLocal,
			Root:   "./var/documents",
		},
		Database: DatabaseConfig{
			Driver: DatabaseSQLite,
			DSN:    "./var/legaldocs.db",
		},
		Redis: RedisConfig{TTL: 24 * time.Hour},
		Browser: BrowserConfig{
			Enabled: true,
			Timeout: 60 * time.Second,
		},
		Render: RenderConfig{
			PDFEngine: string(records.PDFEngineBrowser),
			Formats:   []string{string(records.FormatPDF)},
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "json",
			Service: "legaldocs",
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			BodyLimit:       "2M",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load reads .env (when present), then path (when not empty), then applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports inconsistent settings.
func (c Config) Validate() error {
	var problems []string
	switch c.Storage.Driver {
	case StorageLocal:
		if c.Storage.Root == "" {
			problems = append(problems, "storage.root is required for the local driver")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			problems = append(problems, "storage.s3.bucket is required for the s3 driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("storage.driver %q is not one of local, s3", c.Storage.Driver))
	}
	switch c.Database.Driver {
	case DatabaseSQLite, DatabasePostgres:
		if c.Database.DSN == "" {
			problems = append(problems, "database.dsn is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q is not one of sqlite, postgres", c.Database.Driver))
	}
	switch records.PDFEngine(c.Render.PDFEngine) {
	case records.PDFEngineBrowser, records.PDFEngineLayout:
	default:
		problems = append(problems, fmt.Sprintf("render.pdf_engine %q is not one of browser, layout", c.Render.PDFEngine))
	}
	for _, f := range c.Render.Formats {
		if _, err := records.ParseFormat(f); err != nil {
			problems = append(problems, fmt.Sprintf("render.formats: unknown format %q", f))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Formats returns the parsed default formats.
func (c Config) Formats() []records.Format {
	out := make([]records.Format, 0, len(c.Render.Formats))
	for _, raw := range c.Render.Formats {
		if f, err := records.ParseFormat(raw); err == nil {
			out = append(out, f)
		}
	}
	return out
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	env := envReader{lookup: lookup}

	env.str("JURISDICTION_CAPITAL_CITY", &c.Jurisdiction.CapitalCity)
	env.str("JURISDICTION_CURRENCY", &c.Jurisdiction.Currency)
	env.str("JURISDICTION_CURRENCY_SYMBOL", &c.Jurisdiction.CurrencySymbol)
	env.str("JURISDICTION_COURT", &c.Jurisdiction.Court)

	env.str("STORAGE_DRIVER", &c.Storage.Driver)
	env.str("STORAGE_ROOT", &c.Storage.Root)
	env.str("S3_REGION", &c.Storage.S3.Region)
	env.str("S3_BUCKET", &c.Storage.S3.Bucket)
	env.str("S3_PREFIX", &c.Storage.S3.Prefix)
	env.str("S3_ENDPOINT", &c.Storage.S3.Endpoint)

	env.str("DATABASE_DRIVER", &c.Database.Driver)
	env.str("DATABASE_DSN", &c.Database.DSN)

	env.str("REDIS_ADDR", &c.Redis.Addr)
	env.str("REDIS_PASSWORD", &c.Redis.Password)
	env.integer("REDIS_DB", &c.Redis.DB)
	env.duration("REDIS_TTL", &c.Redis.TTL)

	env.boolean("BROWSER_ENABLED", &c.Browser.Enabled)
	env.str("BROWSER_BIN", &c.Browser.Bin)
	env.boolean("BROWSER_NO_SANDBOX", &c.Browser.NoSandbox)
	env.str("BROWSER_CONTROL_URL", &c.Browser.ControlURL)
	env.duration("BROWSER_TIMEOUT", &c.Browser.Timeout)

	env.str("PDF_ENGINE", &c.Render.PDFEngine)
	env.list("FORMATS", &c.Render.Formats)

	env.str("LOG_LEVEL", &c.Log.Level)
	env.str("LOG_FORMAT", &c.Log.Format)
	env.str("LOG_SERVICE", &c.Log.Service)

	env.str("HTTP_ADDR", &c.HTTP.Addr)
	env.str("HTTP_BODY_LIMIT", &c.HTTP.BodyLimit)
	env.duration("HTTP_SHUTDOWN_TIMEOUT", &c.HTTP.ShutdownTimeout)

	return errors.Join(env.errs...)
}

type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (r *envReader) get(key string) (string, bool) {
	v, ok := r.lookup(EnvPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *envReader) str(key string, dst *string) {
	if v, ok := r.get(key); ok {
		*dst = v
	}
}

func (r *envReader) integer(key string, dst *int) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = n
}

func (r *envReader) boolean(key string, dst *bool) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = b
}

func (r *envReader) duration(key string, dst *time.Duration) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = d
}

func (r *envReader) list(key string, dst *[]string) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}
