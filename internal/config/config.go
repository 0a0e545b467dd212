package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// FileName is the config file at the root of a books directory.
const FileName = "ledger.yaml"

// EnvPrefix prefixes every environment override, e.g. LEDGER_BASE_CURRENCY.
const EnvPrefix = "LEDGER"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Config represents the top-level ledger.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Fiscal   FiscalConfig   `yaml:"fiscal"`
	Books    BooksConfig    `yaml:"books"`
	Logging  LoggingConfig  `yaml:"logging"`
	Audit    AuditConfig    `yaml:"audit"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name" validate:"required"`
	EntityType string `yaml:"entity_type"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start" validate:"required,len=5"` // "MM-DD" format, e.g. "01-01"
}

// BooksConfig controls ledger-wide behavior.
type BooksConfig struct {
	BaseCurrency    string `yaml:"base_currency" validate:"required,len=3,uppercase"`
	CollationLocale string `yaml:"collation_locale" validate:"required"` // BCP 47 tag used to order account codes
}

// LoggingConfig controls the logrus output.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"required,oneof=trace debug info warn warning error fatal panic"`
	Format string `yaml:"format" validate:"required,oneof=json text"`
}

// AuditConfig controls the append-only audit trail.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Actor   string `yaml:"actor" validate:"required_if=Enabled true"`
}

// envOverrides holds the variables that may override the file. Unset
// variables leave the file value alone.
type envOverrides struct {
	BaseCurrency    string `envconfig:"BASE_CURRENCY"`
	CollationLocale string `envconfig:"COLLATION_LOCALE"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
	LogFormat       string `envconfig:"LOG_FORMAT"`
	AuditEnabled    string `envconfig:"AUDIT_ENABLED"`
	AuditActor      string `envconfig:"AUDIT_ACTOR"`
}

// Load reads a ledger.yaml file from disk, applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overlays LEDGER_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	if env.BaseCurrency != "" {
		cfg.Books.BaseCurrency = env.BaseCurrency
	}
	if env.CollationLocale != "" {
		cfg.Books.CollationLocale = env.CollationLocale
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Logging.Format = env.LogFormat
	}
	if env.AuditEnabled != "" {
		enabled, err := strconv.ParseBool(env.AuditEnabled)
		if err != nil {
			return fmt.Errorf("parsing %s_AUDIT_ENABLED %q: %w", EnvPrefix, env.AuditEnabled, err)
		}
		cfg.Audit.Enabled = enabled
	}
	if env.AuditActor != "" {
		cfg.Audit.Actor = env.AuditActor
	}
	return nil
}

// Validate checks field constraints plus the fiscal start date and locale tag.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := time.Parse("01-02", cfg.Fiscal.YearStart); err != nil {
		return fmt.Errorf("%w: fiscal.year_start %q is not MM-DD", ErrInvalid, cfg.Fiscal.YearStart)
	}
	if _, err := cfg.Locale(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Locale parses books.collation_locale.
func (c *Config) Locale() (language.Tag, error) {
	tag, err := language.Parse(c.Books.CollationLocale)
	if err != nil {
		return language.Und, fmt.Errorf("parsing collation locale %q: %w", c.Books.CollationLocale, err)
	}
	return tag, nil
}

// Default returns a Config with sensible defaults for a new set of books.
func Default(businessName, entityType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Books: BooksConfig{
			BaseCurrency:    "USD",
			CollationLocale: "en",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Audit: AuditConfig{
			Enabled: true,
			Actor:   "ledgerdesk",
		},
	}
}
