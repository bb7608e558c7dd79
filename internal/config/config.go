// Package config resolves the settings of a geocheck run from flags, the environment and an env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// APIKeyEnv is the environment variable holding the Google Maps API key.
const APIKeyEnv = "GOOGLE_MAPS_API_KEY"

// EnvPrefix prefixes the environment variables that mirror command-line flags.
const EnvPrefix = "GEOCHECK"

// ErrInvalid marks configuration errors.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings of a single run.
//
// Fields:
// - Input: path of the CSV with the stored property coordinates.
// - MismatchesOutput: path of the mismatch report.
// - ToleranceMeters: largest distance still counted as a match; nil when not given.
// - CacheFile, CacheDSN: where geocoding results are kept between runs. The DSN wins.
// - APIKey: resolved with ResolveAPIKey, never read from flags.
type Config struct {
	Input            string        `mapstructure:"input"             validate:"required"`
	MismatchesOutput string        `mapstructure:"mismatches-output" validate:"required"`
	SummaryOutput    string        `mapstructure:"summary-output"`
	IDColumn         string        `mapstructure:"id-column"         validate:"required"`
	AddressColumn    string        `mapstructure:"address-column"    validate:"required"`
	LatColumn        string        `mapstructure:"lat-column"        validate:"required"`
	LngColumn        string        `mapstructure:"lng-column"        validate:"required"`
	ToleranceMeters  *float64      `mapstructure:"tolerance-meters"  validate:"required,gte=0"`
	EnvFile          string        `mapstructure:"env-file"`
	CacheFile        string        `mapstructure:"cache-file"`
	CacheDSN         string        `mapstructure:"cache-dsn"`
	SleepMS          int           `mapstructure:"sleep-ms"          validate:"gte=0"`
	MaxRows          int           `mapstructure:"max-rows"          validate:"gte=0"`
	DryRun           bool          `mapstructure:"dry-run"`
	Provider         string        `mapstructure:"provider"          validate:"oneof=google google-sdk"`
	Timeout          time.Duration `mapstructure:"timeout"           validate:"gt=0"`
	CABundle         string        `mapstructure:"ca-bundle"`
	MetricsOutput    string        `mapstructure:"metrics-output"`
	Env              string        `mapstructure:"env"               validate:"oneof=local development production"`
	Progress         string        `mapstructure:"progress"          validate:"oneof=auto always never"`

	APIKey string `mapstructure:"-"`
}

// keys lists every setting that can come from the environment.
var keys = []string{
	"input", "mismatches-output", "summary-output",
	"id-column", "address-column", "lat-column", "lng-column",
	"tolerance-meters", "env-file", "cache-file", "cache-dsn",
	"sleep-ms", "max-rows", "dry-run", "provider", "timeout",
	"ca-bundle", "metrics-output", "env", "progress",
}

// Defaults for every optional setting.
var defaults = map[string]any{
	"mismatches-output": "mismatches.csv",
	"id-column":         "id",
	"address-column":    "address",
	"lat-column":        "latitude",
	"lng-column":        "longitude",
	"env-file":          ".env",
	"sleep-ms":          0,
	"max-rows":          0,
	"dry-run":           false,
	"provider":          "google",
	"timeout":           20 * time.Second,
	"env":               "development",
	"progress":          "auto",
}

// New returns a viper instance reading GEOCHECK_* variables, with defaults set.
func New() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return v
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	// Only an explicitly given tolerance counts.
	if !v.IsSet("tolerance-meters") {
		cfg.ToleranceMeters = nil
	}

	if err := newValidator().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, describe(err))
	}

	return &cfg, nil
}

// LoadEnvFile sets the variables of the dotenv file at path that are not set yet.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}

	return nil
}

// ResolveAPIKey reads the API key from the environment.
func (c *Config) ResolveAPIKey() error {
	c.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	if c.APIKey == "" {
		return fmt.Errorf("%w: missing %s; set it in your environment or in %s", ErrInvalid, APIKeyEnv, c.EnvFile)
	}

	return nil
}

// Tolerance returns the tolerance in meters. It must only be called on a validated Config.
func (c *Config) Tolerance() float64 {
	return *c.ToleranceMeters
}

// Delay returns the pause after each provider call.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.SleepMS) * time.Millisecond
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		return name
	})

	return validate
}

// describe turns validation errors into flag-oriented messages.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		flag := "--" + fe.Field()
		switch fe.Tag() {
		case "required":
			messages = append(messages, flag+" is required")
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be >= %s", flag, fe.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be > %s", flag, fe.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", flag, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid (%s)", flag, fe.Tag()))
		}
	}

	return strings.Join(messages, "; ")
}
