// Package config holds the numeric thresholds and debug switches consulted by
// tensor operations.
//
// A *Config is threaded through tensor constructors; there is no process-wide
// instance. Build one with New and functional options, from any typed option
// carrier with FromOptions, or from a YAML file with Load.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Defaults.
const (
	// DefaultNegligible is the norm at or below which a result collapses to exact zero.
	DefaultNegligible = 1e-15

	// DefaultCheckArrows enables orientation checks on symmetry-respecting indices.
	DefaultCheckArrows = true

	// DefaultScaleLogLimit is the largest |log magnitude| a scale factor may reach
	// before its storage is normalized.
	DefaultScaleLogLimit = 200.0

	// DefaultImagTolerance is the relative imaginary part tolerated by real accessors.
	DefaultImagTolerance = 1e-14

	// DefaultPrintData controls whether formatting dumps elements.
	DefaultPrintData = false

	// DefaultPrintScale is the magnitude below which elements are left out of dumps.
	DefaultPrintScale = 1e-10

	// DefaultDebug enables debug logging of storage events.
	DefaultDebug = false
)

// Option keys.
const (
	KeyNegligible    = "negligible"
	KeyCheckArrows   = "check_arrows"
	KeyScaleLogLimit = "scale_log_limit"
	KeyImagTolerance = "imag_tolerance"
	KeyPrintData     = "print_data"
	KeyPrintScale    = "print_scale"
	KeyDebug         = "debug"
)

// EnvPrefix prefixes environment overrides, e.g. ITENSOR_NEGLIGIBLE.
const EnvPrefix = "ITENSOR"

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("config: invalid value")

// Config is the typed configuration surface.
type Config struct {
	Negligible    float64
	CheckArrows   bool
	ScaleLogLimit float64
	ImagTolerance float64
	PrintData     bool
	PrintScale    float64
	Debug         bool

	// Logger receives warnings and, with Debug set, storage event logs.
	Logger *slog.Logger
}

// Option mutates a Config under construction.
type Option func(*Config)

// Default returns a Config with every documented default.
func Default() *Config {
	return &Config{
		Negligible:    DefaultNegligible,
		CheckArrows:   DefaultCheckArrows,
		ScaleLogLimit: DefaultScaleLogLimit,
		ImagTolerance: DefaultImagTolerance,
		PrintData:     DefaultPrintData,
		PrintScale:    DefaultPrintScale,
		Debug:         DefaultDebug,
	}
}

// New returns Default with opts applied.
// Options panic on nonsensical values.
func New(opts ...Option) *Config {
	c := Default()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithNegligible sets the exact-zero collapse threshold.
func WithNegligible(v float64) Option {
	if !finiteNonNeg(v) {
		panic("config: WithNegligible: threshold must be finite, non-negative")
	}
	return func(c *Config) { c.Negligible = v }
}

// WithCheckArrows toggles orientation checking.
func WithCheckArrows(on bool) Option {
	return func(c *Config) { c.CheckArrows = on }
}

// WithScaleLogLimit sets the log-magnitude limit of scale factors.
func WithScaleLogLimit(v float64) Option {
	if !finiteNonNeg(v) || v == 0 {
		panic("config: WithScaleLogLimit: limit must be finite, positive")
	}
	return func(c *Config) { c.ScaleLogLimit = v }
}

// WithImagTolerance sets the imaginary part tolerance of real accessors.
func WithImagTolerance(v float64) Option {
	if !finiteNonNeg(v) {
		panic("config: WithImagTolerance: tolerance must be finite, non-negative")
	}
	return func(c *Config) { c.ImagTolerance = v }
}

// WithPrintData toggles element dumps in formatted output.
func WithPrintData(on bool) Option {
	return func(c *Config) { c.PrintData = on }
}

// WithPrintScale sets the magnitude below which dumped elements are skipped.
func WithPrintScale(v float64) Option {
	if !finiteNonNeg(v) {
		panic("config: WithPrintScale: scale must be finite, non-negative")
	}
	return func(c *Config) { c.PrintScale = v }
}

// WithDebug toggles debug logging.
func WithDebug(on bool) Option {
	return func(c *Config) { c.Debug = on }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// Log returns the configured logger, or slog.Default.
func (c *Config) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Validate reports the first out-of-range field.
func (c *Config) Validate() error {
	switch {
	case !finiteNonNeg(c.Negligible):
		return fmt.Errorf("%w: %s = %g", ErrInvalidConfig, KeyNegligible, c.Negligible)
	case !finiteNonNeg(c.ScaleLogLimit) || c.ScaleLogLimit == 0:
		return fmt.Errorf("%w: %s = %g", ErrInvalidConfig, KeyScaleLogLimit, c.ScaleLogLimit)
	case !finiteNonNeg(c.ImagTolerance):
		return fmt.Errorf("%w: %s = %g", ErrInvalidConfig, KeyImagTolerance, c.ImagTolerance)
	case !finiteNonNeg(c.PrintScale):
		return fmt.Errorf("%w: %s = %g", ErrInvalidConfig, KeyPrintScale, c.PrintScale)
	}
	return nil
}

// Options is a named-option carrier with typed getters. *viper.Viper satisfies it.
type Options interface {
	GetBool(key string) bool
	GetInt(key string) int
	GetFloat64(key string) float64
	GetString(key string) string
	IsSet(key string) bool
}

// FromOptions reads every known key present in o over the defaults.
func FromOptions(o Options) (*Config, error) {
	c := Default()
	if o.IsSet(KeyNegligible) {
		c.Negligible = o.GetFloat64(KeyNegligible)
	}
	if o.IsSet(KeyCheckArrows) {
		c.CheckArrows = o.GetBool(KeyCheckArrows)
	}
	if o.IsSet(KeyScaleLogLimit) {
		c.ScaleLogLimit = o.GetFloat64(KeyScaleLogLimit)
	}
	if o.IsSet(KeyImagTolerance) {
		c.ImagTolerance = o.GetFloat64(KeyImagTolerance)
	}
	if o.IsSet(KeyPrintData) {
		c.PrintData = o.GetBool(KeyPrintData)
	}
	if o.IsSet(KeyPrintScale) {
		c.PrintScale = o.GetFloat64(KeyPrintScale)
	}
	if o.IsSet(KeyDebug) {
		c.Debug = o.GetBool(KeyDebug)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Debug {
		c.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return c, nil
}

// NewViper returns a viper instance with defaults and ITENSOR_* environment
// overrides registered. path may be empty; a missing file is not an error.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(KeyNegligible, DefaultNegligible)
	v.SetDefault(KeyCheckArrows, DefaultCheckArrows)
	v.SetDefault(KeyScaleLogLimit, DefaultScaleLogLimit)
	v.SetDefault(KeyImagTolerance, DefaultImagTolerance)
	v.SetDefault(KeyPrintData, DefaultPrintData)
	v.SetDefault(KeyPrintScale, DefaultPrintScale)
	v.SetDefault(KeyDebug, DefaultDebug)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// Load reads a YAML config file plus environment overrides.
func Load(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return FromOptions(v)
}

func finiteNonNeg(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
