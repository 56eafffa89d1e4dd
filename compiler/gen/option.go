package gen

import (
	"errors"
	"io"
	"log"
	"os"
	"runtime"
	"slices"

	"github.com/syssam/csr/dialect"
)

// DefaultHeader is the first line of every generated file.
const DefaultHeader = "Code generated by csrgen. DO NOT EDIT."

// Logger logs skipped declarations and written files.
type Logger interface {
	Printf(format string, args ...any)
}

// Config holds the configuration of a generation pass.
type Config struct {
	// Header is the header comment of generated files.
	Header string
	// Workers bounds the number of declarations emitted in parallel.
	Workers int
	// Dialect is the SQL dialect of mappers without a dialect argument.
	Dialect string
	// Features lists the features enabled on top of the default ones.
	Features []Feature
	// Disabled lists the names of default features turned off.
	Disabled []string
	// Logger receives the progress and skip messages.
	Logger Logger
	// Verbose logs every written and removed file.
	Verbose bool
}

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		if header == "" {
			return NewConfigError("Header", nil, "header cannot be empty")
		}
		c.Header = header
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithDialect sets the default mapper dialect.
// Supported dialects: "postgres", "mysql", "sqlite", "sqlserver" and their
// driver aliases.
func WithDialect(name string) Option {
	return func(c *Config) error {
		n := dialect.Normalize(name)
		if !dialect.Valid(n) {
			return NewConfigError("Dialect", name, "unsupported dialect; use postgres, mysql, sqlite, or sqlserver")
		}
		c.Dialect = n
		return nil
	}
}

// WithFeatures enables specific features.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithFeatureNames enables features by name.
func WithFeatureNames(names ...string) Option {
	return func(c *Config) error {
		var errs []error
		for _, name := range names {
			f, ok := FeatureByName(name)
			if !ok {
				errs = append(errs, NewConfigError("Features", name, "unknown feature"))
				continue
			}
			c.Features = append(c.Features, f)
		}
		return errors.Join(errs...)
	}
}

// WithoutFeatures disables default features by name.
func WithoutFeatures(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			if _, ok := FeatureByName(name); !ok {
				return NewConfigError("Features", name, "unknown feature")
			}
		}
		c.Disabled = append(c.Disabled, names...)
		return nil
	}
}

// WithLogger sets the logger. A nil logger discards every message.
func WithLogger(l Logger) Option {
	return func(c *Config) error {
		if l == nil {
			l = log.New(io.Discard, "", 0)
		}
		c.Logger = l
		return nil
	}
}

// WithVerbose logs every written and removed file.
func WithVerbose(v bool) Option {
	return func(c *Config) error {
		c.Verbose = v
		return nil
	}
}

// FeatureEnabled reports whether the named feature is enabled.
func (c *Config) FeatureEnabled(name string) bool {
	if slices.Contains(c.Disabled, name) {
		return false
	}
	for _, f := range c.Features {
		if f.Name == name {
			return true
		}
	}
	f, ok := FeatureByName(name)
	return ok && f.Default
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header:  DefaultHeader,
		Workers: runtime.GOMAXPROCS(0),
		Dialect: dialect.Postgres,
		Logger:  log.New(os.Stderr, "csrgen: ", 0),
	}
	if err := c.ApplyAll(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Config) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
