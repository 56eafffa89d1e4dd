package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/csr/compiler/gen"
)

const defaultConfigFile = "csrgen.yaml"

// config is the content of csrgen.yaml, overridden by the command flags.
type config struct {
	// Patterns are the package patterns to load; "./..." by default.
	Patterns []string `yaml:"patterns,omitempty"`
	Header   string   `yaml:"header,omitempty"`
	Workers  int      `yaml:"workers,omitempty"`
	Dialect  string   `yaml:"dialect,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
	// Features enables optional features; Disable turns default ones off.
	Features []string `yaml:"features,omitempty"`
	Disable  []string `yaml:"disable,omitempty"`
	// Cache enables the cache feature.
	Cache   bool `yaml:"cache,omitempty"`
	Verbose bool `yaml:"verbose,omitempty"`

	// dir is the directory of the configuration file; patterns resolve
	// relative to it.
	dir string
}

// readConfig reads the configuration file at path. A missing file yields
// the defaults unless the path was set explicitly.
func readConfig(path string, explicit bool) (*config, error) {
	cfg := &config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		cfg.dir = dir
	}
	return cfg, nil
}

// resolveConfig reads the configuration file and applies the flags and
// the pattern arguments on top of it.
func resolveConfig(cmd *cobra.Command, args []string) (*config, error) {
	cfg, err := readConfig(flagConfig, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.Patterns, cfg.dir = args, ""
	}
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = []string{"./..."}
	}
	if flags.Changed("workers") {
		cfg.Workers = flagWorkers
	}
	if flags.Changed("dialect") {
		cfg.Dialect = flagDialect
	}
	if flags.Changed("header") {
		cfg.Header = flagHeader
	}
	if flags.Changed("tags") {
		cfg.Tags = flagTags
	}
	if flags.Changed("verbose") {
		cfg.Verbose = flagVerbose
	}
	return cfg, nil
}

// options returns the generator options of the configuration.
func (c *config) options(logger gen.Logger) ([]gen.Option, error) {
	opts := []gen.Option{gen.WithLogger(logger), gen.WithVerbose(c.Verbose)}
	if c.Header != "" {
		opts = append(opts, gen.WithHeader(c.Header))
	}
	if c.Workers != 0 {
		opts = append(opts, gen.WithWorkers(c.Workers))
	}
	if c.Dialect != "" {
		opts = append(opts, gen.WithDialect(c.Dialect))
	}
	features := append([]string(nil), c.Features...)
	if c.Cache {
		features = append(features, gen.FeatureCache.Name)
	}
	if len(features) > 0 {
		opts = append(opts, gen.WithFeatureNames(features...))
	}
	if len(c.Disable) > 0 {
		opts = append(opts, gen.WithoutFeatures(c.Disable...))
	}
	if _, err := gen.NewConfig(opts...); err != nil {
		return nil, err
	}
	return opts, nil
}

// buildFlags returns the build system flags selecting tags.
func buildFlags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return []string{"-tags=" + strings.Join(tags, ",")}
}
