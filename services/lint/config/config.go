// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads listenercheck project configuration.
package config

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/rules"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// FileNames are the project config file names searched by Load, in order.
var FileNames = []string{".listenercheck.yaml", ".listenercheck.yml"}

// MaxConfigFileSize bounds the size of a project config file.
const MaxConfigFileSize = 1 << 20

// Scope values.
const (
	ScopeProgram = "program"
	ScopeClass   = "class"
)

// ErrInvalidConfig wraps validation failures.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the merged listenercheck configuration.
//
// Thread Safety: Immutable after loading; safe for concurrent reads.
type Config struct {
	// Extensions lists the file extensions linted during directory walks.
	Extensions []string `yaml:"extensions" validate:"required,min=1,dive,startswith=."`

	// Exclude lists directory names or glob patterns skipped during walks.
	Exclude []string `yaml:"exclude" validate:"dive,required"`

	// Scope selects the registry scope: program or class.
	Scope string `yaml:"scope" validate:"required,oneof=program class"`

	// MaxFileSize is the largest file, in bytes, that will be parsed.
	MaxFileSize int64 `yaml:"max_file_size" validate:"gt=0"`

	// Workers is the parallel file worker count. 0 means GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0,lte=1024"`

	// GlobalReceivers are bare identifiers treated as stable targets.
	GlobalReceivers []string `yaml:"global_receivers" validate:"dive,required"`

	// Rules enables or disables rules by id. Ids may carry the tipsi/ prefix.
	Rules map[string]bool `yaml:"rules"`

	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig configures the on-disk result cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir" validate:"required_if=Enabled true"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := decodeInto(cfg, defaultConfigYAML); err != nil {
		return nil, fmt.Errorf("parsing default config: %w", err)
	}
	return cfg, nil
}

// Load finds and loads the project config in root.
//
// Description:
//
//	Looks for each of FileNames in root and loads the first one found over
//	the embedded defaults. A missing file is not an error; the defaults are
//	returned.
//
// Inputs:
//
//	root - Project directory. Empty means the current directory.
//
// Outputs:
//
//	*Config - The merged, validated configuration.
//	string  - The path of the loaded file, or "" when defaults were used.
//	error   - Non-nil if a file exists but cannot be read, parsed or validated.
func Load(root string) (*Config, string, error) {
	if root == "" {
		root = "."
	}
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, "", fmt.Errorf("checking %s: %w", path, err)
		}
		cfg, err := LoadFile(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	cfg, err := Default()
	if err != nil {
		return nil, "", err
	}
	slog.Debug("no project config found, using defaults", slog.String("root", root))
	return cfg, "", nil
}

// LoadFile loads the config at path over the embedded defaults.
//
// Outputs:
//
//	*Config - The merged, validated configuration.
//	error   - Non-nil if the file is missing, too large, malformed, has
//	          unknown keys or fails validation.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > MaxConfigFileSize {
		return nil, fmt.Errorf("%s exceeds maximum size (%d > %d)", path, len(data), MaxConfigFileSize)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("config loaded",
		slog.String("path", path),
		slog.String("scope", cfg.Scope),
		slog.Int("global_receivers", len(cfg.GlobalReceivers)),
	)
	return cfg, nil
}

// Parse merges YAML data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	defaults := cfg.Rules
	cfg.Rules = nil
	if err := decodeInto(cfg, data); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Rules = mergeRules(defaults, cfg.Rules)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeInto(cfg *Config, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// mergeRules overlays project rule settings on the defaults, keyed by the
// normalized rule id.
func mergeRules(defaults, project map[string]bool) map[string]bool {
	merged := make(map[string]bool, len(defaults)+len(project))
	for id, on := range defaults {
		merged[rules.NormalizeID(id)] = on
	}
	for id, on := range project {
		merged[rules.NormalizeID(id)] = on
	}
	return merged
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// RuleEnabled reports whether the rule id is enabled. Rules not listed are
// enabled.
func (c *Config) RuleEnabled(id string) bool {
	enabled, ok := c.Rules[rules.NormalizeID(id)]
	return !ok || enabled
}

// Fingerprint returns a stable hash of every setting that affects lint
// output. Cache entries are keyed by it.
func (c *Config) Fingerprint() string {
	enabled := make([]string, 0, len(c.Rules))
	for id, on := range c.Rules {
		enabled = append(enabled, fmt.Sprintf("%s=%t", id, on))
	}
	sort.Strings(enabled)
	globals := append([]string(nil), c.GlobalReceivers...)
	sort.Strings(globals)

	h := sha256.New()
	fmt.Fprintf(h, "scope=%s\n", c.Scope)
	fmt.Fprintf(h, "globals=%s\n", strings.Join(globals, ","))
	fmt.Fprintf(h, "rules=%s\n", strings.Join(enabled, ","))
	fmt.Fprintf(h, "max_file_size=%d\n", c.MaxFileSize)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
