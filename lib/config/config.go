// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/hipchat/lib/secret"
)

// EnvironmentVariable names the config file for Load.
const EnvironmentVariable = "HIPCHAT_CONFIG"

// Config is the client configuration.
type Config struct {
	// Token is the API auth token. Usually written as ${HIPCHAT_TOKEN}.
	// Mutually exclusive with TokenFile.
	Token string `yaml:"token" json:"token"`

	// TokenFile is a path to a file holding the token ("-" reads stdin).
	TokenFile string `yaml:"token_file" json:"token_file"`

	// RoomID is the default target room. Nil means not configured.
	RoomID *int `yaml:"room_id" json:"room_id"`

	// From is the default sender name (15 characters or less unless
	// AutoTruncate is set).
	From string `yaml:"from" json:"from"`

	// Format is the response format for raw output: "json" or "xml".
	// Default: json
	Format string `yaml:"format" json:"format"`

	// Notify makes sent messages notify room members.
	// Default: false
	Notify bool `yaml:"notify" json:"notify"`

	// AutoTruncate shortens over-long senders and messages instead of
	// rejecting them.
	// Default: true
	AutoTruncate bool `yaml:"auto_truncate" json:"auto_truncate"`

	// Color is the default background color for sent messages.
	Color string `yaml:"color" json:"color"`

	// MessageFormat is the default message_format for sent messages:
	// "html" or "text".
	MessageFormat string `yaml:"message_format" json:"message_format"`

	// Timezone is sent with history requests (e.g., "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// BaseURL overrides the API root.
	// Default: https://api.hipchat.com/v1
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Timeout bounds each request, as a Go duration string.
	// Default: 30s
	Timeout string `yaml:"timeout" json:"timeout"`

	// RequestsPerMinute throttles requests client-side. Zero disables
	// throttling.
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// Default returns the defaults that a config file is merged onto.
func Default() *Config {
	return &Config{
		Format:       "json",
		AutoTruncate: true,
		BaseURL:      "https://api.hipchat.com/v1",
		Timeout:      "30s",
	}
}

// Load loads configuration from the file named by HIPCHAT_CONFIG. There is
// no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your hipchat.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from path and expands ${VAR} references.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	cfg.expandVariables()

	return cfg, nil
}

// loadFile merges a single file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		return yaml.Unmarshal(data, c)
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Token = expandVars(c.Token, vars)
	c.TokenFile = expandVars(c.TokenFile, vars)
	c.From = expandVars(c.From, vars)
	c.BaseURL = expandVars(c.BaseURL, vars)
	c.Timezone = expandVars(c.Timezone, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Provided vars first, then the environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// TimeoutDuration parses Timeout. An empty Timeout means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return duration, nil
}

// LoadToken returns the configured token in protected memory, or nil if
// neither token nor token_file is set. The caller owns the Buffer.
func (c *Config) LoadToken() (*secret.Buffer, error) {
	switch {
	case c.Token != "":
		return secret.NewFromString(c.Token)
	case c.TokenFile != "":
		return secret.ReadFromPath(c.TokenFile)
	default:
		return nil, nil
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Token != "" && c.TokenFile != "" {
		errs = append(errs, fmt.Errorf("token and token_file are mutually exclusive"))
	}

	if c.RoomID != nil && *c.RoomID < 0 {
		errs = append(errs, fmt.Errorf("room_id must not be negative, got %d", *c.RoomID))
	}

	switch strings.ToLower(c.Format) {
	case "", "json", "xml":
	default:
		errs = append(errs, fmt.Errorf("invalid format: %s (want json or xml)", c.Format))
	}

	switch c.Color {
	case "", "yellow", "red", "green", "purple", "gray", "random":
	default:
		errs = append(errs, fmt.Errorf("invalid color: %s (want yellow, red, green, purple, gray, or random)", c.Color))
	}

	switch c.MessageFormat {
	case "", "html", "text":
	default:
		errs = append(errs, fmt.Errorf("invalid message_format: %s (want html or text)", c.MessageFormat))
	}

	if c.BaseURL == "" {
		errs = append(errs, fmt.Errorf("base_url is required"))
	}

	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}

	if c.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("requests_per_minute must not be negative, got %d", c.RequestsPerMinute))
	}

	return errors.Join(errs...)
}
