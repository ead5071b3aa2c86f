// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/bureau-foundation/hipchat/cmd/hipchat/cli"
	"github.com/bureau-foundation/hipchat/hipchat"
	"github.com/bureau-foundation/hipchat/lib/config"
	"github.com/bureau-foundation/hipchat/lib/secret"
)

// connectionParams are the flags every API command shares.
type connectionParams struct {
	ConfigPath string          `flag:"config,c" desc:"path to the config file (default: $HIPCHAT_CONFIG)"`
	Token      string          `flag:"token" desc:"auth token (overrides the config file)"`
	TokenFile  string          `flag:"token-file" desc:"read the auth token from a file, or - for stdin"`
	Room       cli.OptionalInt `flag:"room,r" desc:"room id (overrides the config file)"`
	From       string          `flag:"from" desc:"sender name, 15 characters or less (overrides the config file)"`
	Verbose    bool            `flag:"verbose,v" desc:"log each API request"`
}

// loadConfig reads --config, else $HIPCHAT_CONFIG, else the defaults.
func (p *connectionParams) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case p.ConfigPath != "":
		cfg, err = config.LoadFile(p.ConfigPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// token resolves the auth token: --token, then --token-file, then the
// config file. Returns nil when none is configured.
func (p *connectionParams) token(cfg *config.Config) (*secret.Buffer, error) {
	switch {
	case p.Token != "":
		return secret.NewFromString(p.Token)
	case p.TokenFile != "":
		buffer, err := secret.ReadFromPath(p.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("reading --token-file: %w", err)
		}
		return buffer, nil
	default:
		return cfg.LoadToken()
	}
}

// connect builds a Client from the config file with the flag overrides
// applied. The caller must Close the Client.
func (p *connectionParams) connect(runtime *Runtime, logger *slog.Logger) (*hipchat.Client, *config.Config, error) {
	if p.Verbose && runtime.LogLevel != nil {
		runtime.LogLevel.Set(slog.LevelDebug)
	}

	cfg, err := p.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if p.Room.IsSet {
		room := p.Room.Value
		cfg.RoomID = &room
	}
	if p.From != "" {
		cfg.From = p.From
	}

	token, err := p.token(cfg)
	if err != nil {
		return nil, nil, err
	}

	client, err := OpenClient(cfg, token, runtime.HTTPClient, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// OpenClient builds a Client from cfg and hands it token (which may be
// nil). The Client owns token from here on, including on error. The
// caller must Close the returned Client.
func OpenClient(cfg *config.Config, token *secret.Buffer, httpClient *http.Client, logger *slog.Logger) (*hipchat.Client, error) {
	release := func() {
		if token != nil {
			token.Close()
		}
	}

	format, err := hipchat.ParseFormat(cfg.Format)
	if err != nil {
		release()
		return nil, err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		release()
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	client, err := hipchat.NewClient(hipchat.ClientConfig{
		BaseURL:    cfg.BaseURL,
		Format:     format,
		HTTPClient: httpClient,
		Timeout:    timeout,
		Limiter:    limiter,
		Logger:     logger,
	})
	if err != nil {
		release()
		return nil, err
	}
	client.UseToken(token)

	// Truncation policy first: it decides whether a long sender is cut or
	// rejected.
	client.SetAutoTruncate(cfg.AutoTruncate)
	client.SetNotify(cfg.Notify)
	client.SetTimezone(cfg.Timezone)
	if cfg.RoomID != nil {
		client.SetRoomID(*cfg.RoomID)
	}
	if cfg.From != "" {
		if err := client.SetSender(cfg.From); err != nil {
			client.Close()
			return nil, err
		}
	}
	return client, nil
}

// SendOptions returns the per-message defaults from cfg (color and
// message format) as SendOptions.
func SendOptions(cfg *config.Config) []hipchat.SendOption {
	var options []hipchat.SendOption
	if cfg.Color != "" {
		options = append(options, hipchat.WithColor(hipchat.Color(cfg.Color)))
	}
	if cfg.MessageFormat != "" {
		options = append(options, hipchat.WithMessageFormat(hipchat.MessageFormat(cfg.MessageFormat)))
	}
	return options
}

// location returns the configured timezone, or time.Local.
func location(cfg *config.Config) (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.Local, nil
	}
	loaded, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return loaded, nil
}
