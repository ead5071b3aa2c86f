// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// hipchat-notify posts one message to the room named in the config file.
// It is meant for scripts and build steps:
//
//	hipchat-notify --config /etc/hipchat.yaml "/message=Build 42 passed"
//
// Exit codes: 0 sent, 1 configuration or API failure, 2 missing or empty
// message argument.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hipchat/cmd/hipchat/cli"
	"github.com/bureau-foundation/hipchat/cmd/hipchat/commands"
	"github.com/bureau-foundation/hipchat/lib/config"
	"github.com/bureau-foundation/hipchat/lib/version"
)

const (
	exitSuccess  = 0
	exitFailure  = 1
	exitBadUsage = 2
)

// messagePrefixes are the accepted spellings of the message argument.
var messagePrefixes = []string{"/message=", "--message=", "-message="}

const helpText = `hipchat-notify: send one message to a HipChat room.

Usage:
  hipchat-notify [--config <file>] /message=<text>

The room id, sender name, and auth token come from the config file named
by --config or $HIPCHAT_CONFIG (keys room_id, from, token or token_file).

Flags:
%s
Exit codes:
  0  message sent
  1  configuration or API failure
  2  missing or empty message argument
`

// environment is the process state run needs. Tests substitute buffers and
// an HTTP client for an httptest server.
type environment struct {
	stdout     io.Writer
	stderr     io.Writer
	httpClient *http.Client
}

type options struct {
	configPath  string
	verbose     bool
	showVersion bool
	showHelp    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], environment{stdout: os.Stdout, stderr: os.Stderr})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, env environment) int {
	message, found, rest := extractMessage(args)

	var opts options
	flagSet := newFlagSet(&opts)
	if err := flagSet.Parse(rest); err != nil {
		fmt.Fprintf(env.stderr, "error: %v\n\n", err)
		printHelp(env.stderr, flagSet)
		return exitBadUsage
	}

	if opts.showVersion {
		fmt.Fprintf(env.stdout, "hipchat-notify %s\n", version.Info())
		return exitSuccess
	}
	if opts.showHelp {
		printHelp(env.stdout, flagSet)
		return exitSuccess
	}
	if !found || strings.TrimSpace(message) == "" || flagSet.NArg() > 0 {
		printHelp(env.stderr, flagSet)
		return exitBadUsage
	}

	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	if opts.verbose {
		level.Set(slog.LevelDebug)
	}
	logger := cli.NewCommandLogger(env.stderr, level)

	if err := send(ctx, opts.configPath, message, env, logger); err != nil {
		fmt.Fprintf(env.stderr, "error: %v\n", err)
		return exitFailure
	}
	return exitSuccess
}

// extractMessage pulls the message argument out of args. pflag cannot
// parse "/message=" or single-dash long flags, so they are matched before
// flag parsing. The last occurrence wins.
func extractMessage(args []string) (string, bool, []string) {
	var message string
	found := false
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		matched := false
		for _, prefix := range messagePrefixes {
			if value, ok := strings.CutPrefix(arg, prefix); ok {
				message = value
				found = true
				matched = true
				break
			}
		}
		if !matched {
			rest = append(rest, arg)
		}
	}
	return message, found, rest
}

func newFlagSet(opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("hipchat-notify", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to the config file (default: $HIPCHAT_CONFIG)")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log the API request")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information")
	flagSet.BoolVarP(&opts.showHelp, "help", "h", false, "show this help")
	return flagSet
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, helpText, flagSet.FlagUsages())
}

func send(ctx context.Context, configPath, message string, env environment, logger *slog.Logger) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.RoomID == nil {
		return errors.New("config has no room_id")
	}

	token, err := cfg.LoadToken()
	if err != nil {
		return err
	}
	client, err := commands.OpenClient(cfg, token, env.httpClient, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Fprintf(env.stdout, "Sending message '%s' to room %d from %s\n", message, client.RoomID(), client.Sender())
	return client.SendMessage(ctx, message, commands.SendOptions(cfg)...)
}
