// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the hipchat CLI command tree. The companion
// hipchat-notify binary imports [OpenClient] from here so both binaries
// turn a config file into a Client the same way.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hipchat/cmd/hipchat/cli"
	"github.com/bureau-foundation/hipchat/lib/clock"
	"github.com/bureau-foundation/hipchat/lib/version"
)

// Runtime carries the process-level dependencies of every command. Tests
// substitute buffers, a fake clock, and an HTTP client for an httptest
// server.
type Runtime struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Clock resolves "today" and "yesterday".
	Clock clock.Clock

	// HTTPClient, if set, replaces the Client's default transport.
	HTTPClient *http.Client

	// LogLevel, if set, is lowered to Debug by --verbose.
	LogLevel *slog.LevelVar
}

// DefaultRuntime returns a Runtime bound to the process's standard
// streams and the real clock.
func DefaultRuntime(level *slog.LevelVar) *Runtime {
	return &Runtime{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Clock:    clock.Real(),
		LogLevel: level,
	}
}

// Root builds and returns the complete hipchat CLI command tree.
func Root(runtime *Runtime) *cli.Command {
	return &cli.Command{
		Name: "hipchat",
		Description: `hipchat: command-line client for the HipChat v1 room API.

List rooms, read room history, and post messages. Settings come from the
file named by --config or $HIPCHAT_CONFIG; flags override it.`,
		HelpOutput: runtime.Stderr,
		Subcommands: []*cli.Command{
			roomsCommand(runtime),
			historyCommand(runtime),
			sendCommand(runtime),
			versionCommand(runtime),
		},
	}
}

type versionParams struct {
	cli.Output
}

func versionCommand(runtime *Runtime) *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("version", &params)
		},
		Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
			if done, err := params.Emit(runtime.Stdout, version.Current()); done {
				return err
			}
			_, err := fmt.Fprintf(runtime.Stdout, "hipchat %s\n", version.Full())
			return err
		},
	}
}
