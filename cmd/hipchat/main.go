// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// hipchat is the operator CLI for the HipChat v1 room API: list rooms,
// read room history, and send messages.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/hipchat/cmd/hipchat/cli"
	"github.com/bureau-foundation/hipchat/cmd/hipchat/commands"
	"github.com/bureau-foundation/hipchat/lib/process"
)

func main() {
	// Commands that print their own diagnostics return an error carrying
	// the exit code; process.Fatal skips the redundant "error:" line.
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := new(slog.LevelVar)
	logger := cli.NewCommandLogger(os.Stderr, level)
	return commands.Root(commands.DefaultRuntime(level)).Execute(ctx, os.Args[1:], logger)
}
