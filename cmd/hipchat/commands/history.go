// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hipchat/cmd/hipchat/cli"
	"github.com/bureau-foundation/hipchat/hipchat"
	"github.com/bureau-foundation/hipchat/lib/clock"
)

type historyParams struct {
	connectionParams
	cli.Output
	Date     string `flag:"date,d" desc:"YYYY-MM-DD, today, yesterday, or recent" default:"recent"`
	Format   string `flag:"format" desc:"raw response format: json or xml (default: from config)"`
	Entities bool   `flag:"entities" desc:"print decoded messages one per line"`
}

func historyCommand(runtime *Runtime) *cli.Command {
	var params historyParams
	return &cli.Command{
		Name:    "history",
		Summary: "Show a room's message history",
		Description: `Show the message history of a room.

--date selects a calendar day in the configured timezone (or the local
one); "recent" asks for the latest messages instead.`,
		Examples: []cli.Example{
			{Description: "Latest messages in room 7", Command: "hipchat history --room 7 --entities"},
			{Description: "Yesterday as JSON", Command: "hipchat history --room 7 --date yesterday --json"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("history", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			if err := params.Validate(); err != nil {
				return err
			}

			client, cfg, err := params.connect(runtime, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			zone, err := location(cfg)
			if err != nil {
				return err
			}
			date, err := resolveDate(params.Date, runtime.Clock, zone)
			if err != nil {
				return err
			}

			if params.Entities || params.Structured() {
				messages, err := client.RoomHistoryAsEntities(ctx, date)
				if err != nil {
					return err
				}
				if done, err := params.Emit(runtime.Stdout, messages); done {
					return err
				}
				return writeMessages(runtime.Stdout, messages)
			}

			if params.Format != "" {
				format, err := hipchat.ParseFormat(params.Format)
				if err != nil {
					return err
				}
				client.SetFormat(format)
			}
			body, err := client.RoomHistory(ctx, date)
			if err != nil {
				return err
			}
			return writeRaw(runtime.Stdout, body)
		},
	}
}

// resolveDate turns a --date value into a history date. nil means the
// most recent messages.
func resolveDate(value string, now clock.Clock, zone *time.Location) (*time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", hipchat.HistoryRecent:
		return nil, nil
	case "today":
		today := clock.Today(now, zone)
		return &today, nil
	case "yesterday":
		yesterday := clock.Today(now, zone).AddDate(0, 0, -1)
		return &yesterday, nil
	}

	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(value), zone)
	if err != nil {
		return nil, fmt.Errorf("invalid --date %q: want YYYY-MM-DD, today, yesterday, or recent", value)
	}
	return &date, nil
}

func writeMessages(w io.Writer, messages []hipchat.Message) error {
	for _, message := range messages {
		line := message.String()
		if file := message.Attachment; file != nil {
			line += fmt.Sprintf(" [file: %s (%s) %s]", file.Name, file.Size, file.URL)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
