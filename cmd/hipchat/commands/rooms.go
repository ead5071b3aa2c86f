// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hipchat/cmd/hipchat/cli"
	"github.com/bureau-foundation/hipchat/hipchat"
)

type roomsParams struct {
	connectionParams
	cli.Output
	Format   string `flag:"format" desc:"raw response format: json or xml (default: from config)"`
	Entities bool   `flag:"entities" desc:"print a table of decoded rooms"`
}

func roomsCommand(runtime *Runtime) *cli.Command {
	var params roomsParams
	return &cli.Command{
		Name:    "rooms",
		Summary: "List the rooms visible to the token",
		Description: `List the rooms visible to the auth token.

Without output flags, the server's response is printed verbatim in the
configured format. --entities prints a table; --json and --cbor print the
decoded rooms.`,
		Examples: []cli.Example{
			{Description: "Raw XML listing", Command: "hipchat rooms --format xml"},
			{Description: "Room table", Command: "hipchat rooms --entities"},
			{Description: "Deterministic CBOR export", Command: "hipchat rooms --cbor > rooms.cbor"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("rooms", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			if err := params.Validate(); err != nil {
				return err
			}

			client, _, err := params.connect(runtime, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			if params.Entities || params.Structured() {
				rooms, err := client.ListRoomsAsEntities(ctx)
				if err != nil {
					return err
				}
				if done, err := params.Emit(runtime.Stdout, rooms); done {
					return err
				}
				return writeRoomTable(runtime.Stdout, rooms)
			}

			if params.Format != "" {
				format, err := hipchat.ParseFormat(params.Format)
				if err != nil {
					return err
				}
				client.SetFormat(format)
			}
			body, err := client.ListRooms(ctx)
			if err != nil {
				return err
			}
			return writeRaw(runtime.Stdout, body)
		},
	}
}

func writeRoomTable(w io.Writer, rooms []hipchat.Room) error {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tOWNER\tLAST ACTIVE\tTOPIC")
	for _, room := range rooms {
		lastActive := "-"
		if room.LastActiveKnown() {
			lastActive = room.LastActive.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", room.ID, room.Name, room.OwnerUserID, lastActive, room.Topic)
	}
	return tw.Flush()
}

// writeRaw prints a raw response body, ending it with a newline.
func writeRaw(w io.Writer, body string) error {
	if len(body) > 0 && body[len(body)-1] == '\n' {
		_, err := io.WriteString(w, body)
		return err
	}
	_, err := fmt.Fprintln(w, body)
	return err
}
