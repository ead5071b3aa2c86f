// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hipchat/cmd/hipchat/cli"
	"github.com/bureau-foundation/hipchat/hipchat"
	"github.com/bureau-foundation/hipchat/lib/markup"
)

type sendParams struct {
	connectionParams
	cli.Output
	Notify        bool   `flag:"notify,n" desc:"notify room members"`
	Color         string `flag:"color" desc:"background color: yellow, red, green, purple, gray, or random"`
	MessageFormat string `flag:"message-format" desc:"how the server renders the message: html or text"`
	Markdown      bool   `flag:"markdown" desc:"render the message from Markdown to HTML"`
}

type sendResult struct {
	RoomID  int    `json:"room_id"`
	From    string `json:"from"`
	Message string `json:"message"`
}

func sendCommand(runtime *Runtime) *cli.Command {
	var params sendParams
	return &cli.Command{
		Name:    "send",
		Summary: "Send a message to a room",
		Usage:   "hipchat send [flags] [message...]",
		Description: `Send a message to a room.

The message is the remaining arguments joined by spaces, or standard input
when no arguments are given and standard input is not a terminal.`,
		Examples: []cli.Example{
			{Description: "Announce a deploy", Command: `hipchat send --room 7 --from deploybot --color green "v1.2 is live"`},
			{Description: "Post a Markdown file", Command: "hipchat send --room 7 --markdown < notes.md"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("send", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := params.Validate(); err != nil {
				return err
			}
			message, err := readMessage(args, runtime.Stdin)
			if err != nil {
				return err
			}

			client, cfg, err := params.connect(runtime, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			options := SendOptions(cfg)
			if params.Notify {
				options = append(options, hipchat.WithNotify(true))
			}
			if params.Color != "" {
				options = append(options, hipchat.WithColor(hipchat.Color(params.Color)))
			}
			if params.MessageFormat != "" {
				options = append(options, hipchat.WithMessageFormat(hipchat.MessageFormat(params.MessageFormat)))
			}
			if params.Markdown {
				if params.MessageFormat == string(hipchat.MessageFormatText) {
					return errors.New("--markdown renders HTML and cannot be combined with --message-format text")
				}
				message, err = markup.ToHTML(message)
				if err != nil {
					return fmt.Errorf("rendering Markdown: %w", err)
				}
				options = append(options, hipchat.WithMessageFormat(hipchat.MessageFormatHTML))
			}

			if err := client.SendMessage(ctx, message, options...); err != nil {
				return err
			}

			result := sendResult{RoomID: client.RoomID(), From: client.Sender(), Message: message}
			if done, err := params.Emit(runtime.Stdout, result); done {
				return err
			}
			_, err = fmt.Fprintf(runtime.Stdout, "Sent message to room %d from %s\n", result.RoomID, result.From)
			return err
		},
	}
}

// readMessage joins args, or reads stdin when there are none and stdin is
// not a terminal. A single trailing newline from stdin is dropped.
func readMessage(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if stdin == nil || cli.IsTerminal(stdin) {
		return "", nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading message from stdin: %w", err)
	}
	message := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(message, "\r"), nil
}
