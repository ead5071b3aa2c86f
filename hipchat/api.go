// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hipchat

import (
	"context"
	"time"
)

// API is the narrow surface most integrations need. Room and sender are
// per-call arguments, so one API value can serve many rooms concurrently
// without touching the underlying Client's defaults.
type API interface {
	// GetRooms returns every room the token can see.
	GetRooms(ctx context.Context) ([]Room, error)

	// GetRoomHistory returns the most recent messages in a room.
	GetRoomHistory(ctx context.Context, roomID int) ([]Message, error)

	// GetRoomHistoryForDate returns the messages sent in a room on the
	// calendar day of date.
	GetRoomHistoryForDate(ctx context.Context, roomID int, date time.Time) ([]Message, error)

	// SendMessage posts message to a room as from.
	SendMessage(ctx context.Context, roomID int, from, message string) error
}

// NewAPI returns an API backed by client. The client's token, notify,
// auto-truncate, and timezone settings are used; its room, sender, and
// format are not.
func NewAPI(client *Client) API {
	return &clientAPI{client: client}
}

type clientAPI struct {
	client *Client
}

func (a *clientAPI) GetRooms(ctx context.Context) ([]Room, error) {
	return a.client.ListRoomsAsEntities(ctx)
}

func (a *clientAPI) GetRoomHistory(ctx context.Context, roomID int) ([]Message, error) {
	current := a.client.snapshot()
	current.roomID = roomID
	return a.client.roomHistoryEntities(ctx, current, nil)
}

func (a *clientAPI) GetRoomHistoryForDate(ctx context.Context, roomID int, date time.Time) ([]Message, error) {
	current := a.client.snapshot()
	current.roomID = roomID
	return a.client.roomHistoryEntities(ctx, current, &date)
}

func (a *clientAPI) SendMessage(ctx context.Context, roomID int, from, message string) error {
	return a.client.SendMessage(ctx, message, WithRoom(roomID), WithSender(from))
}
