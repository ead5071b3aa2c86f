// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hipchat

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Room is a chat room as returned by rooms/list.
type Room struct {
	// ID is the server-assigned room id, used as room_id in requests.
	ID int `json:"room_id"`
	// Name is the display name.
	Name string `json:"name"`
	// Topic is the current topic.
	Topic string `json:"topic"`
	// LastActive is the time of the last message sent in the room, in
	// UTC. The server reports 0 when it does not know; that decodes to
	// the Unix epoch and LastActiveKnown returns false.
	LastActive time.Time `json:"last_active"`
	// OwnerUserID is the user id of the room owner.
	OwnerUserID int `json:"owner_user_id"`
}

// LastActiveKnown reports whether the server supplied a last-activity time.
func (r Room) LastActiveKnown() bool {
	return EpochSeconds(r.LastActive) != 0
}

func (r Room) String() string {
	return fmt.Sprintf("Id:%d,Name:%s", r.ID, r.Name)
}

// User identifies a message sender. The id is a string because the
// history endpoint reports "api" for messages sent through the API.
type User struct {
	ID   string `json:"user_id"`
	Name string `json:"name"`
}

// File is an attachment on a message.
type File struct {
	Name string `json:"name"`
	// Size is server-formatted (e.g., "1.2 MB"), not a byte count.
	Size string `json:"size"`
	URL  string `json:"url"`
}

// Message is one entry of a room's history.
type Message struct {
	// Date is the wall-clock time the server reported, with the UTC
	// offset discarded. The location is always UTC; treat it as
	// timezone-naive.
	Date       time.Time `json:"date"`
	From       User      `json:"from"`
	Attachment *File     `json:"file,omitempty"`
	Text       string    `json:"message"`
}

func (m Message) String() string {
	return fmt.Sprintf("%s %s: %s", m.Date.Format(naiveLayout), m.From.Name, m.Text)
}

const naiveLayout = "2006-01-02T15:04:05"

// TimeFromEpoch converts Unix seconds to a UTC time.
func TimeFromEpoch(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}

// EpochSeconds is the inverse of TimeFromEpoch, truncating to seconds.
func EpochSeconds(t time.Time) int64 {
	return t.Unix()
}

// ParseEpoch parses a base-10 Unix seconds value. field names the source
// element for the error.
func ParseEpoch(field, raw string) (time.Time, error) {
	seconds, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return time.Time{}, &DecodeError{Field: field, Value: raw, Err: err}
	}
	return TimeFromEpoch(seconds), nil
}

// messageDateLayouts are tried in order. HipChat v1 emits the first;
// the others cover RFC 3339 and offset-less variants.
var messageDateLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	naiveLayout,
	"2006-01-02 15:04:05",
}

// ParseMessageDate parses a history timestamp and keeps its wall clock,
// dropping the UTC offset.
func ParseMessageDate(field, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	var firstErr error
	for _, layout := range messageDateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(),
				parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond(), time.UTC), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, &DecodeError{Field: field, Value: raw, Err: firstErr}
}

func parseInt(field, raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &DecodeError{Field: field, Value: raw, Err: err}
	}
	return value, nil
}
