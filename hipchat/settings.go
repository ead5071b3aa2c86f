// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hipchat

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// UnsetRoomID marks a Client with no target room. Room ids are never
	// negative, so the minimum int cannot collide with a real room.
	UnsetRoomID = math.MinInt

	// MaxSenderLength is the longest sender name the API accepts, in
	// characters.
	MaxSenderLength = 15

	// MaxMessageLength is the longest message body the API accepts, in
	// characters.
	MaxMessageLength = 5000

	truncationMarker = "..."
)

// Format selects the response encoding requested from the server.
type Format int

const (
	// FormatJSON is the default.
	FormatJSON Format = iota
	FormatXML
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	default:
		return "json"
	}
}

// ParseFormat accepts "json" or "xml" (case-insensitive).
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "json", "":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	default:
		return FormatJSON, fmt.Errorf("hipchat: unknown format %q (want json or xml)", value)
	}
}

// Color is the background color hint for a sent message. The empty Color
// omits the parameter and the server uses yellow.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
	ColorGray   Color = "gray"
	ColorRandom Color = "random"
)

// Valid reports whether c is empty or one of the colors the API accepts.
func (c Color) Valid() bool {
	switch c {
	case "", ColorYellow, ColorRed, ColorGreen, ColorPurple, ColorGray, ColorRandom:
		return true
	}
	return false
}

// MessageFormat tells the server how to render a sent message. The empty
// MessageFormat omits the parameter and the server assumes HTML.
type MessageFormat string

const (
	MessageFormatHTML MessageFormat = "html"
	MessageFormatText MessageFormat = "text"
)

// Valid reports whether f is empty, html, or text.
func (f MessageFormat) Valid() bool {
	return f == "" || f == MessageFormatHTML || f == MessageFormatText
}

// settings is the per-call snapshot of Client configuration. Operations
// read only from their snapshot, so forcing XML for one call cannot leak
// into the next.
type settings struct {
	token        string
	roomID       int
	sender       string
	format       Format
	notify       bool
	autoTruncate bool
	timezone     string
}

// resolveSender enforces MaxSenderLength on a sender name.
func resolveSender(name string, autoTruncate bool) (string, error) {
	if utf8.RuneCountInString(name) <= MaxSenderLength {
		return name, nil
	}
	if !autoTruncate {
		return "", validationError(SenderTooLong,
			"sender name must be %d characters or less (got %d)", MaxSenderLength, utf8.RuneCountInString(name))
	}
	return truncateRunes(name, MaxSenderLength), nil
}

// prepareMessage enforces MaxMessageLength on a message body. Truncation
// keeps MaxMessageLength-3 characters and appends "...".
func prepareMessage(message string, autoTruncate bool) (string, error) {
	length := utf8.RuneCountInString(message)
	if length <= MaxMessageLength {
		return message, nil
	}
	if !autoTruncate {
		return "", validationError(MessageTooLong,
			"message must be %d characters or less (got %d)", MaxMessageLength, length)
	}
	return truncateRunes(message, MaxMessageLength-len(truncationMarker)) + truncationMarker, nil
}

// truncateRunes returns the first n characters of s.
func truncateRunes(s string, n int) string {
	count := 0
	for index := range s {
		if count == n {
			return s[:index]
		}
		count++
	}
	return s
}
