// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response reads.
//
// API responses (room lists, room history, error documents) are read
// whole into memory, so every read is capped: a misbehaving server cannot
// make a client allocate without limit. A body larger than the cap is an
// error rather than a silently truncated document, because a truncated
// XML document would otherwise surface as a confusing decode failure.
package netutil

import (
	"fmt"
	"io"
)

// MaxResponseSize bounds API response bodies: 64 MB. A full day of
// history for a busy room is a few megabytes.
const MaxResponseSize int64 = 64 << 20

// ReadResponse reads an API response body of up to MaxResponseSize bytes.
// Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return ReadLimited(body, MaxResponseSize)
}

// ReadLimited reads all of body, failing if it holds more than limit bytes.
func ReadLimited(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}
