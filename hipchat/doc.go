// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hipchat wraps the HipChat v1 REST API: sending a message to a
// room, listing rooms, and fetching a room's history.
//
// [Client] is the facade. It holds the auth token (in mmap-backed
// secret.Buffer memory), the target room, the sender name, the response
// format (JSON or XML), and the notify and auto-truncate flags. Each
// operation snapshots that configuration on entry, validates it, builds a
// fully escaped request URL, performs exactly one HTTP round trip, and
// either returns the raw body or decodes it into entities ([Room],
// [Message]). The *AsEntities operations force XML for the duration of
// the call only; the configured format is never modified.
//
// Failures come back as one of three error types:
//
//   - [*ValidationError] -- a precondition failed before any network call
//     (missing token, room, sender, or message; sender or message too long
//     with truncation disabled). errors.Is(err, [ErrValidation]) matches
//     every kind.
//   - [*APIError] -- the server answered with a non-2xx status. Detail is
//     the raw response body; Type and Message are filled when the body is
//     HipChat's structured error document.
//   - [*DecodeError] -- the response did not match the expected XML
//     document. The raw body is kept for diagnosis. An empty document is
//     not an error: zero rooms decodes to an empty slice.
//
// Nothing is retried. Client-side throttling is available through
// ClientConfig.Limiter for callers that share a token across processes.
//
// [API] is the narrow interface most callers want: rooms, history by room
// (and optionally by day), and send. It passes room and sender per call
// rather than mutating the Client.
package hipchat
