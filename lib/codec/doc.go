// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration used for the
// binary output mode of the hipchat CLI.
//
// JSON remains the format for humans and for the HipChat API itself. CBOR
// is offered for pipelines that archive room listings and history
// exports: it is compact, schema-free, and deterministic. The encoder uses
// Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. The same rooms always
// produce identical bytes, so exports can be diffed and deduplicated by
// hash.
//
//	data, err := codec.Marshal(rooms)
//	err = codec.Unmarshal(data, &rooms)
//
// For streams:
//
//	encoder := codec.NewEncoder(os.Stdout)
//
// Domain types carry `json` tags only. fxamacker/cbor v2 falls back to
// `json` tags when `cbor` tags are absent, so one tag controls field
// naming and omitempty for both output modes. Timestamps are encoded as
// RFC 3339 text.
package codec
