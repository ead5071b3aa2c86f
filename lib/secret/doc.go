// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret keeps API tokens out of the Go heap.
//
// [Buffer] allocates memory via mmap(MAP_ANONYMOUS), locks it into RAM
// with mlock so it is never swapped, and marks it MADV_DONTDUMP so it is
// excluded from core dumps. Close zeroes, unlocks, and unmaps it. The
// garbage collector never sees the region, so it cannot copy the token
// around.
//
// Constructors:
//
//   - [New] -- zero-filled buffer of a given size
//   - [NewFromBytes] -- copies into protected memory, zeros the source
//   - [NewFromString] -- copies a string into protected memory
//   - [ReadFromPath] -- reads a token file (or stdin for "-"), trimmed
//
// [Buffer.String] returns a heap copy for API boundaries such as building
// a request URL. After Close any access panics. Close is idempotent.
//
// Depends on golang.org/x/sys/unix.
package secret
