// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable source of the current time.
//
// Code that needs "now" (for example, resolving "today" and "yesterday"
// into history dates) accepts a Clock instead of calling time.Now. In
// production, Real() provides the standard library behavior. In tests,
// Fake() provides a clock that only moves when Advance or Set is called:
//
//	c := clock.Fake(time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC))
//	resolver := &DateResolver{Clock: c}
package clock
