// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by tests across the module.
//
// [RequireReceive] and [RequireClosed] bound a wait on a channel with a
// wall-clock timeout so a hung goroutine fails the test instead of
// stalling the suite. [UniqueID] yields distinct message bodies and
// names without reading the clock.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil
