// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process turns the error returned by a binary's run() into a
// process exit. Errors that implement ExitCode() int have already printed
// their diagnostics and only set the status; every other error is written
// to stderr as "error: <err>" and exits 1.
package process
