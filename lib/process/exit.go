// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

type exitCoder interface {
	ExitCode() int
}

// ExitCode maps err to a process exit status: 0 for nil, the carried code
// for errors with an ExitCode method (found through wrapping), 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Report writes err to w unless it carries its own exit code, and returns
// the status the process should exit with.
func Report(w io.Writer, err error) int {
	code := ExitCode(err)
	if err == nil {
		return code
	}
	var coder exitCoder
	if !errors.As(err, &coder) {
		fmt.Fprintf(w, "error: %v\n", err)
	}
	return code
}

// Fatal reports err on stderr and exits. Use it in main() for the result
// of run(), where the structured logger may not exist.
func Fatal(err error) {
	os.Exit(Report(os.Stderr, err))
}
