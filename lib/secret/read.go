// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// ReadFromPath loads a token from a file, or from the first line of stdin
// when path is "-". Surrounding whitespace is trimmed and an empty token
// is an error. The caller owns the returned Buffer.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return readLine(os.Stdin, "stdin")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	defer Zero(data)
	return fromTrimmed(data, path)
}

func readLine(r io.Reader, source string) (*Buffer, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading token from %s: %w", source, err)
		}
		return nil, fmt.Errorf("token on %s is empty", source)
	}
	line := scanner.Bytes()
	defer Zero(line)
	return fromTrimmed(line, source)
}

func fromTrimmed(data []byte, source string) (*Buffer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("token in %s is empty", source)
	}
	return NewFromBytes(trimmed)
}
