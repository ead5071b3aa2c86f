// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package markup renders Markdown into the HTML subset that HipChat
// accepts for message_format=html.
package markup

import (
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// The converter configuration never changes and goldmark.Markdown is safe
// for concurrent Convert calls.
var (
	converterInstance goldmark.Markdown
	converterOnce     sync.Once
)

func converter() goldmark.Markdown {
	converterOnce.Do(func() {
		converterInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// Chat messages are written line by line; a newline in the
			// source is a line break in the room.
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})
	return converterInstance
}

// ToHTML converts GitHub Flavored Markdown to an HTML fragment. Raw HTML in
// the source is omitted. Surrounding whitespace is trimmed so the result
// is ready to send.
func ToHTML(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	var buffer bytes.Buffer
	if err := converter().Convert([]byte(markdown), &buffer); err != nil {
		return "", err
	}
	return strings.TrimSpace(buffer.String()), nil
}
