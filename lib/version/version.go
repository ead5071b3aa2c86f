// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the hipchat binaries and
// the User-Agent sent with every API request.
//
// The release pipeline stamps the variables below with -ldflags -X:
//
//	go build -ldflags "-X github.com/bureau-foundation/hipchat/lib/version.Version=1.4.0" ./cmd/hipchat
//
// Unstamped builds (tests, go run) report "0.1.0-dev" and "unknown".
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release version of the binaries.
	Version = "0.1.0-dev"

	// GitCommit is the short SHA the binary was built from.
	GitCommit = "unknown"

	// GitDirty is "true" when the working tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Build is the stamped build information in structured form, as printed
// by "hipchat version --json".
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the information stamped into this binary.
func Current() Build {
	return Build{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String is the one-line form: "1.4.0 (abc1234-dirty, 2026-02-10T12:00:00Z)".
func (b Build) String() string {
	commit := b.Commit
	if b.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", b.Version, commit, b.BuildTime)
}

// Info is Current().String().
func Info() string {
	return Current().String()
}

// Full adds the Go toolchain and platform to Info.
func Full() string {
	build := Current()
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s", build, build.GoVersion, build.Platform)
}

// UserAgent is the User-Agent header value for API requests,
// "hipchat-go/<Version>".
func UserAgent() string {
	return "hipchat-go/" + Version
}
