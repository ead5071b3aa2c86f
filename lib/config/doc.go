// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the HipChat client configuration file.
//
// Configuration comes from a single file named by either the
// HIPCHAT_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic file
// search, so what a command does is always traceable to one file.
//
// YAML is the default format. Files ending in .json or .jsonc are read as
// JSON with // and /* */ comments and trailing commas allowed.
//
// ${VAR} and ${VAR:-default} patterns in token, token_file, from,
// base_url, and timezone are expanded from the environment after loading,
// so a checked-in config can reference a token kept in the environment.
// No other environment variable overrides a config value.
//
// Key exports:
//
//   - [Config] -- token, room, sender, format, and transport settings
//   - [Default] -- a Config with the client defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.LoadToken] -- the token in protected memory
package config
