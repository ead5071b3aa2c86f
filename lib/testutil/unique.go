// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"strconv"
	"sync/atomic"
)

var counter atomic.Uint64

// UniqueID returns "prefix-N" with N increasing across the test binary.
//
//	message := testutil.UniqueID("deploy") // "deploy-1", "deploy-2", ...
func UniqueID(prefix string) string {
	return prefix + "-" + strconv.FormatUint(counter.Add(1), 10)
}
