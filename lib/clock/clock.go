// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the current time for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Today returns midnight of the current day in location. A nil location
// means time.Local.
func Today(c Clock, location *time.Location) time.Time {
	if location == nil {
		location = time.Local
	}
	now := c.Now().In(location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, location)
}
