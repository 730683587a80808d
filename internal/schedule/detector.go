// Package schedule drives the reminder pipeline: it scans published events on
// a fixed cadence, resolves their occurrences, detects which reminder offsets
// are inside their firing window, and dispatches the composed messages.
package schedule

import (
	"time"

	"event-reminder-app/internal/event"
)

// DueOffsets returns the reminder offsets actionable for this tick: those
// whose firing window contains now and whose key has not been recorded yet.
//
// The window for an offset of h hours is h±tolerance around the time
// remaining until the occurrence starts. The tolerance absorbs tick jitter:
// with an hourly cadence and a half-hour tolerance every window is hit by
// exactly one tick. A window that has fully passed is never retried; a late
// reminder is worse than a missed one.
func DueOffsets(occ event.Occurrence, offsets []int, sent event.SentKeySet, now time.Time, tolerance time.Duration) []int {
	until := occ.StartAt.Sub(now)
	var due []int
	for _, h := range offsets {
		if h <= 0 {
			continue
		}
		target := time.Duration(h) * time.Hour
		if until < target-tolerance || until > target+tolerance {
			continue
		}
		if sent.Contains(occ.Key(h)) {
			continue
		}
		due = append(due, h)
	}
	return due
}
