package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Occurrence is a single start-time instance derived from an event: either
// the main slot or one of its sessions. Session is nil for the main slot.
type Occurrence struct {
	Event   *Event
	Session *Session
	StartAt time.Time
}

// IsMain reports whether this is the event's main slot.
func (o Occurrence) IsMain() bool {
	return o.Session == nil
}

// Label is the human-readable name of the occurrence.
func (o Occurrence) Label() string {
	if o.IsMain() {
		return "main event"
	}
	return "session: " + o.Session.Title
}

// Key derives the deterministic dedup token for this occurrence and a
// reminder offset. It depends only on the occurrence identity and the offset,
// so a restarted scheduler reconstructs the same key.
func (o Occurrence) Key(offset int) string {
	if o.IsMain() {
		return fmt.Sprintf("main_%d", offset)
	}
	return fmt.Sprintf("session_%s_%d", o.Session.Title, offset)
}

// EffectiveLocation resolves the occurrence's location: a session venue wins
// outright, a session meeting link overlays the event location, and the event
// location is the fallback.
func (o Occurrence) EffectiveLocation() Location {
	loc := o.Event.Location
	if o.Session != nil && o.Session.Location != nil {
		s := *o.Session.Location
		if s.Venue != "" {
			return s
		}
		if s.MeetingLink != "" {
			loc.MeetingLink = s.MeetingLink
		}
	}
	return loc
}

// HasOwnVenue reports whether the occurrence's session overrides the venue.
func (o Occurrence) HasOwnVenue() bool {
	return o.Session != nil && o.Session.Location != nil && o.Session.Location.Venue != ""
}

// ResolveOccurrences flattens an event into its occurrences: the main slot if
// the event has a start date, plus one per session that carries a date, a
// start time and a title. Sessions missing any of those are skipped.
func ResolveOccurrences(e *Event) []Occurrence {
	var occs []Occurrence
	if !e.StartDate.IsZero() {
		occs = append(occs, Occurrence{Event: e, StartAt: e.StartDate})
	}
	for i := range e.Sessions {
		s := &e.Sessions[i]
		if s.Date.IsZero() || s.StartTime == "" || s.Title == "" {
			continue
		}
		startAt, err := combineDateTime(s.Date, s.StartTime)
		if err != nil {
			continue
		}
		occs = append(occs, Occurrence{Event: e, Session: s, StartAt: startAt})
	}
	return occs
}

// combineDateTime sets the wall-clock time of day on a date. hhmm is 24-hour
// "HH:MM".
func combineDateTime(date time.Time, hhmm string) (time.Time, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("malformed start time %q", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("malformed start time %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("malformed start time %q", hhmm)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}
