// Package message composes reminder content for an occurrence. The template
// strategy produces the variable map the gateway renders server-side; the
// custom strategy produces the full text body.
package message

import (
	"fmt"
	"strings"

	"event-reminder-app/internal/event"
)

const (
	dateLayout = "Monday, 2 January 2006"
	timeLayout = "15:04"
)

// FormatLead renders a reminder offset as human-readable time until the
// occurrence: days when the offset is at least a day, hours otherwise.
func FormatLead(offsetHours int) string {
	if offsetHours >= 24 {
		days := offsetHours / 24
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	if offsetHours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", offsetHours)
}

// locationLine renders the occurrence's location for display. A session with
// its own venue shows just that venue; otherwise the event venue plus
// district.
func locationLine(occ event.Occurrence) string {
	loc := occ.EffectiveLocation()
	if occ.HasOwnVenue() {
		return loc.Venue
	}
	if loc.Venue != "" && loc.District != "" {
		return loc.Venue + ", " + loc.District
	}
	if loc.Venue != "" {
		return loc.Venue
	}
	return loc.District
}

// TemplateVars builds the fixed-arity variable map for the gateway's template
// renderer. Slot numbering matches the approved reminder template:
// 1 event title, 2 session title (empty for the main slot), 3 time until
// start, 4 date, 5 time, 6 location, 7 contact name, 8 contact phone.
func TemplateVars(occ event.Occurrence, offsetHours int) map[string]string {
	sessionTitle := ""
	if occ.Session != nil {
		sessionTitle = occ.Session.Title
	}
	contactName, contactPhone := "", ""
	if c := occ.Event.StaffContact; c != nil {
		contactName = c.Name
		contactPhone = c.Phone
	}
	return map[string]string{
		"1": occ.Event.Title,
		"2": sessionTitle,
		"3": FormatLead(offsetHours),
		"4": occ.StartAt.Format(dateLayout),
		"5": occ.StartAt.Format(timeLayout),
		"6": locationLine(occ),
		"7": contactName,
		"8": contactPhone,
	}
}

// ComposeText builds the free-form reminder body. Conditional lines (session
// label, meeting link, staff contact) appear only when applicable.
func ComposeText(occ event.Occurrence, offsetHours int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reminder: %s starts in %s.\n", occ.Event.Title, FormatLead(offsetHours))
	if occ.Session != nil {
		fmt.Fprintf(&b, "Session: %s\n", occ.Session.Title)
	}
	fmt.Fprintf(&b, "When: %s at %s\n", occ.StartAt.Format(dateLayout), occ.StartAt.Format(timeLayout))
	if loc := locationLine(occ); loc != "" {
		fmt.Fprintf(&b, "Where: %s\n", loc)
	}
	if link := occ.EffectiveLocation().MeetingLink; link != "" {
		fmt.Fprintf(&b, "Join: %s\n", link)
	}
	if c := occ.Event.StaffContact; c != nil && c.Name != "" && c.Phone != "" {
		fmt.Fprintf(&b, "Questions? Contact %s at %s\n", c.Name, c.Phone)
	}
	return strings.TrimRight(b.String(), "\n")
}
