package event

import "time"

// Status is the lifecycle state of an event. Only published events are
// scanned for reminders.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ReminderMode selects how reminder content is produced: rendered by the
// gateway from a template, or composed here as free text.
type ReminderMode string

const (
	ModeTemplate ReminderMode = "template"
	ModeCustom   ReminderMode = "custom"
)

// Location describes where an event (or a single session) takes place.
// MeetingLink is set for online occurrences.
type Location struct {
	Venue       string `json:"venue,omitempty" bson:"venue,omitempty"`
	District    string `json:"district,omitempty" bson:"district,omitempty"`
	MeetingLink string `json:"meeting_link,omitempty" bson:"meeting_link,omitempty"`
}

// StaffContact is the optional contact person included in reminder messages.
type StaffContact struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone" bson:"phone"`
}

// Session is a sub-slot of an event with its own start time. Date carries the
// calendar day; StartTime and EndTime are "HH:MM" wall-clock strings.
type Session struct {
	Title     string    `json:"title" bson:"title"`
	Date      time.Time `json:"date" bson:"date"`
	StartTime string    `json:"start_time" bson:"start_time"`
	EndTime   string    `json:"end_time,omitempty" bson:"end_time,omitempty"`
	Location  *Location `json:"location,omitempty" bson:"location,omitempty"`
}

type Event struct {
	ID            string        `json:"id" bson:"_id"`
	Title         string        `json:"title" bson:"title"`
	Status        Status        `json:"status" bson:"status"`
	StartDate     time.Time     `json:"start_date" bson:"start_date"`
	EndDate       time.Time     `json:"end_date" bson:"end_date"`
	ReminderTimes []int         `json:"reminder_times,omitempty" bson:"reminder_times,omitempty"`
	RemindersSent SentKeySet    `json:"reminders_sent,omitempty" bson:"reminders_sent,omitempty"`
	ReminderMode  ReminderMode  `json:"reminder_mode,omitempty" bson:"reminder_mode,omitempty"`
	Sessions      []Session     `json:"sessions,omitempty" bson:"sessions,omitempty"`
	Location      Location      `json:"location,omitempty" bson:"location,omitempty"`
	StaffContact  *StaffContact `json:"staff_contact,omitempty" bson:"staff_contact,omitempty"`
}

// Live reports whether the event is still inside its liveness window at the
// given instant. An event whose end date has passed is never scanned.
func (e *Event) Live(now time.Time) bool {
	return !e.EndDate.Before(now)
}

// Mode returns the composition strategy, defaulting to template when unset.
func (e *Event) Mode() ReminderMode {
	if e.ReminderMode == ModeCustom {
		return ModeCustom
	}
	return ModeTemplate
}
