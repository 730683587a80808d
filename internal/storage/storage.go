package storage

import (
	"event-reminder-app/internal/event"
	"event-reminder-app/internal/registration"
)

// Storage defines the interface for data persistence
// for events and registrations.
type Storage interface {
	// Event operations
	CreateEvent(e *event.Event) error
	GetEvent(id string) (*event.Event, error)
	ListEvents() ([]*event.Event, error)
	ListPublishedEvents() ([]*event.Event, error)
	UpdateEvent(e *event.Event) error
	DeleteEvent(id string) error

	// AppendSentReminderKey records that the reminder identified by key has
	// been dispatched for the event. It is idempotent: recording the same
	// key twice is a no-op, never an error.
	AppendSentReminderKey(eventID, key string) error

	// Registration operations
	CreateRegistration(r *registration.Registration) error
	GetRegistration(id string) (*registration.Registration, error)
	FindRegistrations(eventID, status string) ([]*registration.Registration, error)
	DeleteRegistration(id string) error
}
