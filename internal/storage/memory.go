package storage

import (
	"errors"
	"sync"

	"event-reminder-app/internal/event"
	"event-reminder-app/internal/registration"
)

type MemoryStorage struct {
	events        map[string]*event.Event
	registrations map[string]*registration.Registration
	mu            sync.Mutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		events:        make(map[string]*event.Event),
		registrations: make(map[string]*registration.Registration),
	}
}

// Event operations
func (m *MemoryStorage) CreateEvent(e *event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = e
	return nil
}

func (m *MemoryStorage) GetEvent(id string) (*event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, errors.New("event not found")
	}
	return e, nil
}

func (m *MemoryStorage) ListEvents() ([]*event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*event.Event
	for _, e := range m.events {
		list = append(list, e)
	}
	return list, nil
}

func (m *MemoryStorage) ListPublishedEvents() ([]*event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*event.Event
	for _, e := range m.events {
		if e.Status == event.StatusPublished {
			list = append(list, e)
		}
	}
	return list, nil
}

func (m *MemoryStorage) UpdateEvent(e *event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[e.ID]; !ok {
		return errors.New("event not found")
	}
	m.events[e.ID] = e
	return nil
}

func (m *MemoryStorage) DeleteEvent(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	return nil
}

func (m *MemoryStorage) AppendSentReminderKey(eventID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return errors.New("event not found")
	}
	e.RemindersSent.Add(key)
	return nil
}

// Registration operations
func (m *MemoryStorage) CreateRegistration(r *registration.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations[r.ID] = r
	return nil
}

func (m *MemoryStorage) GetRegistration(id string) (*registration.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.registrations[id]
	if !ok {
		return nil, errors.New("registration not found")
	}
	return r, nil
}

func (m *MemoryStorage) FindRegistrations(eventID, status string) ([]*registration.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*registration.Registration
	for _, r := range m.registrations {
		if r.EventID == eventID && r.Status == status {
			list = append(list, r)
		}
	}
	return list, nil
}

func (m *MemoryStorage) DeleteRegistration(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.registrations, id)
	return nil
}
