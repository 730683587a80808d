package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"event-reminder-app/internal/event"
	"event-reminder-app/internal/registration"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	s := &SQLiteStorage{db: db}

	// Create tables if they don't exist
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// createTables creates the necessary tables
func (s *SQLiteStorage) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			start_date TEXT, -- ISO 8601 format, nullable
			end_date TEXT, -- ISO 8601 format, nullable
			reminder_times TEXT, -- JSON array of hour offsets
			reminder_mode TEXT,
			sessions TEXT, -- JSON array of sessions
			location TEXT, -- JSON object
			staff_contact TEXT -- JSON object, nullable
		)`,
		`CREATE TABLE IF NOT EXISTS reminders_sent (
			event_id TEXT NOT NULL,
			key TEXT NOT NULL,
			PRIMARY KEY (event_id, key),
			FOREIGN KEY (event_id) REFERENCES events(id)
		)`,
		`CREATE TABLE IF NOT EXISTS registrations (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			status TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT,
			phone TEXT,
			email TEXT,
			FOREIGN KEY (event_id) REFERENCES events(id)
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %q: %w", query, err)
		}
	}

	return nil
}

// Event operations

func (s *SQLiteStorage) CreateEvent(e *event.Event) error {
	reminderTimes, err := json.Marshal(e.ReminderTimes)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder times: %w", err)
	}
	sessions, err := json.Marshal(e.Sessions)
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}
	location, err := json.Marshal(e.Location)
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}
	var staffContact sql.NullString
	if e.StaffContact != nil {
		b, err := json.Marshal(e.StaffContact)
		if err != nil {
			return fmt.Errorf("failed to marshal staff contact: %w", err)
		}
		staffContact = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.Exec(
		`INSERT INTO events (id, title, status, start_date, end_date, reminder_times, reminder_mode, sessions, location, staff_contact)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, string(e.Status), timeToSQL(e.StartDate), timeToSQL(e.EndDate),
		string(reminderTimes), string(e.ReminderMode), string(sessions), string(location), staffContact,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	for _, key := range e.RemindersSent {
		if err := s.AppendSentReminderKey(e.ID, key); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteStorage) GetEvent(id string) (*event.Event, error) {
	row := s.db.QueryRow(
		`SELECT id, title, status, start_date, end_date, reminder_times, reminder_mode, sessions, location, staff_contact
		 FROM events WHERE id = ?`, id)

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, errors.New("event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if err := s.loadSentKeys(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *SQLiteStorage) ListEvents() ([]*event.Event, error) {
	return s.queryEvents(
		`SELECT id, title, status, start_date, end_date, reminder_times, reminder_mode, sessions, location, staff_contact
		 FROM events`)
}

func (s *SQLiteStorage) ListPublishedEvents() ([]*event.Event, error) {
	return s.queryEvents(
		`SELECT id, title, status, start_date, end_date, reminder_times, reminder_mode, sessions, location, staff_contact
		 FROM events WHERE status = ?`, string(event.StatusPublished))
}

func (s *SQLiteStorage) queryEvents(query string, args ...any) ([]*event.Event, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for _, e := range events {
		if err := s.loadSentKeys(e); err != nil {
			return nil, err
		}
	}
	return events, nil
}

func (s *SQLiteStorage) UpdateEvent(e *event.Event) error {
	if err := s.DeleteEvent(e.ID); err != nil {
		return err
	}
	return s.CreateEvent(e)
}

func (s *SQLiteStorage) DeleteEvent(id string) error {
	result, err := s.db.Exec("DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.New("event not found")
	}
	_, err = s.db.Exec("DELETE FROM reminders_sent WHERE event_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder keys: %w", err)
	}
	return nil
}

// AppendSentReminderKey relies on INSERT OR IGNORE against the composite
// primary key, so recording an already-present key is a no-op.
func (s *SQLiteStorage) AppendSentReminderKey(eventID, key string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO reminders_sent (event_id, key) VALUES (?, ?)", eventID, key)
	if err != nil {
		return fmt.Errorf("failed to record reminder key: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) loadSentKeys(e *event.Event) error {
	rows, err := s.db.Query("SELECT key FROM reminders_sent WHERE event_id = ?", e.ID)
	if err != nil {
		return fmt.Errorf("failed to load reminder keys: %w", err)
	}
	defer rows.Close()

	var keys event.SentKeySet
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return fmt.Errorf("failed to scan reminder key: %w", err)
		}
		keys.Add(key)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}
	e.RemindersSent = keys
	return nil
}

// Registration operations

func (s *SQLiteStorage) CreateRegistration(r *registration.Registration) error {
	_, err := s.db.Exec(
		`INSERT INTO registrations (id, event_id, status, first_name, last_name, phone, email)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EventID, r.Status, r.Attendee.FirstName, r.Attendee.LastName, r.Attendee.Phone, r.Attendee.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetRegistration(id string) (*registration.Registration, error) {
	row := s.db.QueryRow(
		`SELECT id, event_id, status, first_name, last_name, phone, email
		 FROM registrations WHERE id = ?`, id)

	var r registration.Registration
	err := row.Scan(&r.ID, &r.EventID, &r.Status,
		&r.Attendee.FirstName, &r.Attendee.LastName, &r.Attendee.Phone, &r.Attendee.Email)
	if err == sql.ErrNoRows {
		return nil, errors.New("registration not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &r, nil
}

func (s *SQLiteStorage) FindRegistrations(eventID, status string) ([]*registration.Registration, error) {
	rows, err := s.db.Query(
		`SELECT id, event_id, status, first_name, last_name, phone, email
		 FROM registrations WHERE event_id = ? AND status = ?`, eventID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var regs []*registration.Registration
	for rows.Next() {
		var r registration.Registration
		if err := rows.Scan(&r.ID, &r.EventID, &r.Status,
			&r.Attendee.FirstName, &r.Attendee.LastName, &r.Attendee.Phone, &r.Attendee.Email); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return regs, nil
}

func (s *SQLiteStorage) DeleteRegistration(id string) error {
	result, err := s.db.Exec("DELETE FROM registrations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.New("registration not found")
	}
	return nil
}

// scanEvent reads one event row from either *sql.Row or *sql.Rows.
func scanEvent(row interface{ Scan(...any) error }) (*event.Event, error) {
	var (
		e                  event.Event
		status             string
		startDate, endDate string
		reminderTimes      string
		reminderMode       string
		sessions           string
		location           string
		staffContact       sql.NullString
	)
	err := row.Scan(&e.ID, &e.Title, &status, &startDate, &endDate,
		&reminderTimes, &reminderMode, &sessions, &location, &staffContact)
	if err != nil {
		return nil, err
	}

	e.Status = event.Status(status)
	e.ReminderMode = event.ReminderMode(reminderMode)
	if e.StartDate, err = timeFromSQL(startDate); err != nil {
		return nil, fmt.Errorf("bad start_date: %w", err)
	}
	if e.EndDate, err = timeFromSQL(endDate); err != nil {
		return nil, fmt.Errorf("bad end_date: %w", err)
	}
	if reminderTimes != "" {
		if err := json.Unmarshal([]byte(reminderTimes), &e.ReminderTimes); err != nil {
			return nil, fmt.Errorf("bad reminder_times: %w", err)
		}
	}
	if sessions != "" {
		if err := json.Unmarshal([]byte(sessions), &e.Sessions); err != nil {
			return nil, fmt.Errorf("bad sessions: %w", err)
		}
	}
	if location != "" {
		if err := json.Unmarshal([]byte(location), &e.Location); err != nil {
			return nil, fmt.Errorf("bad location: %w", err)
		}
	}
	if staffContact.Valid {
		if err := json.Unmarshal([]byte(staffContact.String), &e.StaffContact); err != nil {
			return nil, fmt.Errorf("bad staff_contact: %w", err)
		}
	}
	return &e, nil
}

func timeToSQL(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func timeFromSQL(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
