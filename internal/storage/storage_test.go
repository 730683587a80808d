package storage

import (
	"testing"
	"time"

	"event-reminder-app/internal/event"
	"event-reminder-app/internal/registration"
)

func testStorageEvent() *event.Event {
	return &event.Event{
		ID:            "ev1",
		Title:         "Community Conference",
		Status:        event.StatusPublished,
		StartDate:     time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 9, 12, 22, 0, 0, 0, time.UTC),
		ReminderTimes: []int{24, 1},
		ReminderMode:  event.ModeTemplate,
		Location:      event.Location{Venue: "Main Hall", District: "Downtown"},
		StaffContact:  &event.StaffContact{Name: "Dana", Phone: "+14155551212"},
		Sessions: []event.Session{{
			Title:     "Workshop",
			Date:      time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
			StartTime: "09:30",
			Location:  &event.Location{Venue: "Room B"},
		}},
	}
}

func testStorageRegistration(id, eventID, status string) *registration.Registration {
	return &registration.Registration{
		ID:      id,
		EventID: eventID,
		Status:  status,
		Attendee: registration.Attendee{
			FirstName: "Alice",
			LastName:  "Smith",
			Phone:     "+14155550100",
			Email:     "alice@example.com",
		},
	}
}

func runStorageTests(t *testing.T, store Storage) {
	// Event CRUD
	e := testStorageEvent()
	if err := store.CreateEvent(e); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	got, err := store.GetEvent(e.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if got.ID != e.ID || got.Title != e.Title || got.Status != event.StatusPublished {
		t.Errorf("GetEvent: got %+v, want %+v", got, e)
	}
	if len(got.Sessions) != 1 || got.Sessions[0].Title != "Workshop" {
		t.Errorf("GetEvent sessions: got %+v", got.Sessions)
	}
	if got.StaffContact == nil || got.StaffContact.Name != "Dana" {
		t.Errorf("GetEvent staff contact: got %+v", got.StaffContact)
	}
	if !got.StartDate.Equal(e.StartDate) || !got.EndDate.Equal(e.EndDate) {
		t.Errorf("GetEvent dates: got %v/%v, want %v/%v", got.StartDate, got.EndDate, e.StartDate, e.EndDate)
	}

	// Published filter
	draft := testStorageEvent()
	draft.ID = "ev2"
	draft.Status = event.StatusDraft
	if err := store.CreateEvent(draft); err != nil {
		t.Fatalf("CreateEvent (draft) failed: %v", err)
	}
	all, err := store.ListEvents()
	if err != nil || len(all) != 2 {
		t.Errorf("ListEvents: got %d, want 2 (err=%v)", len(all), err)
	}
	published, err := store.ListPublishedEvents()
	if err != nil || len(published) != 1 {
		t.Errorf("ListPublishedEvents: got %d, want 1 (err=%v)", len(published), err)
	}

	// Sent-key idempotence
	for i := 0; i < 3; i++ {
		if err := store.AppendSentReminderKey(e.ID, "main_24"); err != nil {
			t.Fatalf("AppendSentReminderKey failed on attempt %d: %v", i+1, err)
		}
	}
	if err := store.AppendSentReminderKey(e.ID, "session_Workshop_1"); err != nil {
		t.Fatalf("AppendSentReminderKey failed: %v", err)
	}
	got, err = store.GetEvent(e.ID)
	if err != nil {
		t.Fatalf("GetEvent after append failed: %v", err)
	}
	if len(got.RemindersSent) != 2 {
		t.Errorf("RemindersSent: got %v, want exactly [main_24 session_Workshop_1]", got.RemindersSent)
	}
	if !got.RemindersSent.Contains("main_24") || !got.RemindersSent.Contains("session_Workshop_1") {
		t.Errorf("RemindersSent missing keys: %v", got.RemindersSent)
	}

	// Update
	got.Title = "Renamed Conference"
	if err := store.UpdateEvent(got); err != nil {
		t.Fatalf("UpdateEvent failed: %v", err)
	}
	renamed, err := store.GetEvent(e.ID)
	if err != nil || renamed.Title != "Renamed Conference" {
		t.Errorf("UpdateEvent: got %+v (err=%v)", renamed, err)
	}

	// Registration CRUD and filtering
	r1 := testStorageRegistration("reg1", e.ID, registration.StatusRegistered)
	r2 := testStorageRegistration("reg2", e.ID, registration.StatusCancelled)
	r3 := testStorageRegistration("reg3", "other-event", registration.StatusRegistered)
	for _, r := range []*registration.Registration{r1, r2, r3} {
		if err := store.CreateRegistration(r); err != nil {
			t.Fatalf("CreateRegistration(%s) failed: %v", r.ID, err)
		}
	}
	gotReg, err := store.GetRegistration("reg1")
	if err != nil {
		t.Fatalf("GetRegistration failed: %v", err)
	}
	if gotReg.Attendee.FirstName != "Alice" || gotReg.Attendee.Phone != "+14155550100" {
		t.Errorf("GetRegistration: got %+v", gotReg)
	}
	regs, err := store.FindRegistrations(e.ID, registration.StatusRegistered)
	if err != nil || len(regs) != 1 || regs[0].ID != "reg1" {
		t.Errorf("FindRegistrations: got %+v, want only reg1 (err=%v)", regs, err)
	}
	if err := store.DeleteRegistration("reg1"); err != nil {
		t.Errorf("DeleteRegistration failed: %v", err)
	}
	if _, err := store.GetRegistration("reg1"); err == nil {
		t.Errorf("expected error after DeleteRegistration, got nil")
	}

	// Delete events
	if err := store.DeleteEvent(e.ID); err != nil {
		t.Errorf("DeleteEvent failed: %v", err)
	}
	if _, err := store.GetEvent(e.ID); err == nil {
		t.Errorf("expected error after DeleteEvent, got nil")
	}
	if err := store.DeleteEvent(draft.ID); err != nil {
		t.Errorf("DeleteEvent (draft) failed: %v", err)
	}
}

func TestMemoryStorage(t *testing.T) {
	store := NewMemoryStorage()
	runStorageTests(t, store)
}
