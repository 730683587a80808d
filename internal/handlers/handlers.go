package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"event-reminder-app/internal/event"
	"event-reminder-app/internal/registration"
	"event-reminder-app/internal/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ReminderTrigger runs one synchronous reminder scan; the scheduler
// implements it. Nil when the messaging gateway is not configured.
type ReminderTrigger interface {
	RunOnce(ctx context.Context) error
}

var (
	Store   storage.Storage
	Trigger ReminderTrigger
)

// Event Handlers

func CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	var e event.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Printf("%s %s %s %d - Bad Request: %v", r.Method, r.URL.Path, r.UserAgent(), http.StatusBadRequest, err)
		return
	}
	if e.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		log.Printf("%s %s %s %d - Bad Request: title is required", r.Method, r.URL.Path, r.UserAgent(), http.StatusBadRequest)
		return
	}
	for _, h := range e.ReminderTimes {
		if h <= 0 {
			http.Error(w, "reminder_times must be positive hour offsets", http.StatusBadRequest)
			return
		}
	}
	if e.Status == "" {
		e.Status = event.StatusDraft
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	// The sent-key set is owned by the scheduler, never by clients.
	e.RemindersSent = nil

	if err := Store.CreateEvent(&e); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(e)
	log.Printf("%s %s %s %d", r.Method, r.URL.Path, r.UserAgent(), http.StatusCreated)
}

func GetEventHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	e, err := Store.GetEvent(id)
	if err != nil {
		http.NotFound(w, r)
		log.Printf("%s %s %s %d", r.Method, r.URL.Path, r.UserAgent(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(e)
	log.Printf("%s %s %s %d", r.Method, r.URL.Path, r.UserAgent(), http.StatusOK)
}

func ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := Store.ListEvents()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
	log.Printf("%s %s %s %d", r.Method, r.URL.Path, r.UserAgent(), http.StatusOK)
}

func DeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := Store.DeleteEvent(id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	log.Printf("%s %s %s %d", r.Method, r.URL.Path, r.UserAgent(), http.StatusNoContent)
}

// Registration Handlers

func CreateRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]
	if _, err := Store.GetEvent(eventID); err != nil {
		http.Error(w, "event not found", http.StatusBadRequest)
		log.Printf("%s %s %s %d - Bad Request: event not found: %s", r.Method, r.URL.Path, r.UserAgent(), http.StatusBadRequest, eventID)
		return
	}

	var reg registration.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Printf("%s %s %s %d - Bad Request: %v", r.Method, r.URL.Path, r.UserAgent(), http.StatusBadRequest, err)
		return
	}
	if reg.Attendee.FirstName == "" {
		http.Error(w, "attendee first_name is required", http.StatusBadRequest)
		return
	}
	reg.EventID = eventID
	if reg.Status == "" {
		reg.Status = registration.StatusRegistered
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}

	if err := Store.CreateRegistration(&reg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(reg)
	log.Printf("%s %s %s %d", r.Method, r.URL.Path, r.UserAgent(), http.StatusCreated)
}

func ListRegistrationsHandler(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]
	status := r.URL.Query().Get("status")
	if status == "" {
		status = registration.StatusRegistered
	}
	list, err := Store.FindRegistrations(eventID, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
	log.Printf("%s %s %s %d", r.Method, r.URL.Path, r.UserAgent(), http.StatusOK)
}

// RunRemindersHandler triggers one synchronous reminder scan, matching the
// periodic path exactly. Used for testing and operator-initiated replays.
func RunRemindersHandler(w http.ResponseWriter, r *http.Request) {
	if Trigger == nil {
		http.Error(w, "reminder scheduler is not configured", http.StatusServiceUnavailable)
		log.Printf("%s %s %s %d - reminder scheduler is not configured", r.Method, r.URL.Path, r.UserAgent(), http.StatusServiceUnavailable)
		return
	}
	if err := Trigger.RunOnce(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		log.Printf("%s %s %s %d - reminder scan failed: %v", r.Method, r.URL.Path, r.UserAgent(), http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	log.Printf("%s %s %s %d", r.Method, r.URL.Path, r.UserAgent(), http.StatusNoContent)
}
