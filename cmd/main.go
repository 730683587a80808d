package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"event-reminder-app/internal/clock"
	"event-reminder-app/internal/handlers"
	"event-reminder-app/internal/messaging"
	"event-reminder-app/internal/schedule"
	"event-reminder-app/internal/storage"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")

	// Storage flags
	storageType := flag.String("storage", "sqlite", "storage backend to use: memory, sqlite, or mongo")
	sqlitePath := flag.String("sqlite-path", "events.db", "SQLite database file (used when storage=sqlite)")
	mongoConnString := flag.String("mongo-conn", "mongodb://localhost:27017", "MongoDB connection string (used when storage=mongo)")
	mongoDatabase := flag.String("mongo-db", "event_app", "MongoDB database name (used when storage=mongo)")

	// Scheduler flags
	tick := flag.Duration("reminder-tick", time.Hour, "interval between reminder scans")

	flag.Parse()

	// Gateway credentials come from the environment; .env is optional.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env file: %v", err)
	}

	// Initialize storage based on type
	var store storage.Storage
	var err error

	switch *storageType {
	case "memory":
		log.Println("Using memory storage")
		store = storage.NewMemoryStorage()
	case "sqlite":
		log.Printf("Using SQLite storage (%s)", *sqlitePath)
		store, err = storage.NewSQLiteStorage(*sqlitePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite storage: %v", err)
		}
	case "mongo":
		log.Printf("Using MongoDB storage (connection: %s, database: %s)", *mongoConnString, *mongoDatabase)
		store, err = storage.NewMongoStorage(*mongoConnString, *mongoDatabase)
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB storage: %v", err)
		}
	default:
		log.Fatalf("Invalid storage type: %s. Valid options are: memory, sqlite, mongo", *storageType)
	}

	handlers.Store = store

	// Without gateway credentials the reminder subsystem stays disabled; the
	// resource routes still serve.
	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_WHATSAPP_FROM")
	if accountSID == "" || authToken == "" || from == "" {
		log.Println("Twilio credentials not configured, reminder scheduler disabled")
	} else {
		tz := time.UTC
		if name := os.Getenv("REMINDER_TZ"); name != "" {
			tz, err = time.LoadLocation(name)
			if err != nil {
				log.Fatalf("Invalid REMINDER_TZ %q: %v", name, err)
			}
		}

		dispatcher := &schedule.Dispatcher{
			Gateway:             messaging.NewTwilioGateway(accountSID, authToken, from),
			Store:               store,
			ReminderTemplateID:  os.Getenv("REMINDER_CONTENT_SID"),
			MarketingTemplateID: os.Getenv("MARKETING_CONTENT_SID"),
			DefaultCountryCode:  os.Getenv("DEFAULT_COUNTRY_CODE"),
		}
		scheduler := schedule.NewScheduler(store, dispatcher, clock.NewSystem(), schedule.Config{
			TickInterval: *tick,
			Timezone:     tz,
		})
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start reminder scheduler: %v", err)
		}
		defer scheduler.Stop()
		handlers.Trigger = scheduler
	}

	r := mux.NewRouter()

	// Event routes
	r.HandleFunc("/events", handlers.CreateEventHandler).Methods("POST")
	r.HandleFunc("/events", handlers.ListEventsHandler).Methods("GET")
	r.HandleFunc("/events/{id}", handlers.GetEventHandler).Methods("GET")
	r.HandleFunc("/events/{id}", handlers.DeleteEventHandler).Methods("DELETE")

	// Registration routes
	r.HandleFunc("/events/{id}/registrations", handlers.CreateRegistrationHandler).Methods("POST")
	r.HandleFunc("/events/{id}/registrations", handlers.ListRegistrationsHandler).Methods("GET")

	// Manual reminder trigger
	r.HandleFunc("/reminders/run", handlers.RunRemindersHandler).Methods("POST")

	log.Println("Starting event app on", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		log.Fatalf("Could not start HTTP server: %s\n", err)
	}
}
