package schedule

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"event-reminder-app/internal/clock"
	"event-reminder-app/internal/event"
	"event-reminder-app/internal/registration"
	"event-reminder-app/internal/storage"
)

// Config controls the scan cadence. The detector tolerance is always derived
// from the tick interval, so changing the cadence cannot open gaps between
// windows.
type Config struct {
	// TickInterval is the wall-clock period between scans. Defaults to one
	// hour.
	TickInterval time.Duration

	// Timezone anchors the cron schedule. Defaults to UTC.
	Timezone *time.Location
}

func (c Config) tick() time.Duration {
	if c.TickInterval <= 0 {
		return time.Hour
	}
	return c.TickInterval
}

func (c Config) tolerance() time.Duration {
	return c.tick() / 2
}

func (c Config) location() *time.Location {
	if c.Timezone == nil {
		return time.UTC
	}
	return c.Timezone
}

// Scheduler is the periodic driver of the reminder pipeline. Ticks are not
// serialized: a slow run may overlap the next one, and the idempotent sent-key
// persister makes the overlap safe apart from a tiny duplicate-send window.
type Scheduler struct {
	store      storage.Storage
	dispatcher *Dispatcher
	clock      clock.Clock
	cfg        Config
	cron       *cron.Cron
}

func NewScheduler(store storage.Storage, dispatcher *Dispatcher, clk clock.Clock, cfg Config) *Scheduler {
	return &Scheduler{
		store:      store,
		dispatcher: dispatcher,
		clock:      clk,
		cfg:        cfg,
	}
}

// Start launches the periodic scan. Stop with Stop.
func (s *Scheduler) Start() error {
	c := cron.New(cron.WithLocation(s.cfg.location()))
	_, err := c.AddFunc(fmt.Sprintf("@every %s", s.cfg.tick()), func() {
		if err := s.RunOnce(context.Background()); err != nil {
			log.Printf("reminder scan failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder scan: %w", err)
	}
	c.Start()
	s.cron = c
	log.Printf("reminder scheduler started (every %s, timezone %s)", s.cfg.tick(), s.cfg.location())
	return nil
}

// Stop halts the periodic scan. A tick already in flight finishes.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce performs one full scan synchronously. It is both the cron tick body
// and the operator-facing manual trigger. A failure in one event is logged
// and does not block the others; only a failure to load the candidate events
// is returned.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.clock.Now()

	events, err := s.store.ListPublishedEvents()
	if err != nil {
		return fmt.Errorf("load published events: %w", err)
	}

	for _, ev := range events {
		if !ev.Live(now) {
			continue
		}
		if err := s.processEvent(ctx, ev, now); err != nil {
			log.Printf("reminders for event %s (%s) failed: %v", ev.ID, ev.Title, err)
		}
	}
	return nil
}

func (s *Scheduler) processEvent(ctx context.Context, ev *event.Event, now time.Time) error {
	if len(ev.ReminderTimes) == 0 {
		return nil
	}

	regs, err := s.store.FindRegistrations(ev.ID, registration.StatusRegistered)
	if err != nil {
		return fmt.Errorf("load registrations: %w", err)
	}

	for _, occ := range event.ResolveOccurrences(ev) {
		for _, offset := range DueOffsets(occ, ev.ReminderTimes, ev.RemindersSent, now, s.cfg.tolerance()) {
			report, err := s.dispatcher.Dispatch(ctx, occ, offset, ev.Mode(), regs)
			if err != nil {
				// The sends happened but the key may not be durable; the
				// next tick may retry this window.
				log.Printf("event %s: %v", ev.ID, err)
			}
			// Keep the in-memory set current so an overlapping tick sees
			// the key without a reload.
			ev.RemindersSent.Add(report.Key)
			log.Printf("event %s (%s): reminder %s dispatched to %d/%d registrants (%d failed)",
				ev.ID, occ.Label(), report.Key, report.Delivered, report.Attempted, len(report.Failures))
		}
	}
	return nil
}
