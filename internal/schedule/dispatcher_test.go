package schedule

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"event-reminder-app/internal/event"
	"event-reminder-app/internal/messaging"
	"event-reminder-app/internal/registration"
	"event-reminder-app/internal/storage"
)

type fakeSend struct {
	To         string
	TemplateID string
	Vars       map[string]string
	Body       string
}

// fakeGateway records sends and fails by recipient address on demand.
type fakeGateway struct {
	textErr     map[string]error
	templateErr map[string]error
	sends       []fakeSend
}

func (g *fakeGateway) SendTemplate(ctx context.Context, to, templateID string, vars map[string]string) (*messaging.Result, error) {
	if err := g.templateErr[to]; err != nil {
		return nil, err
	}
	g.sends = append(g.sends, fakeSend{To: to, TemplateID: templateID, Vars: vars})
	return &messaging.Result{SID: "SM_fake", Status: "queued"}, nil
}

func (g *fakeGateway) SendText(ctx context.Context, to, body string) (*messaging.Result, error) {
	if err := g.textErr[to]; err != nil {
		return nil, err
	}
	g.sends = append(g.sends, fakeSend{To: to, Body: body})
	return &messaging.Result{SID: "SM_fake", Status: "queued"}, nil
}

func dispatcherFixture(t *testing.T, phones ...string) (*Dispatcher, *fakeGateway, *storage.MemoryStorage, event.Occurrence, []*registration.Registration) {
	t.Helper()

	store := storage.NewMemoryStorage()
	e := &event.Event{
		ID:            "ev1",
		Title:         "Community Conference",
		Status:        event.StatusPublished,
		StartDate:     time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 9, 10, 22, 0, 0, 0, time.UTC),
		ReminderTimes: []int{24},
	}
	if err := store.CreateEvent(e); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	var regs []*registration.Registration
	for i, phone := range phones {
		regs = append(regs, &registration.Registration{
			ID:      "reg" + string(rune('1'+i)),
			EventID: e.ID,
			Status:  registration.StatusRegistered,
			Attendee: registration.Attendee{
				FirstName: "Attendee",
				Phone:     phone,
			},
		})
	}

	gw := &fakeGateway{textErr: map[string]error{}, templateErr: map[string]error{}}
	d := &Dispatcher{
		Gateway:            gw,
		Store:              store,
		DefaultCountryCode: "+1",
	}
	return d, gw, store, event.ResolveOccurrences(e)[0], regs
}

func TestDispatchPartialFailureIsolation(t *testing.T) {
	d, gw, store, occ, regs := dispatcherFixture(t, "+14155550001", "+14155550002", "+14155550003")
	gw.textErr["whatsapp:+14155550002"] = &messaging.SendError{Code: 21211, Message: "invalid recipient"}

	report, err := d.Dispatch(context.Background(), occ, 24, event.ModeCustom, regs)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if report.Attempted != 3 || report.Delivered != 2 || len(report.Failures) != 1 {
		t.Errorf("report = %+v, want 3 attempted / 2 delivered / 1 failed", report)
	}
	if report.Failures[0].RegistrationID != "reg2" {
		t.Errorf("failed recipient = %s, want reg2", report.Failures[0].RegistrationID)
	}
	if len(gw.sends) != 2 {
		t.Errorf("expected 2 accepted sends, got %d", len(gw.sends))
	}

	// The key is marked sent exactly once despite the failure.
	ev, err := store.GetEvent("ev1")
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if len(ev.RemindersSent) != 1 || !ev.RemindersSent.Contains("main_24") {
		t.Errorf("RemindersSent = %v, want exactly [main_24]", ev.RemindersSent)
	}
}

func TestDispatchSessionWindowFallback(t *testing.T) {
	d, gw, _, occ, regs := dispatcherFixture(t, "+14155550001")
	d.MarketingTemplateID = "HX_marketing"
	gw.textErr["whatsapp:+14155550001"] = &messaging.SendError{Code: 63016, Message: "outside session window"}

	report, err := d.Dispatch(context.Background(), occ, 24, event.ModeCustom, regs)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if report.Delivered != 1 || len(report.Failures) != 0 {
		t.Errorf("fallback should count as delivered, report = %+v", report)
	}

	// Exactly one extra attempt, via the marketing template, carrying the
	// event title and the composed body.
	if len(gw.sends) != 1 {
		t.Fatalf("expected exactly 1 accepted send, got %d", len(gw.sends))
	}
	sent := gw.sends[0]
	if sent.TemplateID != "HX_marketing" {
		t.Errorf("fallback template = %q, want HX_marketing", sent.TemplateID)
	}
	if sent.Vars["1"] != "Community Conference" {
		t.Errorf("fallback var 1 = %q, want event title", sent.Vars["1"])
	}
	if !strings.Contains(sent.Vars["2"], "Reminder: Community Conference") {
		t.Errorf("fallback var 2 should carry the composed body, got %q", sent.Vars["2"])
	}
}

func TestDispatchFallbackFailureIsFinal(t *testing.T) {
	d, gw, _, occ, regs := dispatcherFixture(t, "+14155550001")
	d.MarketingTemplateID = "HX_marketing"
	gw.textErr["whatsapp:+14155550001"] = &messaging.SendError{Code: 63016, Message: "outside session window"}
	gw.templateErr["whatsapp:+14155550001"] = &messaging.SendError{Code: 63024, Message: "template rejected"}

	report, err := d.Dispatch(context.Background(), occ, 24, event.ModeCustom, regs)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	// One primary attempt plus one fallback attempt, no third try.
	if report.Delivered != 0 || len(report.Failures) != 1 {
		t.Errorf("report = %+v, want a single final failure", report)
	}
	if len(gw.sends) != 0 {
		t.Errorf("no send should have been accepted, got %d", len(gw.sends))
	}
}

func TestDispatchNoFallbackWithoutMarketingTemplate(t *testing.T) {
	d, gw, _, occ, regs := dispatcherFixture(t, "+14155550001")
	gw.textErr["whatsapp:+14155550001"] = &messaging.SendError{Code: 63016, Message: "outside session window"}

	report, err := d.Dispatch(context.Background(), occ, 24, event.ModeCustom, regs)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(report.Failures) != 1 {
		t.Errorf("unconfigured fallback should record the failure, report = %+v", report)
	}
}

func TestDispatchTemplateMode(t *testing.T) {
	d, gw, _, occ, regs := dispatcherFixture(t, "+14155550001")
	d.ReminderTemplateID = "HX_reminder"

	if _, err := d.Dispatch(context.Background(), occ, 24, event.ModeTemplate, regs); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(gw.sends) != 1 || gw.sends[0].TemplateID != "HX_reminder" {
		t.Fatalf("expected one template send via HX_reminder, got %+v", gw.sends)
	}
	vars := gw.sends[0].Vars
	if vars["1"] != "Community Conference" || vars["3"] != "1 day" {
		t.Errorf("template vars = %v", vars)
	}
}

func TestDispatchTemplateModeWithoutTemplateFallsBackToText(t *testing.T) {
	d, gw, _, occ, regs := dispatcherFixture(t, "+14155550001")

	if _, err := d.Dispatch(context.Background(), occ, 24, event.ModeTemplate, regs); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(gw.sends) != 1 || gw.sends[0].Body == "" {
		t.Errorf("expected a free-text send when no template is configured, got %+v", gw.sends)
	}
}

func TestDispatchMarksSentWithZeroRegistrants(t *testing.T) {
	d, gw, store, occ, _ := dispatcherFixture(t)

	report, err := d.Dispatch(context.Background(), occ, 24, event.ModeCustom, nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if report.Attempted != 0 || len(gw.sends) != 0 {
		t.Errorf("nothing should have been sent, report = %+v", report)
	}
	ev, _ := store.GetEvent("ev1")
	if !ev.RemindersSent.Contains("main_24") {
		t.Errorf("window must be marked processed even with zero registrants: %v", ev.RemindersSent)
	}
}

func TestDispatchSkipsBlankAndInvalidPhones(t *testing.T) {
	d, gw, _, occ, regs := dispatcherFixture(t, "", "not a number", "+14155550003")

	report, err := d.Dispatch(context.Background(), occ, 24, event.ModeCustom, regs)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	// Blank phone is not a target at all; an unparseable one is a failure.
	if report.Attempted != 2 || report.Delivered != 1 || len(report.Failures) != 1 {
		t.Errorf("report = %+v, want 2 attempted / 1 delivered / 1 failed", report)
	}
	var invalid *messaging.ErrInvalidNumber
	if !errors.As(report.Failures[0].Err, &invalid) {
		t.Errorf("failure should be an invalid-number error, got %v", report.Failures[0].Err)
	}
	if len(gw.sends) != 1 {
		t.Errorf("expected one accepted send, got %d", len(gw.sends))
	}
}
