package schedule

import (
	"context"
	"fmt"
	"log"

	"event-reminder-app/internal/event"
	"event-reminder-app/internal/message"
	"event-reminder-app/internal/messaging"
	"event-reminder-app/internal/registration"
	"event-reminder-app/internal/storage"
)

// Dispatcher sends one due reminder to every eligible registrant and records
// the reminder key afterwards. Recipient failures are isolated: one bad
// number or gateway rejection never aborts the batch.
type Dispatcher struct {
	Gateway messaging.Gateway
	Store   storage.Storage

	// ReminderTemplateID is the approved template rendered by the gateway
	// when the event uses template mode. Empty means template mode falls
	// back to composed text.
	ReminderTemplateID string

	// MarketingTemplateID is the pre-approved template used to re-send a
	// free-text reminder rejected outside the recipient's session window.
	// Empty disables the fallback.
	MarketingTemplateID string

	// DefaultCountryCode completes nationally formatted phone numbers.
	DefaultCountryCode string
}

// RecipientFailure records one registrant the reminder could not be sent to.
type RecipientFailure struct {
	RegistrationID string
	Name           string
	Err            error
}

// Report summarizes one dispatch: the reminder key processed and the
// per-recipient outcomes.
type Report struct {
	Key       string
	Attempted int
	Delivered int
	Failures  []RecipientFailure
}

// Dispatch attempts the reminder for every registration with a phone number,
// then marks the key sent regardless of individual outcomes - the window has
// been processed, and retrying it forever for an unreachable recipient would
// double-notify everyone else. The returned error is a persistence failure
// only; in that case the same key may be retried on a later tick.
func (d *Dispatcher) Dispatch(ctx context.Context, occ event.Occurrence, offset int, mode event.ReminderMode, regs []*registration.Registration) (*Report, error) {
	report := &Report{Key: occ.Key(offset)}

	for _, reg := range regs {
		if reg.Attendee.Phone == "" {
			continue
		}
		report.Attempted++
		if err := d.sendTo(ctx, occ, offset, mode, reg); err != nil {
			log.Printf("reminder %s: send to %s (%s) failed: %v", report.Key, reg.FullName(), reg.ID, err)
			report.Failures = append(report.Failures, RecipientFailure{
				RegistrationID: reg.ID,
				Name:           reg.FullName(),
				Err:            err,
			})
			continue
		}
		report.Delivered++
	}

	if err := d.Store.AppendSentReminderKey(occ.Event.ID, report.Key); err != nil {
		return report, fmt.Errorf("mark reminder %s sent: %w", report.Key, err)
	}
	return report, nil
}

// sendTo delivers the reminder to a single registrant, applying the
// session-window fallback for rejected free-text sends.
func (d *Dispatcher) sendTo(ctx context.Context, occ event.Occurrence, offset int, mode event.ReminderMode, reg *registration.Registration) error {
	to, err := messaging.NormalizeWhatsApp(reg.Attendee.Phone, d.DefaultCountryCode)
	if err != nil {
		return err
	}

	if mode == event.ModeTemplate && d.ReminderTemplateID != "" {
		_, err := d.Gateway.SendTemplate(ctx, to, d.ReminderTemplateID, message.TemplateVars(occ, offset))
		return err
	}

	body := message.ComposeText(occ, offset)
	_, err = d.Gateway.SendText(ctx, to, body)
	if err == nil {
		return nil
	}
	if !messaging.IsOutsideSessionWindow(err) || d.MarketingTemplateID == "" {
		return err
	}

	// The recipient cannot receive free-form content right now. Re-send once
	// through the pre-approved marketing template carrying the event title
	// and the composed body as its two variables.
	_, err = d.Gateway.SendTemplate(ctx, to, d.MarketingTemplateID, map[string]string{
		"1": occ.Event.Title,
		"2": body,
	})
	return err
}
