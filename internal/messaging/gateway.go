package messaging

import (
	"context"
	"errors"
	"fmt"
)

// Twilio rejects free-form WhatsApp messages to recipients outside their
// 24-hour conversation window with this error code. Such recipients can only
// be reached through a pre-approved template.
const codeOutsideSessionWindow = 63016

// Result describes the outcome of an accepted send.
type Result struct {
	SID    string
	Status string
}

// SendError is a rejection from the messaging channel, carrying the
// machine-readable code used to select the fallback path.
type SendError struct {
	Code    int
	Message string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("messaging: send failed (code %d): %s", e.Code, e.Message)
}

// IsOutsideSessionWindow reports whether err is the channel-policy rejection
// for free-form content outside the recipient's session window.
func IsOutsideSessionWindow(err error) bool {
	var se *SendError
	return errors.As(err, &se) && se.Code == codeOutsideSessionWindow
}

// Gateway is the messaging channel boundary. SendTemplate has the gateway
// render a named template from a variable map; SendText delivers a free-form
// body verbatim. Addresses are channel addresses produced by NormalizeWhatsApp.
type Gateway interface {
	SendTemplate(ctx context.Context, to, templateID string, vars map[string]string) (*Result, error)
	SendText(ctx context.Context, to, body string) (*Result, error)
}
