package messaging

import (
	"fmt"
	"strings"
)

// ErrInvalidNumber wraps a phone number that cannot be converted into a
// channel address.
type ErrInvalidNumber struct {
	Raw string
}

func (e *ErrInvalidNumber) Error() string {
	return fmt.Sprintf("messaging: invalid phone number %q", e.Raw)
}

// NormalizeWhatsApp converts a raw phone number into the whatsapp:+E164
// address the channel requires. Numbers without a country code are assumed
// local and get the default prefix; an already-normalized address passes
// through unchanged.
func NormalizeWhatsApp(raw, defaultCountryCode string) (string, error) {
	if strings.HasPrefix(raw, "whatsapp:+") {
		return raw, nil
	}

	var digits strings.Builder
	plus := false
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+' && i == 0:
			plus = true
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// separators are dropped
		default:
			return "", &ErrInvalidNumber{Raw: raw}
		}
	}

	n := digits.String()
	if len(n) < 7 || len(n) > 15 {
		return "", &ErrInvalidNumber{Raw: raw}
	}
	if !plus {
		// Leading zero means a nationally formatted number.
		n = strings.TrimPrefix(n, "0")
		n = strings.TrimPrefix(defaultCountryCode, "+") + n
	}
	if len(n) < 7 || len(n) > 15 {
		return "", &ErrInvalidNumber{Raw: raw}
	}
	return "whatsapp:+" + n, nil
}
