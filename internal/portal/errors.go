package portal

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSessionExpired tags failures caused by the portal invalidating the
// session: a missing session cookie, a missing CSRF meta tag, or an expiry
// notice embedded in an otherwise successful response. Callers test for it
// with errors.Is. Every other failure is generic and handled by waiting and
// retrying with the same session.
var ErrSessionExpired = errors.New("session expired")

// IsSessionExpired reports whether err carries the session-expired tag.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// classify maps a portal response to the error taxonomy. The portal serves
// login and expiry pages with HTTP 200, so the body is inspected before the
// status code: an expiry marker is ErrSessionExpired no matter the status,
// a non-2xx status or an embedded business error is a generic failure, and
// nil means the payload is usable.
func classify(status int, body string) error {
	if bodyLooksExpired(body) {
		return fmt.Errorf("expiry notice in response body: %w", ErrSessionExpired)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("portal returned status %d", status)
	}
	if msg := businessError(body); msg != "" {
		return fmt.Errorf("portal error: %s", msg)
	}
	return nil
}

// businessError extracts the error field the portal embeds in otherwise
// well-formed JSON payloads, such as the request-limit notice on the days
// endpoint. Non-JSON and array payloads have no such field.
func businessError(body string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	return payload.Error
}
