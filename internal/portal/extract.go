package portal

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	sessionCookieName = "_yatri_session"
	csrfMetaSelector  = `meta[name="csrf-token"]`
	expiredMarker     = "session expired"
)

// extractSession pulls the session cookie and CSRF token out of a portal
// page response. The portal signals a dead session structurally rather than
// through the status code, so the checks here ignore it entirely: a missing
// session cookie, an expiry notice in the body, or a missing csrf-token
// meta tag each classify as ErrSessionExpired even on HTTP 200.
func extractSession(resp *http.Response, body string) (cookie, token string, err error) {
	cookie = sessionCookie(resp)
	if cookie == "" {
		return "", "", fmt.Errorf("no %s cookie in response: %w", sessionCookieName, ErrSessionExpired)
	}
	if bodyLooksExpired(body) {
		return "", "", fmt.Errorf("expiry notice in response body: %w", ErrSessionExpired)
	}
	token, err = csrfToken(body)
	if err != nil {
		return "", "", err
	}
	return cookie, token, nil
}

// sessionCookie returns the "name=value" pair of the portal session cookie,
// or "" when the response did not set one.
func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			return c.Name + "=" + c.Value
		}
	}
	return ""
}

// csrfToken reads the csrf-token meta tag out of an HTML body.
func csrfToken(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	token, ok := doc.Find(csrfMetaSelector).Attr("content")
	if !ok || token == "" {
		return "", fmt.Errorf("no csrf-token meta tag in page: %w", ErrSessionExpired)
	}
	return token, nil
}

func bodyLooksExpired(body string) bool {
	return strings.Contains(strings.ToLower(body), expiredMarker)
}
