package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Book claims a consulate slot. The appointment page is fetched first for a
// page-scoped cookie and authenticity token: the portal mints a new token
// per page view and rejects the login-time one on this form. The submit
// goes out under the page scope; the caller's session stays valid either
// way. In dry-run mode everything up to the submit itself still happens, so
// a rehearsal exercises the whole path.
func (c *Client) Book(ctx context.Context, sess *Session, facilityID, date, tm string) error {
	pageCookie, pageToken, err := c.freshPageScope(ctx, sess)
	if err != nil {
		return fmt.Errorf("booking page: %w", err)
	}

	form := url.Values{}
	form.Set("utf8", "✓")
	form.Set("authenticity_token", pageToken)
	form.Set("confirmed_limit_message", "1")
	form.Set("use_consulate_appointment_capacity", "true")
	form.Set("appointments[consulate_appointment][facility_id]", facilityID)
	form.Set("appointments[consulate_appointment][date]", date)
	form.Set("appointments[consulate_appointment][time]", tm)
	form.Set("appointments[asc_appointment][facility_id]", "")
	form.Set("appointments[asc_appointment][date]", "")
	form.Set("appointments[asc_appointment][time]", "")

	if c.dryRun {
		c.log.Info("dry run: booking submit skipped",
			zap.String("facility", facilityID),
			zap.String("date", date),
			zap.String("time", tm))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.appointmentURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	sess.withPageScope(pageCookie, pageToken).apply(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, body, err := c.do(req)
	if err != nil {
		return fmt.Errorf("submit booking: %w", err)
	}
	// The portal publishes no success field on this endpoint; an accepted
	// 2xx without an expiry notice is the only confirmation there is.
	if err := classify(resp.StatusCode, body); err != nil {
		return fmt.Errorf("submit booking: %w", err)
	}

	c.log.Info("booking submitted",
		zap.String("facility", facilityID),
		zap.String("date", date),
		zap.String("time", tm))
	return nil
}

// freshPageScope loads the appointment page through the session and
// extracts the cookie and token scoped to the form it serves.
func (c *Client) freshPageScope(ctx context.Context, sess *Session) (cookie, token string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.appointmentURL(), nil)
	if err != nil {
		return "", "", err
	}
	sess.apply(req)
	for k, v := range browserHeaders() {
		req.Header.Set(k, v)
	}

	resp, body, err := c.do(req)
	if err != nil {
		return "", "", err
	}
	return extractSession(resp, body)
}
