package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Day is one availability record from the per-facility days endpoint.
type Day struct {
	Date        string `json:"date"`
	BusinessDay bool   `json:"business_day"`
}

// timeslots is the payload shape of the per-facility times endpoint.
type timeslots struct {
	AvailableTimes []string `json:"available_times"`
	BusinessTimes  []string `json:"business_times"`
}

// AvailableDays lists the open appointment dates at one facility, in the
// order the portal returns them (earliest first).
func (c *Client) AvailableDays(ctx context.Context, sess *Session, facilityID string) ([]Day, error) {
	body, err := c.getJSON(ctx, sess, c.daysURL(facilityID))
	if err != nil {
		return nil, fmt.Errorf("days at facility %s: %w", facilityID, err)
	}

	var days []Day
	if err := json.Unmarshal([]byte(body), &days); err != nil {
		return nil, fmt.Errorf("days at facility %s: decode: %w", facilityID, err)
	}
	return days, nil
}

// EarliestTime returns the first bookable slot for a date at a facility,
// preferring business slots the way the portal's own front-end does.
func (c *Client) EarliestTime(ctx context.Context, sess *Session, facilityID, date string) (string, error) {
	body, err := c.getJSON(ctx, sess, c.timesURL(facilityID, date))
	if err != nil {
		return "", fmt.Errorf("times for %s at facility %s: %w", date, facilityID, err)
	}

	var slots timeslots
	if err := json.Unmarshal([]byte(body), &slots); err != nil {
		return "", fmt.Errorf("times for %s at facility %s: decode: %w", date, facilityID, err)
	}
	if len(slots.BusinessTimes) > 0 {
		return slots.BusinessTimes[0], nil
	}
	if len(slots.AvailableTimes) > 0 {
		return slots.AvailableTimes[0], nil
	}
	return "", fmt.Errorf("no times published for %s at facility %s", date, facilityID)
}

// getJSON fetches one of the portal's .json endpoints through the session
// and classifies the response before handing the body back. An expiry page
// served with HTTP 200 is caught here, not by the JSON decoder.
func (c *Client) getJSON(ctx context.Context, sess *Session, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	sess.apply(req)
	for k, v := range jsonHeaders() {
		req.Header.Set(k, v)
	}

	resp, body, err := c.do(req)
	if err != nil {
		return "", err
	}
	if err := classify(resp.StatusCode, body); err != nil {
		return "", err
	}
	return body, nil
}
