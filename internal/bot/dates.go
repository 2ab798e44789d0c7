package bot

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate validates a calendar date in the portal's YYYY-MM-DD form and
// returns it normalized.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return t.Format(dateLayout), nil
}

// minEligibleDate is the earliest date worth booking: today plus the
// configured lead time, so there is room to arrange travel. Dates in this
// form compare lexicographically in calendar order, which is why the rest
// of the package works on plain strings.
func minEligibleDate(now time.Time, leadDays int) string {
	return now.AddDate(0, 0, leadDays).Format(dateLayout)
}

// eligible reports whether date fits the booking window: at least the lead
// time away and strictly earlier than the date currently held.
func eligible(date, min, heldDate string) bool {
	return date >= min && date < heldDate
}
