package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pavelgur/us-visa-bot/internal/portal"
)

// Candidate is the best improvement found in one polling cycle.
type Candidate struct {
	Date       string
	FacilityID string
}

// daysLister is the slice of the portal client the aggregator needs.
type daysLister interface {
	AvailableDays(ctx context.Context, sess *portal.Session, facilityID string) ([]portal.Day, error)
}

// Aggregator fans one polling cycle out over the configured facilities and
// picks the earliest eligible date among them.
type Aggregator struct {
	portal     daysLister
	facilities []string
	leadDays   int
	now        func() time.Time
	log        *zap.Logger
}

func NewAggregator(p daysLister, facilities []string, leadDays int, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		portal:     p,
		facilities: facilities,
		leadDays:   leadDays,
		now:        time.Now,
		log:        log,
	}
}

// FindEarliest queries every facility in configured order and returns the
// earliest date inside the booking window, or nil when nothing improves on
// heldDate. A failing facility is logged and skipped so it cannot mask a
// bookable date elsewhere; only when a session-expired failure occurred and
// no facility produced a candidate does the call fail with that error, so a
// genuinely dead session still surfaces. Ties on the date go to the
// facility listed first.
func (a *Aggregator) FindEarliest(ctx context.Context, sess *portal.Session, heldDate string) (*Candidate, error) {
	min := minEligibleDate(a.now(), a.leadDays)

	var best *Candidate
	var expired error
	for _, facility := range a.facilities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		days, err := a.portal.AvailableDays(ctx, sess, facility)
		if err != nil {
			if portal.IsSessionExpired(err) {
				expired = err
			}
			a.log.Warn("facility query failed",
				zap.String("facility", facility),
				zap.Error(err))
			continue
		}

		for _, day := range days {
			if !eligible(day.Date, min, heldDate) {
				continue
			}
			if best == nil || day.Date < best.Date {
				best = &Candidate{Date: day.Date, FacilityID: facility}
			}
		}
	}

	if best == nil && expired != nil {
		return nil, expired
	}
	return best, nil
}
