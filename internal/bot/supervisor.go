package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pavelgur/us-visa-bot/internal/portal"
)

// Five straight failed cycles reads as the portal pushing back rather than
// a blip, so the loop backs off to double the configured delay until a
// cycle succeeds again.
const failStreakThreshold = 5

// portalAPI is the slice of the portal client the supervisor drives.
type portalAPI interface {
	SignIn(ctx context.Context, email, password string) (*portal.Session, error)
	AvailableDays(ctx context.Context, sess *portal.Session, facilityID string) ([]portal.Day, error)
	EarliestTime(ctx context.Context, sess *portal.Session, facilityID, date string) (string, error)
	Book(ctx context.Context, sess *portal.Session, facilityID, date, tm string) error
}

// Policy carries the knobs the supervisor runs under.
type Policy struct {
	Email        string
	Password     string
	Facilities   []string
	RefreshDelay time.Duration
	LeadDays     int
	AsyncBook    bool
	DryRun       bool
}

// Supervisor owns the run's only mutable state: the current session and the
// appointment date it believes it holds. No recoverable failure stops it;
// a dead session triggers a re-login, everything else is logged, recorded
// and waited out. Only context cancellation ends Run.
type Supervisor struct {
	portal  portalAPI
	agg     *Aggregator
	policy  Policy
	log     *zap.Logger
	history *History

	session    *portal.Session
	heldDate   string // YYYY-MM-DD, moves only when a booking is confirmed or fired
	failStreak int

	sleepFn func(context.Context, time.Duration) error
}

func NewSupervisor(p portalAPI, policy Policy, heldDate string, log *zap.Logger) *Supervisor {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Supervisor{
		portal:   p,
		agg:      NewAggregator(p, policy.Facilities, policy.LeadDays, log),
		policy:   policy,
		log:      log,
		history:  NewHistory(),
		heldDate: heldDate,
		sleepFn:  sleep,
	}
	s.history.Record(ActionInitial, "holding "+heldDate)
	return s
}

// HeldDate returns the appointment date the run currently believes it holds.
func (s *Supervisor) HeldDate() string {
	return s.heldDate
}

// History returns the run log for reporting.
func (s *Supervisor) History() *History {
	return s.history
}

// Run drives the loop until ctx is canceled: sign in when there is no
// session, poll, book, wait, repeat. A failed sign-in waits double the
// standard delay and is retried; it never ends the run.
func (s *Supervisor) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if s.session == nil {
			if err := s.login(ctx); err != nil {
				if ctx.Err() != nil {
					break
				}
				s.log.Error("sign-in failed", zap.Error(err))
				s.history.Record(ActionError, "sign-in: "+err.Error())
				if s.sleepFn(ctx, 2*s.policy.RefreshDelay) != nil {
					break
				}
				continue
			}
		}

		s.cycle(ctx)

		if s.sleepFn(ctx, s.delay()) != nil {
			break
		}
	}
	return ctx.Err()
}

// login acquires a fresh session and installs it wholesale. Nothing of the
// previous session survives.
func (s *Supervisor) login(ctx context.Context) error {
	s.log.Info("signing in")
	sess, err := s.portal.SignIn(ctx, s.policy.Email, s.policy.Password)
	if err != nil {
		return err
	}
	s.session = sess
	s.failStreak = 0
	s.log.Info("session established", zap.Time("created", sess.CreatedAt))
	return nil
}

// cycle runs one polling iteration: aggregate, decide, book. A session
// expiry surfacing from any step drops the session so the next loop
// iteration signs in again; every other failure is absorbed. A confirmed
// synchronous booking scans again right away, since the freed-up calendar
// may expose a still earlier date.
func (s *Supervisor) cycle(ctx context.Context) {
	for {
		candidate, err := s.agg.FindEarliest(ctx, s.session, s.heldDate)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.fail(err)
			return
		}
		if candidate == nil {
			s.failStreak = 0
			s.log.Info("no earlier date available", zap.String("holding", s.heldDate))
			return
		}
		// The aggregator already enforces the window; this is the last
		// line against ever trading the held date for a later one.
		if candidate.Date >= s.heldDate {
			s.log.Warn("candidate does not improve on held date",
				zap.String("candidate", candidate.Date),
				zap.String("holding", s.heldDate))
			return
		}

		if !s.book(ctx, candidate) {
			return
		}
		if s.policy.AsyncBook || s.policy.DryRun {
			return
		}
	}
}

// book resolves a time slot for the candidate and claims it. Synchronous
// booking moves the held date only after the portal accepted the submit.
// Asynchronous booking fires the submit in its own goroutine and moves the
// held date optimistically before the outcome is known; a failed submit
// then leaves the loop believing in a date it does not hold, which the
// next successful booking corrects. The return value says whether the
// cycle may keep scanning.
func (s *Supervisor) book(ctx context.Context, cand *Candidate) bool {
	tm, err := s.portal.EarliestTime(ctx, s.session, cand.FacilityID, cand.Date)
	if err != nil {
		s.fail(fmt.Errorf("resolve slot for %s: %w", cand.Date, err))
		return false
	}

	s.log.Info("booking attempt",
		zap.String("facility", cand.FacilityID),
		zap.String("date", cand.Date),
		zap.String("time", tm),
		zap.String("holding", s.heldDate))

	if s.policy.AsyncBook && !s.policy.DryRun {
		sess := s.session
		prev := s.heldDate
		s.heldDate = cand.Date
		go func() {
			if err := s.portal.Book(ctx, sess, cand.FacilityID, cand.Date, tm); err != nil {
				s.log.Error("async booking failed",
					zap.String("date", cand.Date),
					zap.Error(err))
				s.history.Record(ActionError, fmt.Sprintf("book %s at %s: %v", cand.Date, cand.FacilityID, err))
				return
			}
			s.log.Info("async booking accepted",
				zap.String("date", cand.Date),
				zap.String("was", prev))
			s.history.Record(ActionBooked, fmt.Sprintf("%s %s at facility %s (was %s)", cand.Date, tm, cand.FacilityID, prev))
			PrintBooked(cand.Date, tm, cand.FacilityID)
		}()
		s.failStreak = 0
		return true
	}

	if err := s.portal.Book(ctx, s.session, cand.FacilityID, cand.Date, tm); err != nil {
		s.fail(fmt.Errorf("book %s at %s: %w", cand.Date, cand.FacilityID, err))
		return false
	}
	s.failStreak = 0

	if s.policy.DryRun {
		s.log.Info("dry run: held date unchanged", zap.String("holding", s.heldDate))
		return true
	}

	prev := s.heldDate
	s.heldDate = cand.Date
	s.history.Record(ActionBooked, fmt.Sprintf("%s %s at facility %s (was %s)", cand.Date, tm, cand.FacilityID, prev))
	s.log.Info("booked earlier appointment",
		zap.String("date", cand.Date),
		zap.String("time", tm),
		zap.String("facility", cand.FacilityID),
		zap.String("was", prev))
	PrintBooked(cand.Date, tm, cand.FacilityID)
	return true
}

// fail records a cycle failure. A session expiry drops the session so the
// next loop iteration re-authenticates; anything else keeps the session
// and relies on the delay between cycles.
func (s *Supervisor) fail(err error) {
	s.failStreak++
	s.history.Record(ActionError, err.Error())
	if portal.IsSessionExpired(err) {
		s.log.Warn("session expired, signing in again next cycle", zap.Error(err))
		s.session = nil
		return
	}
	s.log.Error("cycle failed", zap.Error(err))
}

// delay is the gap before the next cycle.
func (s *Supervisor) delay() time.Duration {
	if s.failStreak >= failStreakThreshold {
		return 2 * s.policy.RefreshDelay
	}
	return s.policy.RefreshDelay
}
