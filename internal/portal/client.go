package portal

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	requestTimeout = 20 * time.Second

	// The portal rate-limits accounts that hammer its endpoints, so every
	// request waits on this limiter, including per-facility fan-out.
	politenessRate  = rate.Limit(2)
	politenessBurst = 4

	defaultSignInCommit = "Sign In"
)

// Options configure a Client.
type Options struct {
	BaseURL      string // portal origin, e.g. https://ais.usvisa-info.com
	Locale       string // locale path segment, e.g. en-ca
	ScheduleID   string
	SignInCommit string // submit button label on the sign-in form
	MimicTLS     bool
	ProxyURL     string
	DryRun       bool
	Logger       *zap.Logger
}

// Client talks to the scheduling portal. It owns the transport, the pacing
// and the wire format, and holds no session state: callers pass the current
// Session snapshot into every authenticated call.
type Client struct {
	http         *http.Client
	base         string // {BaseURL}/{Locale}/niv
	scheduleID   string
	signInCommit string
	dryRun       bool
	limiter      *rate.Limiter
	log          *zap.Logger
}

func NewClient(opts Options) (*Client, error) {
	transport, err := newTransport(opts.MimicTLS, opts.ProxyURL)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	commit := opts.SignInCommit
	if commit == "" {
		commit = defaultSignInCommit
	}
	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
		base:         fmt.Sprintf("%s/%s/niv", strings.TrimRight(opts.BaseURL, "/"), opts.Locale),
		scheduleID:   opts.ScheduleID,
		signInCommit: commit,
		dryRun:       opts.DryRun,
		limiter:      rate.NewLimiter(politenessRate, politenessBurst),
		log:          log,
	}, nil
}

// do executes one portal request behind the politeness limiter and returns
// the response together with its fully read body. Redirects are followed,
// so an expired session that bounces to the sign-in page comes back as a
// 200 whose body carries the expiry notice.
func (c *Client) do(req *http.Request) (*http.Response, string, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, "", err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	c.log.Debug("portal request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)))
	return resp, string(body), nil
}

func (c *Client) signInURL() string {
	return c.base + "/users/sign_in"
}

func (c *Client) daysURL(facilityID string) string {
	return fmt.Sprintf("%s/schedule/%s/appointment/days/%s.json?appointments[expedite]=false",
		c.base, c.scheduleID, facilityID)
}

func (c *Client) timesURL(facilityID, date string) string {
	return fmt.Sprintf("%s/schedule/%s/appointment/times/%s.json?date=%s&appointments[expedite]=false",
		c.base, c.scheduleID, facilityID, date)
}

func (c *Client) appointmentURL() string {
	return fmt.Sprintf("%s/schedule/%s/appointment", c.base, c.scheduleID)
}
