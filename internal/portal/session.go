package portal

import (
	"fmt"
	"net/http"
	"time"
)

// Session is the authenticated context every portal request carries: the
// session cookie, the CSRF token extracted alongside it, and the fixed
// browser identity headers. A Session is an immutable snapshot; signing in
// again produces a new one, nothing mutates an existing one.
type Session struct {
	Cookie       string // "name=value" pair of the portal session cookie
	CSRFToken    string
	UserAgent    string
	Referer      string
	CacheControl string
	CreatedAt    time.Time
}

// apply stamps the session headers onto an outgoing request.
func (s *Session) apply(req *http.Request) {
	req.Header.Set("Cookie", s.Cookie)
	req.Header.Set("X-CSRF-Token", s.CSRFToken)
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Referer", s.Referer)
	req.Header.Set("Cache-Control", s.CacheControl)
}

// withPageScope derives a snapshot carrying the cookie and token minted by
// the page a form is about to be submitted to. The receiver is untouched.
func (s *Session) withPageScope(cookie, token string) *Session {
	out := *s
	out.Cookie = cookie
	out.CSRFToken = token
	return &out
}

// String renders the session with its secrets masked so it is safe to log.
func (s *Session) String() string {
	return fmt.Sprintf("cookie=%s token=%s created=%s",
		masked(s.Cookie), masked(s.CSRFToken), s.CreatedAt.Format(time.RFC3339))
}

// masked keeps a short prefix of a secret so two values can still be told
// apart in logs.
func masked(v string) string {
	if len(v) <= 12 {
		return "…"
	}
	return v[:12] + "…"
}
