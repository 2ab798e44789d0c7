package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SignIn performs the two-step login handshake. The sign-in page is fetched
// anonymously first, yielding a provisional cookie and CSRF token; the
// credentials are then posted under those. The cookie set on the credential
// response supersedes the anonymous one and becomes the session cookie,
// while the anonymous token stays on as the session's default header. Form
// submits never rely on it: each fetches a fresh token from the page it is
// about to post to.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	anon, err := c.anonymousSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("anonymous session: %w", err)
	}

	form := url.Values{}
	form.Set("user[email]", email)
	form.Set("user[password]", password)
	form.Set("policy_confirmed", "1")
	form.Set("commit", c.signInCommit)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signInURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	anon.apply(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("submit credentials: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("login rejected: portal returned status %d", resp.StatusCode)
	}
	if bodyLooksExpired(body) {
		return nil, fmt.Errorf("login response carries expiry notice: %w", ErrSessionExpired)
	}

	cookie := sessionCookie(resp)
	if cookie == "" {
		return nil, fmt.Errorf("credential response set no session cookie: %w", ErrSessionExpired)
	}

	sess := &Session{
		Cookie:       cookie,
		CSRFToken:    anon.CSRFToken,
		UserAgent:    anon.UserAgent,
		Referer:      anon.Referer,
		CacheControl: anon.CacheControl,
		CreatedAt:    time.Now(),
	}
	c.log.Info("signed in", zap.String("session", sess.String()))
	return sess, nil
}

// anonymousSession fetches the sign-in page without credentials and builds
// the provisional session the credential post is made under.
func (c *Client) anonymousSession(ctx context.Context) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.signInURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	for k, v := range browserHeaders() {
		req.Header.Set(k, v)
	}

	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sign-in page returned status %d", resp.StatusCode)
	}

	cookie, token, err := extractSession(resp, body)
	if err != nil {
		return nil, err
	}
	return &Session{
		Cookie:       cookie,
		CSRFToken:    token,
		UserAgent:    defaultUserAgent,
		Referer:      c.signInURL(),
		CacheControl: "no-store",
		CreatedAt:    time.Now(),
	}, nil
}
