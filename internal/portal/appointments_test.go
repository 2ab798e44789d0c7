package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *Session {
	return &Session{
		Cookie:       "_yatri_session=authed456",
		CSRFToken:    "anon-token",
		UserAgent:    defaultUserAgent,
		Referer:      "https://example.test/en-ca/niv/users/sign_in",
		CacheControl: "no-store",
		CreatedAt:    time.Now(),
	}
}

func TestAvailableDays_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/en-ca/niv/schedule/123/appointment/days/89.json", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("appointments[expedite]"))

		// Session headers plus the XHR markers the front-end sends.
		assert.Equal(t, "_yatri_session=authed456", r.Header.Get("Cookie"))
		assert.Equal(t, "anon-token", r.Header.Get("X-CSRF-Token"))
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"date":"2025-05-20","business_day":true},{"date":"2025-06-05","business_day":false}]`))
	}))
	defer server.Close()

	days, err := newTestClient(t, server).AvailableDays(context.Background(), testSession(), "89")

	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, Day{Date: "2025-05-20", BusinessDay: true}, days[0])
	assert.Equal(t, Day{Date: "2025-06-05", BusinessDay: false}, days[1])
}

func TestAvailableDays_EmptyCalendar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	days, err := newTestClient(t, server).AvailableDays(context.Background(), testSession(), "89")

	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestAvailableDays_Failures(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		body        string
		wantExpired bool
	}{
		{
			name:        "expiry_page_served_with_200",
			status:      http.StatusOK,
			body:        "<html><body>Your session expired, please sign in again.</body></html>",
			wantExpired: true,
		},
		{
			name:        "embedded_error_field",
			status:      http.StatusOK,
			body:        `{"error":"You have exceeded the request limit."}`,
			wantExpired: false,
		},
		{
			name:        "server_error_status",
			status:      http.StatusBadGateway,
			body:        "bad gateway",
			wantExpired: false,
		},
		{
			name:        "garbage_payload",
			status:      http.StatusOK,
			body:        "<<<not json>>>",
			wantExpired: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			days, err := newTestClient(t, server).AvailableDays(context.Background(), testSession(), "89")

			require.Error(t, err)
			assert.Nil(t, days)
			assert.Equal(t, tc.wantExpired, IsSessionExpired(err))
		})
	}
}

func TestEarliestTime_PrefersBusinessSlots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/en-ca/niv/schedule/123/appointment/times/89.json", r.URL.Path)
		assert.Equal(t, "2025-05-20", r.URL.Query().Get("date"))
		assert.Equal(t, "false", r.URL.Query().Get("appointments[expedite]"))

		w.Write([]byte(`{"available_times":["09:00","11:30"],"business_times":["10:30","13:00"]}`))
	}))
	defer server.Close()

	tm, err := newTestClient(t, server).EarliestTime(context.Background(), testSession(), "89", "2025-05-20")

	require.NoError(t, err)
	assert.Equal(t, "10:30", tm)
}

func TestEarliestTime_FallsBackToAvailableSlots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"available_times":["09:00","11:30"],"business_times":[]}`))
	}))
	defer server.Close()

	tm, err := newTestClient(t, server).EarliestTime(context.Background(), testSession(), "89", "2025-05-20")

	require.NoError(t, err)
	assert.Equal(t, "09:00", tm)
}

func TestEarliestTime_NoSlots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"available_times":[],"business_times":[]}`))
	}))
	defer server.Close()

	tm, err := newTestClient(t, server).EarliestTime(context.Background(), testSession(), "89", "2025-05-20")

	require.Error(t, err)
	assert.Empty(t, tm)
	assert.False(t, IsSessionExpired(err))
}

func TestEarliestTime_ExpiredSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>session expired</html>"))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).EarliestTime(context.Background(), testSession(), "89", "2025-05-20")

	require.Error(t, err)
	assert.True(t, IsSessionExpired(err))
}
