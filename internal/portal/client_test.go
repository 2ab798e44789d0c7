package portal

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Options{
		BaseURL:    server.URL,
		Locale:     "en-ca",
		ScheduleID: "123",
		MimicTLS:   false,
	})
	require.NoError(t, err)
	return client
}

func TestClientURLs(t *testing.T) {
	client, err := NewClient(Options{
		BaseURL:    "https://ais.usvisa-info.com",
		Locale:     "en-ca",
		ScheduleID: "123",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://ais.usvisa-info.com/en-ca/niv/users/sign_in", client.signInURL())
	assert.Equal(t,
		"https://ais.usvisa-info.com/en-ca/niv/schedule/123/appointment/days/89.json?appointments[expedite]=false",
		client.daysURL("89"))
	assert.Equal(t,
		"https://ais.usvisa-info.com/en-ca/niv/schedule/123/appointment/times/89.json?date=2025-05-20&appointments[expedite]=false",
		client.timesURL("89", "2025-05-20"))
	assert.Equal(t, "https://ais.usvisa-info.com/en-ca/niv/schedule/123/appointment", client.appointmentURL())
}

func TestClientTrimsTrailingSlash(t *testing.T) {
	client, err := NewClient(Options{
		BaseURL:    "https://ais.usvisa-info.com/",
		Locale:     "en-ca",
		ScheduleID: "123",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://ais.usvisa-info.com/en-ca/niv/users/sign_in", client.signInURL())
}

func TestNewClient_BadProxyURL(t *testing.T) {
	_, err := NewClient(Options{
		BaseURL:    "https://ais.usvisa-info.com",
		Locale:     "en-ca",
		ScheduleID: "123",
		ProxyURL:   "://not-a-url",
	})
	assert.Error(t, err)
}
