package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("EMAIL", "me@example.com")
	t.Setenv("PASSWORD", "hunter2")
	t.Setenv("SCHEDULE_ID", "12345678")
	t.Setenv("FACILITY_ID", "89")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "me@example.com", cfg.Email)
	assert.Equal(t, []string{"89"}, cfg.Facilities)
	assert.Equal(t, "en-ca", cfg.Locale)
	assert.Equal(t, "https://ais.usvisa-info.com", cfg.PortalURL)
	assert.Equal(t, "Sign In", cfg.SignInCommit)
	assert.Equal(t, 3*time.Second, cfg.RefreshDelay)
	assert.Equal(t, 2, cfg.LeadTimeDays)
	assert.False(t, cfg.BookAsync)
	assert.True(t, cfg.MimicTLS)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("FACILITY_ID", "89, 94 ,100")
	t.Setenv("LOCALE", "es-mx")
	t.Setenv("REFRESH_DELAY", "10")
	t.Setenv("LEAD_TIME_DAYS", "5")
	t.Setenv("BOOK_ASYNC", "true")
	t.Setenv("MIMIC_TLS", "false")
	t.Setenv("PROXY_URL", "socks5://localhost:1080")
	t.Setenv("HISTORY_FILE", "history.jsonl")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"89", "94", "100"}, cfg.Facilities)
	assert.Equal(t, "es-mx", cfg.Locale)
	assert.Equal(t, 10*time.Second, cfg.RefreshDelay)
	assert.Equal(t, 5, cfg.LeadTimeDays)
	assert.True(t, cfg.BookAsync)
	assert.False(t, cfg.MimicTLS)
	assert.Equal(t, "socks5://localhost:1080", cfg.ProxyURL)
	assert.Equal(t, "history.jsonl", cfg.HistoryFile)
}

func TestLoad_MissingRequired(t *testing.T) {
	cases := []struct {
		name  string
		unset string
	}{
		{"missing_email", "EMAIL"},
		{"missing_password", "PASSWORD"},
		{"missing_schedule_id", "SCHEDULE_ID"},
		{"missing_facility_id", "FACILITY_ID"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.unset, "")

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.unset)
		})
	}
}

func TestLoad_BadValues(t *testing.T) {
	t.Run("refresh_delay_not_a_number", func(t *testing.T) {
		setRequired(t)
		t.Setenv("REFRESH_DELAY", "soon")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REFRESH_DELAY")
	})

	t.Run("refresh_delay_zero", func(t *testing.T) {
		setRequired(t)
		t.Setenv("REFRESH_DELAY", "0")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("negative_lead_time", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LEAD_TIME_DAYS", "-1")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("book_async_not_a_bool", func(t *testing.T) {
		setRequired(t)
		t.Setenv("BOOK_ASYNC", "maybe")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BOOK_ASYNC")
	})
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"89"}, splitList("89"))
	assert.Equal(t, []string{"89", "94"}, splitList("89,94"))
	assert.Equal(t, []string{"89", "94"}, splitList(" 89 , 94 "))
	assert.Equal(t, []string{"89"}, splitList("89,,"))
	assert.Nil(t, splitList(""))
}
