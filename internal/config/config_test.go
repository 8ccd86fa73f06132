package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", " token ")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REPORT_INTERVAL_HOURS", "")
	t.Setenv("REPORT_TIME", "")
	t.Setenv("TIMEZONE", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "token", cfg.TelegramToken)
	require.Equal(t, "today_i_need.db", cfg.DatabaseURL)
	require.Equal(t, 24*time.Hour, cfg.ReportInterval)
	require.Equal(t, time.Local, cfg.Location)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DATABASE_URL", "data/tasks.db")
	t.Setenv("REPORT_INTERVAL_HOURS", "6")
	t.Setenv("REPORT_TIME", "08:30")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "data/tasks.db", cfg.DatabaseURL)
	require.Equal(t, 6*time.Hour, cfg.ReportInterval)
	require.Equal(t, "08:30", cfg.ReportTime)
	require.Equal(t, "UTC", cfg.Location.String())
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("REPORT_TIME", "")
	t.Setenv("TIMEZONE", "")
	_, err := Load()
	require.EqualError(t, err, "TELEGRAM_TOKEN is required")

	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("REPORT_TIME", "25:00")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("REPORT_TIME", "")
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")
	_, err = Load()
	require.Error(t, err)
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("07:05")
	require.NoError(t, err)
	require.Equal(t, 7, h)
	require.Equal(t, 5, m)

	for _, bad := range []string{"7", "24:00", "12:60", "ab:cd", "1:2:3"} {
		_, _, err := ParseClock(bad)
		require.Error(t, err, bad)
	}
}
