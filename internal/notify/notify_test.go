package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindstash/mindstash/internal/model"
)

func TestExtractTimeFromText(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	got := ExtractTimeFromText("call mom at 3pm", now)
	require.NotNil(t, got)
	assert.Equal(t, 15, got.Hour())
	assert.Equal(t, now.Day(), got.Day())

	got = ExtractTimeFromText("in 2 hours check the oven", now)
	require.NotNil(t, got)
	assert.Equal(t, now.Add(2*time.Hour), *got)

	assert.Nil(t, ExtractTimeFromText("no time mentioned here", now))
}

func TestExtractTimeInPastRollsForwardOneDay(t *testing.T) {
	// 8pm "now": 3pm today is already past, so the reminder moves to
	// tomorrow 3pm.
	now := time.Date(2026, 8, 30, 20, 0, 0, 0, time.UTC)
	got := ExtractTimeFromText("call mom at 3pm", now)
	require.NotNil(t, got)
	assert.Equal(t, 15, got.Hour())
	assert.Equal(t, 31, got.Day())
}

func TestDefaultReminderTime(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, now.Add(15*time.Minute), DefaultReminderTime(model.UrgencyHigh, now))
	assert.Equal(t, now.Add(time.Hour), DefaultReminderTime(model.UrgencyMedium, now))

	tomorrow9 := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, tomorrow9, DefaultReminderTime(model.UrgencyLow, now))
	assert.Equal(t, tomorrow9, DefaultReminderTime(model.UrgencyNone, now))
}
