package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTimeFilterDays(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	filter := QueryFilter{Days: 7}
	start, end := filter.ApplyTimeFilter(now)

	assert.Equal(t, now.AddDate(0, 0, -7).Unix(), start)
	assert.Equal(t, now.Unix(), end)
}

func TestApplyTimeFilterNoFilter(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	filter := QueryFilter{}
	start, end := filter.ApplyTimeFilter(now)

	assert.Equal(t, int64(0), start)
	assert.Equal(t, now.Unix(), end)
}

func TestApplyTimeFilterExplicitRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	startTime := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	filter := QueryFilter{StartTime: &startTime, EndTime: &endTime}
	start, end := filter.ApplyTimeFilter(now)

	assert.Equal(t, startTime.Unix(), start)
	assert.Equal(t, endTime.Unix(), end)
}

func TestApplyTimeFilterPresetOverridesDays(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	filter := QueryFilter{Days: 30, DatePreset: "today"}
	start, end := filter.ApplyTimeFilter(now)

	expected := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, expected.Unix(), start)
	assert.Equal(t, now.Unix(), end)
}

func TestParseDatePreset(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) // A Saturday

	tests := []struct {
		preset    string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"today", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), now},
		{"yesterday", time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"week", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), now},
		{"month", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), now},
		{"all", time.Time{}, now},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			start, end, err := ParseDatePreset(tt.preset, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestParseDatePresetUnknown(t *testing.T) {
	_, _, err := ParseDatePreset("fortnight", time.Now())
	assert.Error(t, err)
}

func TestParseNaturalDate(t *testing.T) {
	result, err := ParseNaturalDate("yesterday")
	require.NoError(t, err)
	assert.False(t, result.IsZero())
	assert.True(t, result.Before(time.Now()))
}

func TestQueryFilterConditions(t *testing.T) {
	db := setupTestDB(t)

	// Seed two sessions with different activities
	seed := []struct {
		ts       int64
		session  string
		activity string
	}{
		{1700000000, "a", "PLAYING"},
		{1700000010, "a", "STOPPED"},
		{1700000020, "b", "PLAYING"},
	}
	for _, s := range seed {
		_, err := db.Exec(
			"INSERT INTO activity_events (timestamp, session_id, activity, previous_activity, position_ms, duration_ms) VALUES (?, ?, ?, ?, ?, ?)",
			s.ts, s.session, s.activity, "IDLE", 0, 0)
		require.NoError(t, err)
	}

	bySession, err := GetRecentEvents(db, QueryFilter{SessionID: "a"})
	require.NoError(t, err)
	assert.Len(t, bySession, 2)

	byActivity, err := GetRecentEvents(db, QueryFilter{Activity: "PLAYING"})
	require.NoError(t, err)
	assert.Len(t, byActivity, 2)

	both, err := GetRecentEvents(db, QueryFilter{SessionID: "b", Activity: "PLAYING"})
	require.NoError(t, err)
	assert.Len(t, both, 1)
}
