package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoadChicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

func TestWeekWindow(t *testing.T) {
	chicago := mustLoadChicago(t)

	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "水曜日",
			now:       time.Date(2024, 3, 13, 15, 30, 0, 0, chicago),
			wantStart: time.Date(2024, 3, 10, 0, 0, 0, 0, chicago),
			wantEnd:   time.Date(2024, 3, 16, 15, 30, 0, 0, chicago),
		},
		{
			name:      "日曜日は当日が週の開始",
			now:       time.Date(2024, 3, 10, 8, 0, 0, 0, chicago),
			wantStart: time.Date(2024, 3, 10, 0, 0, 0, 0, chicago),
			wantEnd:   time.Date(2024, 3, 16, 8, 0, 0, 0, chicago),
		},
		{
			name:      "土曜日は当日の現在時刻が終了",
			now:       time.Date(2024, 3, 16, 23, 0, 0, 0, chicago),
			wantStart: time.Date(2024, 3, 10, 0, 0, 0, 0, chicago),
			wantEnd:   time.Date(2024, 3, 16, 23, 0, 0, 0, chicago),
		},
		{
			name:      "月をまたぐ週",
			now:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekWindow(tt.now)
			assert.True(t, tt.wantStart.Equal(start), "start = %v", start)
			assert.True(t, tt.wantEnd.Equal(end), "end = %v", end)
		})
	}
}

func TestIsCurrentWeek(t *testing.T) {
	chicago := mustLoadChicago(t)
	// 2024-03-10 は夏時間の開始日
	now := time.Date(2024, 3, 13, 15, 30, 0, 0, chicago)
	weekStart, weekEnd := WeekWindow(now)

	tests := []struct {
		name     string
		modified time.Time
		expected bool
	}{
		{"週の開始ちょうど", weekStart, true},
		{"週の終了ちょうど", weekEnd, true},
		{"週の途中", time.Date(2024, 3, 12, 9, 0, 0, 0, chicago), true},
		{"夏時間切り替え直後", time.Date(2024, 3, 10, 3, 0, 0, 0, chicago), true},
		{"週の開始の直前", weekStart.Add(-time.Nanosecond), false},
		{"週の開始の1日前", weekStart.AddDate(0, 0, -1), false},
		{"週の終了の1日後", weekEnd.AddDate(0, 0, 1), false},
		{"土曜日でも現在時刻より後", time.Date(2024, 3, 16, 23, 59, 0, 0, chicago), false},
		{"別タイムゾーンで同一時刻", weekStart.In(time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCurrentWeek(tt.modified, now))
		})
	}
}
