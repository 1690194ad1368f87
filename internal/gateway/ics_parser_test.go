package gateway

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// icsLines 行をCRLFで連結してICSテキストを組み立てるヘルパー
func icsLines(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func newTestICSParser(t *testing.T) (*ICSParser, *time.Location) {
	t.Helper()
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return NewICSParser(chicago), chicago
}

func TestICSParser_Parse_SingleEvent(t *testing.T) {
	parser, _ := newTestICSParser(t)

	raw := icsLines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:event-1",
		"DTSTART:20240312T150000Z",
		"DTEND:20240312T160000Z",
		"SUMMARY:Design review",
		"DESCRIPTION:Bring notes\\, slides",
		"LOCATION:Room 4",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := parser.Parse(raw)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, "Design review", event.Summary)
	assert.Equal(t, "Bring notes, slides", event.Description)
	assert.Equal(t, "Room 4", event.Location)
	assert.True(t, time.Date(2024, 3, 12, 15, 0, 0, 0, time.UTC).Equal(event.Start))
	assert.True(t, time.Date(2024, 3, 12, 16, 0, 0, 0, time.UTC).Equal(event.End))
	assert.True(t, event.HasRequiredFields())
}

func TestICSParser_Parse_TimezoneVariants(t *testing.T) {
	parser, chicago := newTestICSParser(t)
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	raw := icsLines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:tzid",
		"DTSTART;TZID=America/New_York:20240312T100000",
		"DTEND;TZID=America/New_York:20240312T110000",
		"SUMMARY:With TZID",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:floating",
		"DTSTART:20240312T090000",
		"DTEND:20240312T093000",
		"SUMMARY:Floating",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:all-day",
		"DTSTART;VALUE=DATE:20240313",
		"DTEND;VALUE=DATE:20240314",
		"SUMMARY:All day",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:unknown-tz",
		"DTSTART;TZID=Custom/Unknown_Zone:20240312T120000",
		"DTEND;TZID=Custom/Unknown_Zone:20240312T130000",
		"SUMMARY:Unknown TZID",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := parser.Parse(raw)
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.True(t, time.Date(2024, 3, 12, 10, 0, 0, 0, newYork).Equal(events[0].Start))
	assert.True(t, time.Date(2024, 3, 12, 11, 0, 0, 0, newYork).Equal(events[0].End))

	// フローティング時刻は既定のタイムゾーンで解釈
	assert.True(t, time.Date(2024, 3, 12, 9, 0, 0, 0, chicago).Equal(events[1].Start))
	assert.True(t, time.Date(2024, 3, 12, 9, 30, 0, 0, chicago).Equal(events[1].End))

	assert.True(t, time.Date(2024, 3, 13, 0, 0, 0, 0, chicago).Equal(events[2].Start))
	assert.True(t, time.Date(2024, 3, 14, 0, 0, 0, 0, chicago).Equal(events[2].End))

	assert.True(t, time.Date(2024, 3, 12, 12, 0, 0, 0, chicago).Equal(events[3].Start))
}

func TestICSParser_Parse_MissingFieldsAreKept(t *testing.T) {
	parser, _ := newTestICSParser(t)

	raw := icsLines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:no-summary",
		"DTSTART:20240312T150000Z",
		"DTEND:20240312T160000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:no-end",
		"DTSTART:20240312T150000Z",
		"SUMMARY:No end",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := parser.Parse(raw)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Empty(t, events[0].Summary)
	assert.False(t, events[0].HasRequiredFields())
	assert.True(t, events[1].End.IsZero())
	assert.False(t, events[1].HasRequiredFields())
}

func TestICSParser_Parse_Duration(t *testing.T) {
	parser, chicago := newTestICSParser(t)

	raw := icsLines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:duration",
		"DTSTART:20240309T230000",
		"DURATION:PT1H30M",
		"SUMMARY:With duration",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:day-duration",
		"DTSTART;VALUE=DATE:20240309",
		"DURATION:P1D",
		"SUMMARY:Across DST",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := parser.Parse(raw)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.True(t, time.Date(2024, 3, 10, 0, 30, 0, 0, chicago).Equal(events[0].End))
	// 日単位の期間は暦日で加算（夏時間切り替えをまたいでも 00:00）
	assert.True(t, time.Date(2024, 3, 10, 0, 0, 0, 0, chicago).Equal(events[1].End))
}

func TestICSParser_Parse_SkipsNonEventComponents(t *testing.T) {
	parser, _ := newTestICSParser(t)

	raw := icsLines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VTIMEZONE",
		"TZID:America/Chicago",
		"BEGIN:STANDARD",
		"DTSTART:19701101T020000",
		"TZOFFSETFROM:-0500",
		"TZOFFSETTO:-0600",
		"END:STANDARD",
		"END:VTIMEZONE",
		"BEGIN:VEVENT",
		"UID:event",
		"DTSTART;TZID=America/Chicago:20240312T090000",
		"DTEND;TZID=America/Chicago:20240312T100000",
		"SUMMARY:Only event",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := parser.Parse(raw)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Only event", events[0].Summary)
}

func TestICSParser_Parse_EmptyInput(t *testing.T) {
	parser, _ := newTestICSParser(t)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "正常系: 0バイト", raw: ""},
		{name: "正常系: 空白と改行のみ", raw: "  \r\n"},
		{name: "正常系: VEVENTなし", raw: icsLines("BEGIN:VCALENDAR", "VERSION:2.0", "END:VCALENDAR")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := parser.Parse(tt.raw)
			require.NoError(t, err)
			assert.Empty(t, events)
		})
	}
}

func TestICSParser_Parse_Errors(t *testing.T) {
	parser, _ := newTestICSParser(t)

	tests := []struct {
		name          string
		raw           string
		expectedError string
	}{
		{
			name:          "VCALENDARで始まらない",
			raw:           icsLines("BEGIN:VEVENT", "SUMMARY:x", "END:VEVENT"),
			expectedError: "malformed calendar",
		},
		{
			name: "不正な終了時刻",
			raw: icsLines(
				"BEGIN:VCALENDAR",
				"BEGIN:VEVENT",
				"DTSTART:20240312T150000Z",
				"DTEND:not-a-dateZ",
				"SUMMARY:bad",
				"END:VEVENT",
				"END:VCALENDAR",
			),
			expectedError: "終了時刻の解析に失敗しました",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.raw)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}
