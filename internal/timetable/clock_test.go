package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "midnight", input: "00:00", want: 0},
		{name: "morning", input: "08:00", want: 480},
		{name: "half past", input: "09:30", want: 570},
		{name: "single digit hour", input: "9:05", want: 545},
		{name: "last minute", input: "23:59", want: 1439},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "seconds not allowed", input: "10:00:00", wantErr: true},
		{name: "missing colon", input: "1000", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "letters", input: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinutes(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, models.ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromMinutes(t *testing.T) {
	assert.Equal(t, "08:00", FromMinutes(480))
	assert.Equal(t, "09:05", FromMinutes(545))
	assert.Equal(t, "00:00", FromMinutes(-5))
	assert.Equal(t, "23:59", FromMinutes(5000))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name         string
		startA, endA string
		startB, endB string
		want         bool
	}{
		{name: "partial overlap", startA: "08:00", endA: "09:30", startB: "09:00", endB: "10:00", want: true},
		{name: "contained", startA: "08:00", endA: "12:00", startB: "09:00", endB: "10:00", want: true},
		{name: "identical", startA: "08:00", endA: "09:00", startB: "08:00", endB: "09:00", want: true},
		{name: "back to back", startA: "08:00", endA: "09:00", startB: "09:00", endB: "10:00", want: false},
		{name: "disjoint", startA: "08:00", endA: "09:00", startB: "11:00", endB: "12:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a1, a2, b1, b2 := clock(tt.startA), clock(tt.endA), clock(tt.startB), clock(tt.endB)
			assert.Equal(t, tt.want, Overlaps(a1, a2, b1, b2))
			assert.Equal(t, tt.want, Overlaps(b1, b2, a1, a2), "overlap must be symmetric")
		})
	}
}

func TestWeekStartAndDateHelpers(t *testing.T) {
	assert.Equal(t, date("2024-05-05"), WeekStart(date("2024-05-08")))
	assert.Equal(t, date("2024-05-05"), WeekStart(date("2024-05-05")))
	assert.True(t, SameDate(date("2024-05-05"), date("2024-05-05").Add(13*time.Hour)))
}

func TestClockJSONRoundTrip(t *testing.T) {
	var c models.Clock
	require.NoError(t, c.UnmarshalText([]byte("10:15")))
	assert.Equal(t, models.Clock(615), c)
	out, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "10:15", string(out))
}
