package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "zero padded", input: "17:00:00", want: TimeOfDay{17, 0, 0}},
		{name: "single digit components", input: "17:0:0", want: TimeOfDay{17, 0, 0}},
		{name: "midnight", input: "0:0:0", want: TimeOfDay{0, 0, 0}},
		{name: "last second of day", input: "23:59:59", want: TimeOfDay{23, 59, 59}},
		{name: "hour out of range", input: "24:00:00", wantErr: true},
		{name: "minute out of range", input: "12:60:00", wantErr: true},
		{name: "negative component", input: "12:-1:00", wantErr: true},
		{name: "missing component", input: "12:00", wantErr: true},
		{name: "not a number", input: "noon:00:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	got, err := ParseTimeOfDay("7:5:3")
	assert.NoError(t, err)
	assert.Equal(t, "07:05:03", got.String())
}

func TestWindowContains(t *testing.T) {
	seconds := func(h, m, s int) int { return h*3600 + m*60 + s }

	tests := []struct {
		name   string
		start  string
		end    string
		now    int
		within bool
	}{
		// Same-day window.
		{name: "same day inside", start: "09:00:00", end: "17:00:00", now: seconds(12, 0, 0), within: true},
		{name: "same day before", start: "09:00:00", end: "17:00:00", now: seconds(8, 59, 59), within: false},
		{name: "same day after", start: "09:00:00", end: "17:00:00", now: seconds(17, 0, 1), within: false},
		{name: "same day start boundary", start: "09:00:00", end: "17:00:00", now: seconds(9, 0, 0), within: true},
		{name: "same day end boundary", start: "09:00:00", end: "17:00:00", now: seconds(17, 0, 0), within: true},

		// Window crossing midnight.
		{name: "overnight late evening", start: "22:00:00", end: "07:00:00", now: seconds(23, 30, 0), within: true},
		{name: "overnight early morning", start: "22:00:00", end: "07:00:00", now: seconds(3, 0, 0), within: true},
		{name: "overnight midday", start: "22:00:00", end: "07:00:00", now: seconds(12, 0, 0), within: false},
		{name: "overnight end boundary", start: "22:00:00", end: "07:00:00", now: seconds(7, 0, 0), within: true},
		{name: "overnight start boundary", start: "22:00:00", end: "07:00:00", now: seconds(22, 0, 0), within: true},
		{name: "overnight just after end", start: "22:00:00", end: "07:00:00", now: seconds(7, 0, 1), within: false},
		{name: "overnight just before start", start: "22:00:00", end: "07:00:00", now: seconds(21, 59, 59), within: false},

		// Degenerate single-instant window.
		{name: "equal start and end hit", start: "12:00:00", end: "12:00:00", now: seconds(12, 0, 0), within: true},
		{name: "equal start and end miss", start: "12:00:00", end: "12:00:00", now: seconds(12, 0, 1), within: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ParseWindow(tt.start, tt.end)
			assert.NoError(t, err)
			assert.Equal(t, tt.within, w.Contains(tt.now))
		})
	}
}
