// Package sched implements the display-state scheduler: per-monitor
// blanking windows reconciled against wall-clock time on a polling
// loop.
package sched

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock time with no date component.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "H:M:S". Single-digit components are
// accepted ("17:0:0"), matching hand-edited schedule files.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: want H:M:S", s)
	}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
		}
		vals[i] = n
	}
	t := TimeOfDay{Hour: vals[0], Minute: vals[1], Second: vals[2]}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return t, nil
}

// Seconds returns the seconds elapsed since midnight.
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Window is a daily blanking window. Start after End denotes a window
// crossing midnight (e.g. 22:00:00 to 07:00:00). Both boundaries are
// inclusive.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ParseWindow parses a start/end pair of "H:M:S" strings.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

// Contains reports whether the given second-of-day falls inside the
// window.
func (w Window) Contains(nowSeconds int) bool {
	start := w.Start.Seconds()
	end := w.End.Seconds()
	if start <= end {
		return start <= nowSeconds && nowSeconds <= end
	}
	return nowSeconds >= start || nowSeconds <= end
}
