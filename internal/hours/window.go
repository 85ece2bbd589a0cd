// Package hours answers whether a human agent is expected to be online.
package hours

import (
	"fmt"
	"time"
)

// Window is a daily local-time span during which the support desk is staffed.
type Window struct {
	StartMinutes int
	EndMinutes   int
	location     *time.Location
	enabled      bool
}

// Parse builds a window from HH:MM strings in the given IANA timezone.
func Parse(start, end, tz string) (Window, error) {
	loc := time.UTC
	if tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return Window{}, fmt.Errorf("hours: load timezone: %w", err)
		}
	}
	startMin, err := parseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("hours: parse start: %w", err)
	}
	endMin, err := parseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("hours: parse end: %w", err)
	}
	return Window{
		StartMinutes: startMin,
		EndMinutes:   endMin,
		location:     loc,
		enabled:      true,
	}, nil
}

// AlwaysOpen returns a window that never reports closed.
func AlwaysOpen() Window {
	return Window{}
}

func parseClock(v string) (int, error) {
	if v == "" {
		return 0, fmt.Errorf("empty clock")
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Open reports whether now falls inside the window. A zero Window is always open.
func (w Window) Open(now time.Time) bool {
	if !w.enabled {
		return true
	}
	if w.StartMinutes == w.EndMinutes {
		return true
	}
	local := now.In(w.location)
	minutes := local.Hour()*60 + local.Minute()
	if w.StartMinutes < w.EndMinutes {
		return minutes >= w.StartMinutes && minutes < w.EndMinutes
	}
	// Window crosses midnight.
	return minutes >= w.StartMinutes || minutes < w.EndMinutes
}

// Describe renders the window as "10:00-19:00".
func (w Window) Describe() string {
	if !w.enabled {
		return "24x7"
	}
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.StartMinutes/60, w.StartMinutes%60, w.EndMinutes/60, w.EndMinutes%60)
}
