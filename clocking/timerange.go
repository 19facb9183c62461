package clocking

import (
	"fmt"
	"strings"
	"time"
)

const (
	// TimestampLayout is the wire format of every timestamp exchanged with
	// callers. It is always read in an explicit timezone.
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"

	DefaultTimezone = "Europe/Berlin"

	// LookbackDays bounds the search for an open session when a window has
	// no events of its own.
	LookbackDays = 31
)

// Reference pins the "now" instant and the timezone a computation runs in.
type Reference struct {
	Now      time.Time
	Location *time.Location
}

func NewReference(now time.Time, timezone string) (Reference, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Reference{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return Reference{Now: now.In(loc), Location: loc}, nil
}

// Today is local midnight of the reference day.
func (r Reference) Today() time.Time {
	return StartOfDay(r.Now, r.Location)
}

type RangeSelector string

const (
	Today RangeSelector = "today"
	Week  RangeSelector = "week"
	Month RangeSelector = "month"
)

// ParseRangeSelector accepts today, week or month. An empty string means today.
func ParseRangeSelector(s string) (RangeSelector, error) {
	switch sel := RangeSelector(strings.ToLower(strings.TrimSpace(s))); sel {
	case "":
		return Today, nil
	case Today, Week, Month:
		return sel, nil
	default:
		return "", fmt.Errorf("invalid time range %q, expected one of today, week, month", s)
	}
}

// Label is the phrase used in user-facing messages.
func (s RangeSelector) Label() string {
	switch s {
	case Week:
		return "this week"
	case Month:
		return "this month"
	default:
		return string(s)
	}
}

// Window is an inclusive [From, To] interval of absolute instants.
type Window struct {
	From time.Time
	To   time.Time
}

// ResolveRange turns a selector into a window ending at ref.Now.
func ResolveRange(sel RangeSelector, ref Reference) (Window, error) {
	today := ref.Today()

	var from time.Time
	switch sel {
	case Today:
		from = today
	case Week:
		// Monday is the first day of the week.
		offset := (int(today.Weekday()) + 6) % 7
		from = today.AddDate(0, 0, -offset)
	case Month:
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, ref.Location)
	default:
		return Window{}, fmt.Errorf("invalid time range %q", sel)
	}

	return Window{From: from, To: ref.Now}, nil
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay is 23:59:59 of t's local date.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 23, 59, 59, 0, loc)
}

func SameDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).Equal(StartOfDay(b, loc))
}

// DayWindow covers [00:00:00, 23:59:59] of day's local date.
func DayWindow(day time.Time, loc *time.Location) Window {
	return Window{From: StartOfDay(day, loc), To: EndOfDay(day, loc)}
}

// Days lists the local midnights of every date touched by w, optionally
// skipping Saturdays and Sundays.
func Days(w Window, loc *time.Location, excludeWeekends bool) []time.Time {
	var days []time.Time
	for d := StartOfDay(w.From, loc); !d.After(w.To); d = d.AddDate(0, 0, 1) {
		if excludeWeekends && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		days = append(days, d)
	}
	return days
}

func FormatTimestamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimestampLayout)
}

func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q, expected %s: %w", s, TimestampLayout, err)
	}
	return t, nil
}
