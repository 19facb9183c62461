package common

import (
	"encoding/json"
	"time"

	"clockzy.com/clockzy/clocking"
)

// LocalDateTime is a wall clock time without zone, "2006-01-02 15:04:05" on
// the wire. In attaches the zone it is meant in.
type LocalDateTime struct {
	time.Time
}

func (l *LocalDateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		l.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(clocking.TimestampLayout, s)
	if err != nil {
		return err
	}
	l.Time = t
	return nil
}

func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	if l.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(l.Format(clocking.TimestampLayout))
}

// In reads the wall clock in loc.
func (l LocalDateTime) In(loc *time.Location) time.Time {
	t := l.Time
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// NewLocalDateTime renders t as seen in loc.
func NewLocalDateTime(t time.Time, loc *time.Location) LocalDateTime {
	l := t.In(loc)
	return LocalDateTime{Time: time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), 0, time.UTC)}
}
