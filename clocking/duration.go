package clocking

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// WorkedDuration is a non-negative number of worked seconds.
type WorkedDuration int64

var durationPattern = regexp.MustCompile(`^(\d+)h (\d+)m$`)

func FromDuration(d time.Duration) WorkedDuration {
	if d < 0 {
		return 0
	}
	return WorkedDuration(d / time.Second)
}

func (w WorkedDuration) Duration() time.Duration {
	return time.Duration(w) * time.Second
}

func (w WorkedDuration) Hours() int64 {
	return int64(w) / 3600
}

func (w WorkedDuration) Minutes() int64 {
	return int64(w) % 3600 / 60
}

// TruncateMinutes drops the seconds that String does not render.
func (w WorkedDuration) TruncateMinutes() WorkedDuration {
	return w - w%60
}

// String renders whole hours and minutes, e.g. "7h 5m". Seconds are
// truncated and hours never carry into days.
func (w WorkedDuration) String() string {
	return fmt.Sprintf("%dh %dm", w.Hours(), w.Minutes())
}

// ParseWorkedDuration parses the "{h}h {m}m" format produced by String.
func ParseWorkedDuration(s string) (WorkedDuration, error) {
	match := durationPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, s)
	}

	hours, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedDuration, s, err)
	}
	minutes, err := strconv.ParseInt(match[2], 10, 64)
	if err != nil || minutes > 59 {
		return 0, fmt.Errorf("%w: %q: minutes out of range", ErrMalformedDuration, s)
	}

	return WorkedDuration(hours*3600 + minutes*60), nil
}

// SumHHMM adds two "{h}h {m}m" strings, e.g. "1h 30m" + "2h 45m" = "4h 15m".
func SumHHMM(a, b string) (string, error) {
	x, err := ParseWorkedDuration(a)
	if err != nil {
		return "", err
	}
	y, err := ParseWorkedDuration(b)
	if err != nil {
		return "", err
	}
	return (x + y).String(), nil
}
