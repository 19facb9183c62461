package store

import (
	"errors"
	"time"

	"clockzy.com/clockzy/core"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrUserExists     = errors.New("user already registered")
	ErrAliasExists    = errors.New("alias already in use")
	ErrDuplicateClock = errors.New("a clock already exists at that date time")
)

// Store is the MySQL backed persistence of clockzy. All timestamps are
// written in UTC; the connection must use parseTime=true&loc=UTC.
type Store struct {
	dm *core.DatabaseManager
}

func New(dm *core.DatabaseManager) *Store {
	return &Store{dm: dm}
}

// wallClock keeps the local date and time of t but labels it UTC so the
// driver stores it unchanged in a DATETIME column.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
