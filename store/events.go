package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"clockzy.com/clockzy/clocking"
	"clockzy.com/clockzy/model"
	"gorm.io/gorm"
)

var _ clocking.EventStore = (*Store)(nil)

func toEvent(c model.Clock) clocking.ClockEvent {
	local := c.LocalDateTime
	return clocking.ClockEvent{
		UserID:         c.UserID,
		Action:         clocking.Action(strings.ToLower(c.Action)),
		Timestamp:      c.DateTime.UTC(),
		LocalTimestamp: &local,
	}
}

func storeError(op string, err error) error {
	return &clocking.StoreError{Op: op, Err: err}
}

func (s *Store) GetLastEvent(ctx context.Context, userID string) (*clocking.ClockEvent, error) {
	var clock model.Clock
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).Order("date_time DESC").First(&clock).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("last event", err)
	}

	event := toEvent(clock)
	return &event, nil
}

func (s *Store) GetEventsInRange(ctx context.Context, userID string, from, to time.Time) ([]clocking.ClockEvent, error) {
	var clocks []model.Clock
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ? AND date_time BETWEEN ? AND ?", userID, from.UTC(), to.UTC()).
			Order("date_time ASC").
			Find(&clocks).Error
	})
	if err != nil {
		return nil, storeError("events in range", err)
	}

	events := make([]clocking.ClockEvent, 0, len(clocks))
	for _, c := range clocks {
		events = append(events, toEvent(c))
	}
	return events, nil
}

func (s *Store) SaveEvent(ctx context.Context, userID string, action clocking.Action, timestamp time.Time, localTimestamp *time.Time) error {
	clock := model.Clock{
		UserID:        userID,
		Action:        string(action),
		DateTime:      timestamp.UTC(),
		LocalDateTime: wallClock(timestamp),
	}
	if localTimestamp != nil {
		clock.LocalDateTime = wallClock(*localTimestamp)
	}

	err := s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&clock).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("last_registration_date", clock.DateTime).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateClock
	}
	if err != nil {
		return storeError("save event", err)
	}
	return nil
}
