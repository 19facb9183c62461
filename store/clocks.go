package store

import (
	"context"
	"errors"
	"time"

	"clockzy.com/clockzy/model"
	"gorm.io/gorm"
)

type ClockFilter struct {
	From   *time.Time
	To     *time.Time
	Action string
}

func (f ClockFilter) apply(db *gorm.DB) *gorm.DB {
	if f.From != nil {
		db = db.Where("date_time >= ?", f.From.UTC())
	}
	if f.To != nil {
		db = db.Where("date_time <= ?", f.To.UTC())
	}
	if f.Action != "" {
		db = db.Where("action = ?", f.Action)
	}
	return db
}

// ListClocks returns the clocks of userID matching filter, oldest first.
func (s *Store) ListClocks(ctx context.Context, userID string, filter ClockFilter) ([]model.Clock, error) {
	var clocks []model.Clock
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return filter.apply(db.Where("user_id = ?", userID)).
			Order("date_time ASC").
			Find(&clocks).Error
	})
	return clocks, err
}

func (s *Store) GetClock(ctx context.Context, userID string, id int32) (*model.Clock, error) {
	var clock model.Clock
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("id = ? AND user_id = ?", id, userID).First(&clock).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &clock, nil
}

func (s *Store) AddClock(ctx context.Context, clock *model.Clock) error {
	clock.DateTime = clock.DateTime.UTC()
	clock.LocalDateTime = wallClock(clock.LocalDateTime)

	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		err := db.Create(clock).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateClock
		}
		return err
	})
}

// UpdateClock overwrites the action and times of a clock owned by
// clock.UserID.
func (s *Store) UpdateClock(ctx context.Context, clock *model.Clock) error {
	return s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		var existing model.Clock
		err := tx.Where("id = ? AND user_id = ?", clock.ID, clock.UserID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		existing.Action = clock.Action
		existing.DateTime = clock.DateTime.UTC()
		existing.LocalDateTime = wallClock(clock.LocalDateTime)

		err = tx.Save(&existing).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateClock
		}
		if err != nil {
			return err
		}
		*clock = existing
		return nil
	})
}

func (s *Store) DeleteClock(ctx context.Context, userID string, id int32) error {
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Clock{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
