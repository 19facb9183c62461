package model

import "time"

// Clock is one clock action. DateTime is stored in UTC, LocalDateTime is the
// wall clock of the user's timezone at the moment of clocking.
type Clock struct {
	ID            int32     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID        string    `gorm:"column:user_id;type:varchar(50);not null;uniqueIndex:ux_clock_user_date_time,priority:1" json:"userId"`
	Action        string    `gorm:"column:action;type:varchar(20);not null" json:"action"`
	DateTime      time.Time `gorm:"column:date_time;type:datetime;not null;uniqueIndex:ux_clock_user_date_time,priority:2" json:"dateTime"`
	LocalDateTime time.Time `gorm:"column:local_date_time;type:datetime;not null" json:"localDateTime"`
}

func (Clock) TableName() string {
	return "clock"
}
