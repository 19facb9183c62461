package model

import "time"

// CommandHistory is the audit trail of every slash command a user ran.
type CommandHistory struct {
	ID         int32     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     string    `gorm:"column:user_id;type:varchar(50);index"`
	Command    string    `gorm:"column:command;type:varchar(50);not null"`
	Parameters *string   `gorm:"column:parameters;type:varchar(150)"`
	DateTime   time.Time `gorm:"column:date_time;type:datetime;not null"`
}

func (CommandHistory) TableName() string {
	return "command_history"
}
