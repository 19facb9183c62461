package model

import "time"

// User is a Slack user registered with /sign_up. ID is the Slack user id.
type User struct {
	ID                   string     `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	UserName             string     `gorm:"column:user_name;type:varchar(100);not null" json:"userName"`
	Password             *string    `gorm:"column:password;type:varchar(100)" json:"-"`
	Email                *string    `gorm:"column:email;type:varchar(200)" json:"email,omitempty"`
	EntryData            *time.Time `gorm:"column:entry_data;type:datetime" json:"entryData,omitempty"`
	LastRegistrationDate *time.Time `gorm:"column:last_registration_date;type:datetime" json:"lastRegistrationDate,omitempty"`
}

func (User) TableName() string {
	return "user"
}
