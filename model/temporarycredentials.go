package model

import "time"

// TemporaryCredentials grants one web login per /management call.
// Password holds a bcrypt hash.
type TemporaryCredentials struct {
	UserID             string    `gorm:"column:user_id;type:varchar(100);primaryKey"`
	Password           string    `gorm:"column:password;type:varchar(100);not null"`
	ExpirationDateTime time.Time `gorm:"column:expiration_date_time;type:datetime;not null"`
}

func (TemporaryCredentials) TableName() string {
	return "temporary_credentials"
}
