package model

type UserConfig struct {
	UserID               string `gorm:"column:user_id;type:varchar(50);primaryKey" json:"userId"`
	IntratimeIntegration bool   `gorm:"column:intratime_integration;not null;default:false" json:"intratimeIntegration"`
	TimeZone             string `gorm:"column:time_zone;type:varchar(50)" json:"timeZone"`
}

func (UserConfig) TableName() string {
	return "config"
}
