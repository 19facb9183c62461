package model

type Alias struct {
	ID     int32  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"column:user_id;type:varchar(100);not null;index" json:"userId"`
	Alias  string `gorm:"column:alias;type:varchar(100);not null;uniqueIndex" json:"alias"`
}

func (Alias) TableName() string {
	return "alias"
}
