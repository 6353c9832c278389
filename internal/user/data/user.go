package data

import (
	"time"

	"gorm.io/gorm"
)

// UserPO 用户数据模型
type UserPO struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Name         string `gorm:"type:varchar(255);not null"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	AvatarURL    string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名
func (UserPO) TableName() string {
	return "users"
}
