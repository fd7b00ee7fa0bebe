package models

import (
	"time"

	"gorm.io/gorm"
)

// 基础模型：自增整型主键 + 时间戳 + 软删除
type Base struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
