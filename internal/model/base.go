package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UUIDBase 字符串主键，创建时自动生成 uuid
type UUIDBase struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *UUIDBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return
}
