package model

import (
	"time"
)

// BaseModel contains common fields for all models
type BaseModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetID returns the store-assigned identifier
func (m BaseModel) GetID() uint64 {
	return m.ID
}

// Status constants shared by servers and upstreams
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)
