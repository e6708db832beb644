package db

import (
	"time"

	"gorm.io/datatypes"
)

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	SessionID string         `gorm:"size:64;index;not null"`
	WindowID  string         `gorm:"size:32"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
