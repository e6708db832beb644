package db

import "time"

// KVEntry is one browser-session scoped key/value pair.
type KVEntry struct {
	SessionID string    `gorm:"primaryKey;size:64"`
	Key       string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (KVEntry) TableName() string { return "kv_entries" }
