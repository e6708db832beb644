package storage

import (
	"errors"
	"fmt"

	"web-desktop/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm stores values in the kv_entries table under one browser session id.
type Gorm struct {
	db        *gorm.DB
	sessionID string
}

func NewGorm(conn *gorm.DB, sessionID string) *Gorm {
	return &Gorm{db: conn, sessionID: sessionID}
}

func (g *Gorm) Get(key string) (string, error) {
	var entry db.KVEntry
	err := g.db.Where("session_id = ? AND key = ?", g.sessionID, key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return entry.Value, nil
}

func (g *Gorm) Set(key, value string) error {
	entry := db.KVEntry{SessionID: g.sessionID, Key: key, Value: value}
	err := g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (g *Gorm) Delete(key string) error {
	err := g.db.Where("session_id = ? AND key = ?", g.sessionID, key).Delete(&db.KVEntry{}).Error
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
