package db

import "time"

type Score struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"size:64;not null"`
	Tiles     int       `gorm:"not null;index:idx_scores_rank,priority:1,sort:desc"`
	Attempts  int       `gorm:"not null;index:idx_scores_rank,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
}
