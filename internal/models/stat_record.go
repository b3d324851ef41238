package models

import (
	"time"
)

// StatRecord is a persisted per-game shot row from an uploaded table or the
// boxscore backfill
type StatRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Player    string    `gorm:"index;not null" json:"player"`
	Team      string    `gorm:"index" json:"team"`
	GameID    string    `gorm:"index;not null" json:"game_id"`
	Value     int       `gorm:"not null" json:"value"`
	Source    string    `gorm:"not null" json:"source"` // "upload" or "espn"
	Sequence  int       `gorm:"not null" json:"sequence"` // preserves chronological source order
	CreatedAt time.Time `json:"created_at"`
}

func (StatRecord) TableName() string {
	return "stat_records"
}

// ActualResult is one player's final SOG for a completed game, backfilled
// from the boxscore the morning after
type ActualResult struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GameDate  string    `gorm:"index;not null" json:"game_date"` // YYYY-MM-DD
	GameID    string    `gorm:"index;not null" json:"game_id"`
	Player    string    `gorm:"index;not null" json:"player"`
	Team      string    `json:"team"`
	ActualSOG int       `json:"actual_sog"`
	CreatedAt time.Time `json:"created_at"`
}

func (ActualResult) TableName() string {
	return "actual_results"
}
