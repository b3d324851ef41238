package models

import (
	"time"
)

// Skater is one persisted roster row from the skaters upload
type Skater struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Player    string    `gorm:"index;not null" json:"player"`
	Team      string    `gorm:"index;not null" json:"team"`
	Position  string    `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Skater) TableName() string {
	return "skaters"
}
