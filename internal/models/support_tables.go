package models

import "time"

// Goalie is one row of the uploaded goaltenders table
type Goalie struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Player    string    `gorm:"not null" json:"player"`
	Team      string    `gorm:"index" json:"team"`
	CreatedAt time.Time `json:"created_at"`
}

func (Goalie) TableName() string {
	return "goalies"
}

// LineUsage is one row of the uploaded line data: a pairing with the shot
// volume it has conceded
type LineUsage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Pairing    string    `gorm:"not null" json:"pairing"`
	Team       string    `gorm:"index" json:"team"`
	Games      int       `json:"games"`
	SOGAgainst int       `json:"sog_against"`
	CreatedAt  time.Time `json:"created_at"`
}

func (LineUsage) TableName() string {
	return "line_usages"
}

// TeamInfo is one row of the uploaded teams table
type TeamInfo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (TeamInfo) TableName() string {
	return "team_infos"
}

// Injury is one row of the uploaded injuries table
type Injury struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Player     string    `gorm:"index;not null" json:"player"`
	Team       string    `gorm:"index" json:"team"`
	InjuryType string    `json:"injury_type"`
	Note       string    `json:"note"`
	Date       string    `json:"date"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Injury) TableName() string {
	return "injuries"
}
