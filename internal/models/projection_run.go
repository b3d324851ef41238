package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProjectionRun is one saved model invocation across today's matchups
type ProjectionRun struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	GameDate    string    `gorm:"index;not null" json:"game_date"` // YYYY-MM-DD
	Line        float64   `json:"line"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`

	Projections []SavedProjection `gorm:"foreignKey:RunID" json:"projections,omitempty"`
}

func (ProjectionRun) TableName() string {
	return "projection_runs"
}

// SavedProjection is one player's output row from a run. The trailing
// series are stored as JSON for transparency in the UI and CSV export.
type SavedProjection struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RunID        string         `gorm:"index;type:uuid;not null" json:"run_id"`
	Matchup      string         `gorm:"index" json:"matchup"` // "AWY@HOM"
	Player       string         `gorm:"not null" json:"player"`
	Team         string         `json:"team"`
	Projected    float64        `json:"projected"`
	ProbOverPct  float64        `json:"prob_over_pct"`
	PlayableOdds string         `json:"playable_odds"`
	Signal       string         `json:"signal"`
	SeasonAvg    float64        `json:"season_avg"`
	TrendScore   float64        `json:"trend_score"`
	Last5        datatypes.JSON `json:"last5"`
	Last10       datatypes.JSON `json:"last10"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (SavedProjection) TableName() string {
	return "saved_projections"
}
