package hockey

import (
	"time"
)

// StatRecord is one player's counting stat for one game, as supplied by the
// uploaded shot tables or the boxscore backfill. Records for a player are
// assumed chronological in source order.
type StatRecord struct {
	Player string `json:"player"`
	Team   string `json:"team"`
	GameID string `json:"game_id"`
	Value  int    `json:"value"`
}

// RosterEntry is one player on a team, from the skaters table
type RosterEntry struct {
	Player   string `json:"player"`
	Team     string `json:"team"`
	Position string `json:"position,omitempty"`
}

// Matchup is one scheduled game, away at home, with canonical team codes
type Matchup struct {
	GameID    string    `json:"game_id"`
	Away      string    `json:"away"`
	Home      string    `json:"home"`
	StartTime time.Time `json:"start_time"`
	State     string    `json:"state"` // "pre", "in", "post"
}

// LineSlot is one scraped lineup slot: a forward line or defense pair
type LineSlot struct {
	Unit    string   `json:"unit"` // "L1".."L4", "D1".."D3", "PP1", "PP2"
	Players []string `json:"players"`
}

// GoalieStatus is the scraped starting-goalie report for a team
type GoalieStatus struct {
	Team         string `json:"team"`
	Goalie       string `json:"goalie"`
	Confirmation string `json:"confirmation"` // "confirmed", "likely", "unconfirmed"
}

// TeamLineup holds everything scraped for one team
type TeamLineup struct {
	Team      string       `json:"team"`
	Lines     []LineSlot   `json:"lines"`
	Goalie    GoalieStatus `json:"goalie"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// LineUsage is one row of the uploaded line data: a forward line or
// defense pairing with the shot volume it has conceded
type LineUsage struct {
	Pairing    string `json:"pairing"`
	Team       string `json:"team"`
	Games      int    `json:"games"`
	SOGAgainst int    `json:"sog_against"`
}

// InjuryReport is one row of the uploaded injuries table
type InjuryReport struct {
	Player     string `json:"player"`
	Team       string `json:"team"`
	InjuryType string `json:"injury_type,omitempty"`
	Note       string `json:"note,omitempty"`
	Date       string `json:"date,omitempty"`
}

// TeamRecord is one row of the uploaded teams table
type TeamRecord struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// ScheduleProvider fetches matchups and boxscore stats from a remote API
type ScheduleProvider interface {
	GetMatchups(date time.Time) ([]Matchup, error)
	GetBoxscoreStats(gameID string) ([]StatRecord, error)
}

// LineupProvider scrapes line combinations and goalie status
type LineupProvider interface {
	GetTeamLineup(team string) (*TeamLineup, error)
}

// CacheProvider interface for cache operations
type CacheProvider interface {
	SetSimple(key string, value interface{}, expiration time.Duration) error
	GetSimple(key string, dest interface{}) error
}
