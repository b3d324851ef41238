package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/puckshotz/prop-stop/internal/models"
	"github.com/puckshotz/prop-stop/pkg/config"
	"github.com/puckshotz/prop-stop/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db, cfg); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB, cfg *config.Config) error {
	// Enable UUID extension for PostgreSQL
	if strings.HasPrefix(cfg.DatabaseURL, "postgres") {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
			return fmt.Errorf("failed to create UUID extension: %w", err)
		}
	}

	// Auto migrate all models
	if err := db.AutoMigrate(
		&models.Skater{},
		&models.Goalie{},
		&models.LineUsage{},
		&models.TeamInfo{},
		&models.Injury{},
		&models.StatRecord{},
		&models.ActualResult{},
		&models.ProjectionRun{},
		&models.SavedProjection{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	// Create indexes
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_skaters_team ON skaters(team)",
		"CREATE INDEX IF NOT EXISTS idx_stat_records_player ON stat_records(player)",
		"CREATE INDEX IF NOT EXISTS idx_stat_records_sequence ON stat_records(sequence)",
		"CREATE INDEX IF NOT EXISTS idx_actual_results_date ON actual_results(game_date)",
		"CREATE INDEX IF NOT EXISTS idx_saved_projections_run ON saved_projections(run_id)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	// Drop tables in reverse order to handle foreign key constraints
	tables := []string{
		"saved_projections",
		"projection_runs",
		"actual_results",
		"stat_records",
		"injuries",
		"team_infos",
		"line_usages",
		"goalies",
		"skaters",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

func seedData(db *database.DB) error {
	// A two-team slate big enough to produce projections out of the box
	skaters := []models.Skater{
		{Player: "Jack Hughes", Team: "NJD", Position: "C"},
		{Player: "Jesper Bratt", Team: "NJD", Position: "LW"},
		{Player: "David Pastrnak", Team: "BOS", Position: "RW"},
		{Player: "Brad Marchand", Team: "BOS", Position: "LW"},
	}
	if err := db.Create(&skaters).Error; err != nil {
		return fmt.Errorf("failed to seed skaters: %w", err)
	}

	series := map[string][]int{
		"Jack Hughes":    {4, 3, 5, 2, 6, 4, 3, 5, 4, 7},
		"Jesper Bratt":   {2, 3, 1, 4, 2, 3, 2, 1, 3, 2},
		"David Pastrnak": {5, 6, 4, 7, 5, 4, 6, 5, 8, 5},
		"Brad Marchand":  {3, 2, 4, 3, 2, 3, 4, 2, 3, 3},
	}
	teams := map[string]string{
		"Jack Hughes":    "NJD",
		"Jesper Bratt":   "NJD",
		"David Pastrnak": "BOS",
		"Brad Marchand":  "BOS",
	}

	seq := 0
	var records []models.StatRecord
	for player, values := range series {
		for i, v := range values {
			seq++
			records = append(records, models.StatRecord{
				Player:   player,
				Team:     teams[player],
				GameID:   fmt.Sprintf("seed-%s-%d", teams[player], i+1),
				Value:    v,
				Source:   "upload",
				Sequence: seq,
			})
		}
	}
	if err := db.Create(&records).Error; err != nil {
		return fmt.Errorf("failed to seed shot records: %w", err)
	}

	return nil
}
