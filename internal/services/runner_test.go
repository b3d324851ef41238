package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puckshotz/prop-stop/internal/hockey"
	"github.com/puckshotz/prop-stop/internal/models"
	"github.com/puckshotz/prop-stop/internal/projection"
	"github.com/puckshotz/prop-stop/pkg/database"
)

// noopCache always misses so runner tests exercise the database path
type noopCache struct{}

func (noopCache) SetSimple(key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (noopCache) GetSimple(key string, dest interface{}) error {
	return errors.New("cache miss")
}

type stubSchedule struct {
	matchups []hockey.Matchup
	err      error
}

func (s *stubSchedule) GetMatchups(date time.Time) ([]hockey.Matchup, error) {
	return s.matchups, s.err
}

func (s *stubSchedule) GetBoxscoreStats(gameID string) ([]hockey.StatRecord, error) {
	return nil, nil
}

func newTestRunner(t *testing.T, schedule hockey.ScheduleProvider) (*RunnerService, *database.DB) {
	t.Helper()

	// Named shared-cache DSN keeps one in-memory database per test across
	// pooled connections
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.NewConnection(dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Skater{},
		&models.StatRecord{},
		&models.ProjectionRun{},
		&models.SavedProjection{},
	))

	runner := NewRunnerService(db, noopCache{}, schedule, nil, logrus.New(), projection.DefaultParams())
	return runner, db
}

func seedSlate(t *testing.T, db *database.DB) {
	t.Helper()

	skaters := []models.Skater{
		{Player: "Jack Hughes", Team: "NJD", Position: "C"},
		{Player: "David Pastrnak", Team: "BOS", Position: "RW"},
		{Player: "Auston Matthews", Team: "TOR", Position: "C"},
	}
	require.NoError(t, db.Create(&skaters).Error)

	seq := 0
	for i := 1; i <= 10; i++ {
		records := []models.StatRecord{
			{Player: "Jack Hughes", Team: "NJD", GameID: fmt.Sprintf("njd-%d", i), Value: 4, Source: "upload", Sequence: seq},
			{Player: "David Pastrnak", Team: "BOS", GameID: fmt.Sprintf("bos-%d", i), Value: 5, Source: "upload", Sequence: seq + 1},
		}
		require.NoError(t, db.Create(&records).Error)
		seq += 2
	}
}

func TestRunMatchup(t *testing.T) {
	runner, db := newTestRunner(t, &stubSchedule{})
	seedSlate(t, db)

	results, err := runner.RunMatchup("NJD", "BOS", projection.DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Sorted by projected shots descending
	assert.Equal(t, "David Pastrnak", results[0].Player)
	assert.InDelta(t, 5.0, results[0].Projected, 1e-9)
	assert.Equal(t, "Jack Hughes", results[1].Player)

	// Matthews plays for neither team and never appears
	for _, p := range results {
		assert.NotEqual(t, "TOR", p.Team)
	}
}

func TestRunMatchupNoRoster(t *testing.T) {
	runner, _ := newTestRunner(t, &stubSchedule{})

	_, err := runner.RunMatchup("NJD", "BOS", projection.DefaultParams())
	assert.Error(t, err)
}

func TestRunAllPersistsRun(t *testing.T) {
	schedule := &stubSchedule{
		matchups: []hockey.Matchup{
			{GameID: "g1", Away: "NJD", Home: "BOS", State: "pre"},
		},
	}
	runner, db := newTestRunner(t, schedule)
	seedSlate(t, db)

	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	run, err := runner.RunAll(date, projection.DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, "2026-01-15", run.GameDate)
	assert.Equal(t, 2, run.PlayerCount)
	require.Len(t, run.Projections, 2)
	assert.Equal(t, "NJD@BOS", run.Projections[0].Matchup)

	var saved models.ProjectionRun
	require.NoError(t, db.Preload("Projections").First(&saved, "id = ?", run.ID).Error)
	assert.Len(t, saved.Projections, 2)
}

func TestRunAllNoGames(t *testing.T) {
	runner, _ := newTestRunner(t, &stubSchedule{})

	_, err := runner.RunAll(time.Now(), projection.DefaultParams())
	assert.Error(t, err)
}
