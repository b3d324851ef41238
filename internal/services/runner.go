package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/puckshotz/prop-stop/internal/hockey"
	"github.com/puckshotz/prop-stop/internal/models"
	"github.com/puckshotz/prop-stop/internal/projection"
	"github.com/puckshotz/prop-stop/pkg/database"
)

var (
	// ErrNoRoster means no skaters table covers the requested teams
	ErrNoRoster = errors.New("no roster rows for matchup")
	// ErrNoGames means the schedule has nothing for the requested date
	ErrNoGames = errors.New("no games scheduled")
	// ErrEmptyRun means every matchup was skipped or produced nothing
	ErrEmptyRun = errors.New("run produced no projections")
)

// RunnerService executes the projection model over persisted roster and
// shot history, and saves full-slate runs
type RunnerService struct {
	db       *database.DB
	cache    hockey.CacheProvider
	schedule hockey.ScheduleProvider
	logger   *logrus.Logger
	params   projection.Params
	alerts   *AlertService
}

// NewRunnerService creates a new projection runner
func NewRunnerService(db *database.DB, cache hockey.CacheProvider, schedule hockey.ScheduleProvider, alerts *AlertService, logger *logrus.Logger, params projection.Params) *RunnerService {
	return &RunnerService{
		db:       db,
		cache:    cache,
		schedule: schedule,
		logger:   logger,
		params:   params,
		alerts:   alerts,
	}
}

// Params returns the configured model parameters
func (s *RunnerService) Params() projection.Params {
	return s.params
}

// RunMatchup projects one away/home pair, sorted by projection descending
func (s *RunnerService) RunMatchup(teamA, teamB string, params projection.Params) ([]projection.Projection, error) {
	cacheKey := ProjectionsCacheKey(teamA, teamB, params.Line)
	var cached []projection.Projection
	if err := s.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	roster, err := s.loadRoster(teamA, teamB)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: %s/%s; upload a skaters table first", ErrNoRoster, teamA, teamB)
	}

	history, err := s.loadHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to load shot history: %w", err)
	}

	results := projection.Project(roster, history, teamA, teamB, params)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Projected > results[j].Projected
	})

	if len(results) > 0 {
		s.cache.SetSimple(cacheKey, results, 10*time.Minute)
	}

	return results, nil
}

// RunAll projects every matchup on today's slate and persists the run
func (s *RunnerService) RunAll(date time.Time, params projection.Params) (*models.ProjectionRun, error) {
	matchups, err := s.schedule.GetMatchups(date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matchups: %w", err)
	}
	if len(matchups) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoGames, date.Format("2006-01-02"))
	}

	run := &models.ProjectionRun{
		ID:       uuid.NewString(),
		GameDate: date.Format("2006-01-02"),
		Line:     params.Line,
	}

	var strong []projection.Projection
	for _, m := range matchups {
		results, err := s.RunMatchup(m.Away, m.Home, params)
		if err != nil {
			s.logger.Warnf("Skipping matchup %s@%s: %v", m.Away, m.Home, err)
			continue
		}

		matchup := fmt.Sprintf("%s@%s", m.Away, m.Home)
		for _, p := range results {
			saved, err := toSavedProjection(run.ID, matchup, p)
			if err != nil {
				s.logger.Errorf("Failed to encode projection for %s: %v", p.Player, err)
				continue
			}
			run.Projections = append(run.Projections, *saved)
			if p.Signal == "Strong" {
				strong = append(strong, p)
			}
		}
	}

	run.PlayerCount = len(run.Projections)
	if run.PlayerCount == 0 {
		return nil, fmt.Errorf("%w; check uploaded data", ErrEmptyRun)
	}

	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	s.logger.Infof("Saved projection run %s: %d players across %d matchups", run.ID, run.PlayerCount, len(matchups))

	if s.alerts != nil && len(strong) > 0 {
		go s.alerts.NotifyStrongSignals(run.GameDate, strong)
	}

	return run, nil
}

// loadRoster reads persisted skaters for two teams
func (s *RunnerService) loadRoster(teamA, teamB string) ([]hockey.RosterEntry, error) {
	var skaters []models.Skater
	if err := s.db.Where("team IN ?", []string{teamA, teamB}).Find(&skaters).Error; err != nil {
		return nil, err
	}

	roster := make([]hockey.RosterEntry, 0, len(skaters))
	for _, sk := range skaters {
		roster = append(roster, hockey.RosterEntry{
			Player:   sk.Player,
			Team:     sk.Team,
			Position: sk.Position,
		})
	}
	return roster, nil
}

// loadHistory reads all shot records in chronological source order. The
// model filters by player itself, so no team filter here.
func (s *RunnerService) loadHistory() ([]hockey.StatRecord, error) {
	var rows []models.StatRecord
	if err := s.db.Order("sequence ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	history := make([]hockey.StatRecord, 0, len(rows))
	for _, r := range rows {
		history = append(history, hockey.StatRecord{
			Player: r.Player,
			Team:   r.Team,
			GameID: r.GameID,
			Value:  r.Value,
		})
	}
	return history, nil
}

func toSavedProjection(runID, matchup string, p projection.Projection) (*models.SavedProjection, error) {
	last5, err := json.Marshal(p.Last5)
	if err != nil {
		return nil, err
	}
	last10, err := json.Marshal(p.Last10)
	if err != nil {
		return nil, err
	}

	return &models.SavedProjection{
		RunID:        runID,
		Matchup:      matchup,
		Player:       p.Player,
		Team:         p.Team,
		Projected:    p.Projected,
		ProbOverPct:  p.ProbOverPct,
		PlayableOdds: p.PlayableOdds,
		Signal:       p.Signal,
		SeasonAvg:    p.SeasonAvg,
		TrendScore:   p.TrendScore,
		Last5:        datatypes.JSON(last5),
		Last10:       datatypes.JSON(last10),
	}, nil
}
