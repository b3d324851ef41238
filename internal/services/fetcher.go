package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/puckshotz/prop-stop/internal/hockey"
	"github.com/puckshotz/prop-stop/internal/models"
	"github.com/puckshotz/prop-stop/pkg/database"
)

// FetcherService keeps schedule, actuals, and lineup data fresh on a cron
// cadence
type FetcherService struct {
	db            *database.DB
	cache         *CacheService
	schedule      hockey.ScheduleProvider
	lineups       hockey.LineupProvider
	logger        *logrus.Logger
	cron          *cron.Cron
	fetchInterval time.Duration

	mu        sync.Mutex
	isRunning bool
}

// NewFetcherService creates a new fetcher service
func NewFetcherService(
	db *database.DB,
	cache *CacheService,
	schedule hockey.ScheduleProvider,
	lineups hockey.LineupProvider,
	logger *logrus.Logger,
	fetchInterval time.Duration,
) *FetcherService {
	return &FetcherService{
		db:            db,
		cache:         cache,
		schedule:      schedule,
		lineups:       lineups,
		logger:        logger,
		cron:          cron.New(),
		fetchInterval: fetchInterval,
	}
}

// Start begins the scheduled fetching
func (s *FetcherService) Start(runInitialFetch bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("fetcher is already running")
	}

	// Regular schedule refresh
	spec := fmt.Sprintf("@every %s", s.fetchInterval.String())
	if _, err := s.cron.AddFunc(spec, s.RefreshSchedule); err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}

	// Backfill yesterday's actual SOG each morning
	if _, err := s.cron.AddFunc("0 7 * * *", s.BackfillActuals); err != nil {
		return fmt.Errorf("failed to schedule actuals backfill: %w", err)
	}

	// Lineup scrape every hour through the evening slate (ET game hours)
	if _, err := s.cron.AddFunc("0 15-23 * * *", s.RefreshLineups); err != nil {
		return fmt.Errorf("failed to schedule lineup refresh: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	if runInitialFetch {
		go s.RefreshSchedule()
	}

	s.logger.Info("Fetcher service started")
	return nil
}

// Stop halts the scheduled fetching
func (s *FetcherService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Fetcher service stopped")
}

// RefreshSchedule re-fetches today's matchups into the cache
func (s *FetcherService) RefreshSchedule() {
	today := time.Now().UTC()
	matchups, err := s.schedule.GetMatchups(today)
	if err != nil {
		s.logger.Errorf("Schedule refresh failed: %v", err)
		return
	}

	key := MatchupsCacheKey(today.Format("2006-01-02"))
	if err := s.cache.SetWithRetry(context.Background(), key, matchups, s.fetchInterval, 3); err != nil {
		s.logger.Errorf("Failed to cache schedule: %v", err)
	}
	s.logger.Infof("Refreshed schedule: %d games", len(matchups))
}

// BackfillActuals pulls final boxscore SOG for yesterday's completed games
// and appends them to both actuals and shot history
func (s *FetcherService) BackfillActuals() {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	gameDate := yesterday.Format("2006-01-02")

	matchups, err := s.schedule.GetMatchups(yesterday)
	if err != nil {
		s.logger.Errorf("Actuals backfill failed to fetch schedule: %v", err)
		return
	}

	total := 0
	for _, m := range matchups {
		if m.State != "post" {
			continue
		}

		// Already backfilled?
		var count int64
		s.db.Model(&models.ActualResult{}).Where("game_id = ?", m.GameID).Count(&count)
		if count > 0 {
			continue
		}

		stats, err := s.schedule.GetBoxscoreStats(m.GameID)
		if err != nil {
			s.logger.Errorf("Actuals backfill failed for game %s: %v", m.GameID, err)
			continue
		}

		var maxSeq int
		s.db.Model(&models.StatRecord{}).Select("COALESCE(MAX(sequence), 0)").Scan(&maxSeq)

		for i, stat := range stats {
			actual := models.ActualResult{
				GameDate:  gameDate,
				GameID:    stat.GameID,
				Player:    stat.Player,
				Team:      stat.Team,
				ActualSOG: stat.Value,
			}
			if err := s.db.Create(&actual).Error; err != nil {
				s.logger.Errorf("Failed to save actual for %s: %v", stat.Player, err)
				continue
			}

			record := models.StatRecord{
				Player:   stat.Player,
				Team:     stat.Team,
				GameID:   stat.GameID,
				Value:    stat.Value,
				Source:   "espn",
				Sequence: maxSeq + i + 1,
			}
			if err := s.db.Create(&record).Error; err != nil {
				s.logger.Errorf("Failed to append history for %s: %v", stat.Player, err)
			}
			total++
		}
	}

	s.logger.Infof("Actuals backfill complete: %d rows for %s", total, gameDate)
}

// RefreshLineups re-scrapes lines and goalie status for today's teams
func (s *FetcherService) RefreshLineups() {
	today := time.Now().UTC()
	matchups, err := s.schedule.GetMatchups(today)
	if err != nil {
		s.logger.Errorf("Lineup refresh failed to fetch schedule: %v", err)
		return
	}

	teams := make(map[string]bool)
	for _, m := range matchups {
		teams[m.Away] = true
		teams[m.Home] = true
	}

	for team := range teams {
		if _, err := s.lineups.GetTeamLineup(team); err != nil {
			s.logger.Warnf("Lineup refresh failed for %s: %v", team, err)
		}
	}

	s.logger.Infof("Lineup refresh complete for %d teams", len(teams))
}

// GetFetchStatus returns the current status of the fetcher
func (s *FetcherService) GetFetchStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	return map[string]interface{}{
		"is_running":     s.isRunning,
		"fetch_interval": s.fetchInterval.String(),
		"next_runs":      nextRuns,
		"cron_jobs":      len(entries),
	}
}
