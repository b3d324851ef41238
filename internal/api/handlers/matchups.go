package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/puckshotz/prop-stop/internal/hockey"
	"github.com/puckshotz/prop-stop/internal/services"
	"github.com/puckshotz/prop-stop/pkg/utils"
)

type MatchupHandler struct {
	schedule hockey.ScheduleProvider
	fetcher  *services.FetcherService
}

func NewMatchupHandler(schedule hockey.ScheduleProvider, fetcher *services.FetcherService) *MatchupHandler {
	return &MatchupHandler{
		schedule: schedule,
		fetcher:  fetcher,
	}
}

// GetMatchups returns the slate for a date (today by default)
func (h *MatchupHandler) GetMatchups(c *gin.Context) {
	date := time.Now().UTC()
	if q := c.Query("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			utils.SendValidationError(c, "Invalid date, expected YYYY-MM-DD", err.Error())
			return
		}
		date = parsed
	}

	matchups, err := h.schedule.GetMatchups(date)
	if err != nil {
		utils.SendUpstreamError(c, "Failed to fetch schedule")
		return
	}

	utils.SendSuccess(c, gin.H{
		"date":     date.Format("2006-01-02"),
		"matchups": matchups,
	})
}

// RefreshMatchups forces a schedule refresh outside the cron cadence
func (h *MatchupHandler) RefreshMatchups(c *gin.Context) {
	h.fetcher.RefreshSchedule()
	utils.SendSuccess(c, h.fetcher.GetFetchStatus())
}
