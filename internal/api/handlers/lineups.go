package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/puckshotz/prop-stop/internal/hockey"
	"github.com/puckshotz/prop-stop/internal/providers"
	"github.com/puckshotz/prop-stop/pkg/utils"
)

type LineupHandler struct {
	lineups hockey.LineupProvider
}

func NewLineupHandler(lineups hockey.LineupProvider) *LineupHandler {
	return &LineupHandler{lineups: lineups}
}

// GetTeamLineup returns the scraped line combinations and goalie status
func (h *LineupHandler) GetTeamLineup(c *gin.Context) {
	team := hockey.NormalizeTeam(c.Param("team"))

	lineup, err := h.lineups.GetTeamLineup(team)
	if err != nil {
		if errors.Is(err, providers.ErrUnknownTeam) {
			utils.SendNotFound(c, "Unknown team code: "+team)
			return
		}
		utils.SendUpstreamError(c, "Failed to fetch lineup")
		return
	}

	utils.SendSuccess(c, lineup)
}
