package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/puckshotz/prop-stop/internal/services"
	"github.com/puckshotz/prop-stop/pkg/utils"
)

type TickerHandler struct {
	ticker *services.TickerService
}

func NewTickerHandler(ticker *services.TickerService) *TickerHandler {
	return &TickerHandler{ticker: ticker}
}

// GetRecentEvents returns the latest live SOG changes, newest first. Lets
// clients backfill after connecting to the websocket feed.
func (h *TickerHandler) GetRecentEvents(c *gin.Context) {
	if h.ticker == nil {
		utils.SendNotFound(c, "Live ticker is disabled")
		return
	}
	utils.SendSuccess(c, h.ticker.RecentEvents())
}
