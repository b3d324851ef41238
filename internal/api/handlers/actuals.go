package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/puckshotz/prop-stop/internal/models"
	"github.com/puckshotz/prop-stop/pkg/database"
	"github.com/puckshotz/prop-stop/pkg/utils"
)

type ActualsHandler struct {
	db *database.DB
}

func NewActualsHandler(db *database.DB) *ActualsHandler {
	return &ActualsHandler{db: db}
}

// GetActuals returns backfilled final SOG totals, optionally filtered by
// game date (defaults to yesterday, matching the backfill cadence)
func (h *ActualsHandler) GetActuals(c *gin.Context) {
	date := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	if q := c.Query("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			utils.SendValidationError(c, "Invalid date, expected YYYY-MM-DD", err.Error())
			return
		}
		date = parsed.Format("2006-01-02")
	}

	var results []models.ActualResult
	err := h.db.Where("game_date = ?", date).
		Order("actual_sog DESC").
		Find(&results).Error
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch actuals")
		return
	}

	utils.SendSuccess(c, gin.H{
		"date":    date,
		"results": results,
	})
}
