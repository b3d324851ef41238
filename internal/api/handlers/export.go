package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/puckshotz/prop-stop/internal/models"
	"github.com/puckshotz/prop-stop/pkg/database"
	"github.com/puckshotz/prop-stop/pkg/utils"
)

type ExportHandler struct {
	db *database.DB
}

func NewExportHandler(db *database.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

// ExportRun streams a saved run as a CSV download
func (h *ExportHandler) ExportRun(c *gin.Context) {
	var run models.ProjectionRun
	err := h.db.Preload("Projections").First(&run, "id = ?", c.Param("id")).Error
	if err != nil {
		utils.SendNotFound(c, "Run not found")
		return
	}

	data, err := runToCSV(&run)
	if err != nil {
		utils.SendInternalError(c, "Failed to build export")
		return
	}

	filename := fmt.Sprintf("sog_projections_%s.csv", run.GameDate)
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

func runToCSV(run *models.ProjectionRun) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"matchup", "player", "team", "projected_sog", "prob_over_pct",
		"playable_odds", "signal", "season_avg", "trend_score", "last5", "last10",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, p := range run.Projections {
		row := []string{
			p.Matchup,
			p.Player,
			p.Team,
			strconv.FormatFloat(p.Projected, 'f', 2, 64),
			strconv.FormatFloat(p.ProbOverPct, 'f', 1, 64),
			p.PlayableOdds,
			p.Signal,
			strconv.FormatFloat(p.SeasonAvg, 'f', 2, 64),
			strconv.FormatFloat(p.TrendScore, 'f', 3, 64),
			string(p.Last5),
			string(p.Last10),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
