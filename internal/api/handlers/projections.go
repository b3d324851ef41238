package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/puckshotz/prop-stop/internal/hockey"
	"github.com/puckshotz/prop-stop/internal/models"
	"github.com/puckshotz/prop-stop/internal/services"
	"github.com/puckshotz/prop-stop/pkg/database"
	"github.com/puckshotz/prop-stop/pkg/utils"
)

type ProjectionHandler struct {
	db     *database.DB
	runner *services.RunnerService
}

func NewProjectionHandler(db *database.DB, runner *services.RunnerService) *ProjectionHandler {
	return &ProjectionHandler{
		db:     db,
		runner: runner,
	}
}

// GetMatchupProjections projects one away/home pair on demand
func (h *ProjectionHandler) GetMatchupProjections(c *gin.Context) {
	away := hockey.NormalizeTeam(c.Param("away"))
	home := hockey.NormalizeTeam(c.Param("home"))

	params := h.runner.Params()
	if q := c.Query("line"); q != "" {
		line, err := strconv.ParseFloat(q, 64)
		if err != nil || line <= 0 {
			utils.SendValidationError(c, "Invalid line, expected a positive number", q)
			return
		}
		params.Line = line
	}

	results, err := h.runner.RunMatchup(away, home, params)
	if err != nil {
		if errors.Is(err, services.ErrNoRoster) {
			utils.SendValidationError(c, err.Error(), "")
			return
		}
		utils.SendInternalError(c, "Projection failed")
		return
	}

	utils.SendSuccess(c, gin.H{
		"away":        away,
		"home":        home,
		"line":        params.Line,
		"projections": results,
	})
}

// RunSlate projects every matchup on the slate and saves the run
func (h *ProjectionHandler) RunSlate(c *gin.Context) {
	var req struct {
		Date string   `json:"date"`
		Line *float64 `json:"line"`
	}
	// Empty body means "today at the default line"
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.SendValidationError(c, "Invalid request body", err.Error())
			return
		}
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			utils.SendValidationError(c, "Invalid date, expected YYYY-MM-DD", err.Error())
			return
		}
		date = parsed
	}

	params := h.runner.Params()
	if req.Line != nil {
		if *req.Line <= 0 {
			utils.SendValidationError(c, "Invalid line, expected a positive number", "")
			return
		}
		params.Line = *req.Line
	}

	run, err := h.runner.RunAll(date, params)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoGames), errors.Is(err, services.ErrEmptyRun):
			utils.SendValidationError(c, err.Error(), "")
		default:
			utils.SendInternalError(c, "Failed to run projections")
		}
		return
	}

	utils.SendSuccess(c, run)
}

// ListRuns returns saved runs, newest first
func (h *ProjectionHandler) ListRuns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var total int64
	if err := h.db.Model(&models.ProjectionRun{}).Count(&total).Error; err != nil {
		utils.SendInternalError(c, "Failed to count runs")
		return
	}

	var runs []models.ProjectionRun
	err := h.db.Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&runs).Error
	if err != nil {
		utils.SendInternalError(c, "Failed to list runs")
		return
	}

	utils.SendSuccessWithMeta(c, runs, &utils.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
	})
}

// GetRun returns one saved run with its projection rows
func (h *ProjectionHandler) GetRun(c *gin.Context) {
	var run models.ProjectionRun
	err := h.db.Preload("Projections").First(&run, "id = ?", c.Param("id")).Error
	if err != nil {
		utils.SendNotFound(c, "Run not found")
		return
	}

	utils.SendSuccess(c, run)
}
