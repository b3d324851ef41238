package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/puckshotz/prop-stop/internal/api/handlers"
	"github.com/puckshotz/prop-stop/internal/api/middleware"
	"github.com/puckshotz/prop-stop/internal/hockey"
	"github.com/puckshotz/prop-stop/internal/services"
	"github.com/puckshotz/prop-stop/pkg/config"
	"github.com/puckshotz/prop-stop/pkg/database"
)

// Deps carries the wired services the routes depend on
type Deps struct {
	DB       *database.DB
	Config   *config.Config
	Logger   *logrus.Logger
	Cache    *services.CacheService
	Schedule hockey.ScheduleProvider
	Lineups  hockey.LineupProvider
	Runner   *services.RunnerService
	Fetcher  *services.FetcherService
	Ticker   *services.TickerService
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, deps Deps) {
	matchupHandler := handlers.NewMatchupHandler(deps.Schedule, deps.Fetcher)
	projectionHandler := handlers.NewProjectionHandler(deps.DB, deps.Runner)
	exportHandler := handlers.NewExportHandler(deps.DB)
	uploadHandler := handlers.NewUploadHandler(deps.DB, deps.Cache, deps.Config.MaxUploadBytes, deps.Logger)
	lineupHandler := handlers.NewLineupHandler(deps.Lineups)
	actualsHandler := handlers.NewActualsHandler(deps.DB)
	tickerHandler := handlers.NewTickerHandler(deps.Ticker)

	// Schedule endpoints
	group.GET("/matchups", matchupHandler.GetMatchups)
	group.POST("/matchups/refresh", matchupHandler.RefreshMatchups)

	// Projection endpoints
	group.GET("/matchups/:away/:home/projections", projectionHandler.GetMatchupProjections)
	group.POST("/projections/run", projectionHandler.RunSlate)
	group.GET("/projections/runs", projectionHandler.ListRuns)
	group.GET("/projections/runs/:id", projectionHandler.GetRun)
	group.GET("/projections/runs/:id/export", exportHandler.ExportRun)

	// Lineup and results endpoints
	group.GET("/lineups/:team", lineupHandler.GetTeamLineup)
	group.GET("/actuals", actualsHandler.GetActuals)

	// Live ticker backfill
	group.GET("/ticker/recent", tickerHandler.GetRecentEvents)

	// Authenticated upload endpoints
	auth := group.Group("")
	auth.Use(middleware.AuthRequired(deps.Config.JWTSecret))
	{
		auth.POST("/upload/:table", uploadHandler.Upload)
	}
}
