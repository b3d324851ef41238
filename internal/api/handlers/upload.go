package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/puckshotz/prop-stop/internal/loader"
	"github.com/puckshotz/prop-stop/internal/models"
	"github.com/puckshotz/prop-stop/pkg/database"
	"github.com/puckshotz/prop-stop/pkg/utils"
)

// ProjectionInvalidator drops derived projection cache entries after the
// data they were computed from changes
type ProjectionInvalidator interface {
	DeletePattern(pattern string) error
}

type UploadHandler struct {
	db       *database.DB
	cache    ProjectionInvalidator
	maxBytes int64
	logger   *logrus.Logger
}

func NewUploadHandler(db *database.DB, cache ProjectionInvalidator, maxBytes int64, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		db:       db,
		cache:    cache,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

var uploadTables = map[string]bool{
	"skaters":  true,
	"shots":    true,
	"goalies":  true,
	"lines":    true,
	"teams":    true,
	"injuries": true,
}

// Upload ingests one of the spreadsheet tables from a CSV or XLSX file.
// Skaters, goalies, lines, teams, and injuries uploads replace the stored
// table; a shots upload appends to the history in file order. Uploads that
// change model inputs invalidate cached projections.
func (h *UploadHandler) Upload(c *gin.Context) {
	table := c.Param("table")
	if !uploadTables[table] {
		utils.SendValidationError(c, "Unknown table, expected one of skaters, shots, goalies, lines, teams, injuries", table)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.SendValidationError(c, "Missing file field", err.Error())
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		utils.SendValidationError(c, fmt.Sprintf("File exceeds %d byte limit", h.maxBytes), header.Filename)
		return
	}

	parsed, err := loader.ParseTable(file, header.Filename)
	if err != nil {
		utils.SendValidationError(c, "Failed to parse file", err.Error())
		return
	}

	switch table {
	case "skaters":
		h.uploadSkaters(c, parsed, header.Filename)
	case "shots":
		h.uploadShots(c, parsed, header.Filename)
	case "goalies":
		h.uploadGoalies(c, parsed, header.Filename)
	case "lines":
		h.uploadLines(c, parsed, header.Filename)
	case "teams":
		h.uploadTeams(c, parsed, header.Filename)
	case "injuries":
		h.uploadInjuries(c, parsed, header.Filename)
	}
}

// invalidateProjections drops cached projection results. Failures are
// logged only; a cold cache just re-computes.
func (h *UploadHandler) invalidateProjections() {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeletePattern("projections:*"); err != nil {
		h.logger.Warnf("Failed to invalidate cached projections: %v", err)
	}
}

func (h *UploadHandler) uploadSkaters(c *gin.Context, t *loader.Table, filename string) {
	roster, err := loader.Roster(t)
	if err != nil {
		utils.SendValidationError(c, "Invalid skaters table", err.Error())
		return
	}
	if len(roster) == 0 {
		utils.SendValidationError(c, "Skaters table has no usable rows", filename)
		return
	}

	teams := make(map[string]bool)
	skaters := make([]models.Skater, 0, len(roster))
	for _, entry := range roster {
		teams[entry.Team] = true
		skaters = append(skaters, models.Skater{
			Player:   entry.Player,
			Team:     entry.Team,
			Position: entry.Position,
		})
	}

	teamList := make([]string, 0, len(teams))
	for team := range teams {
		teamList = append(teamList, team)
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team IN ?", teamList).Delete(&models.Skater{}).Error; err != nil {
			return err
		}
		return tx.Create(&skaters).Error
	})
	if err != nil {
		h.logger.Errorf("Skaters upload failed: %v", err)
		utils.SendInternalError(c, "Failed to save skaters")
		return
	}

	h.invalidateProjections()

	utils.SendSuccess(c, gin.H{
		"table":    "skaters",
		"accepted": len(skaters),
		"teams":    teamList,
	})
}

func (h *UploadHandler) uploadShots(c *gin.Context, t *loader.Table, filename string) {
	records, report, err := loader.StatRecords(t)
	if err != nil {
		utils.SendValidationError(c, "Invalid shots table", err.Error())
		return
	}
	if len(records) == 0 {
		utils.SendValidationError(c, "Shots table has no usable rows", filename)
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var maxSeq int
		row := tx.Model(&models.StatRecord{}).Select("COALESCE(MAX(sequence), 0)").Row()
		if err := row.Scan(&maxSeq); err != nil {
			return err
		}

		rows := make([]models.StatRecord, 0, len(records))
		for i, rec := range records {
			rows = append(rows, models.StatRecord{
				Player:   rec.Player,
				Team:     rec.Team,
				GameID:   rec.GameID,
				Value:    rec.Value,
				Source:   "upload",
				Sequence: maxSeq + i + 1,
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		h.logger.Errorf("Shots upload failed: %v", err)
		utils.SendInternalError(c, "Failed to save shot records")
		return
	}

	h.invalidateProjections()

	utils.SendSuccess(c, gin.H{
		"table":    "shots",
		"accepted": report.Accepted,
		"dropped":  report.Dropped,
	})
}

// Goalie sheets carry the same name/team columns as skaters
func (h *UploadHandler) uploadGoalies(c *gin.Context, t *loader.Table, filename string) {
	roster, err := loader.Roster(t)
	if err != nil {
		utils.SendValidationError(c, "Invalid goalies table", err.Error())
		return
	}
	if len(roster) == 0 {
		utils.SendValidationError(c, "Goalies table has no usable rows", filename)
		return
	}

	goalies := make([]models.Goalie, 0, len(roster))
	for _, entry := range roster {
		goalies = append(goalies, models.Goalie{
			Player: entry.Player,
			Team:   entry.Team,
		})
	}

	if err := replaceTable(h.db, &models.Goalie{}, &goalies); err != nil {
		h.logger.Errorf("Goalies upload failed: %v", err)
		utils.SendInternalError(c, "Failed to save goalies")
		return
	}

	utils.SendSuccess(c, gin.H{"table": "goalies", "accepted": len(goalies)})
}

func (h *UploadHandler) uploadLines(c *gin.Context, t *loader.Table, filename string) {
	usages, err := loader.LineUsages(t)
	if err != nil {
		utils.SendValidationError(c, "Invalid lines table", err.Error())
		return
	}
	if len(usages) == 0 {
		utils.SendValidationError(c, "Lines table has no usable rows", filename)
		return
	}

	rows := make([]models.LineUsage, 0, len(usages))
	for _, u := range usages {
		rows = append(rows, models.LineUsage{
			Pairing:    u.Pairing,
			Team:       u.Team,
			Games:      u.Games,
			SOGAgainst: u.SOGAgainst,
		})
	}

	if err := replaceTable(h.db, &models.LineUsage{}, &rows); err != nil {
		h.logger.Errorf("Lines upload failed: %v", err)
		utils.SendInternalError(c, "Failed to save line data")
		return
	}

	utils.SendSuccess(c, gin.H{"table": "lines", "accepted": len(rows)})
}

func (h *UploadHandler) uploadTeams(c *gin.Context, t *loader.Table, filename string) {
	teams, err := loader.Teams(t)
	if err != nil {
		utils.SendValidationError(c, "Invalid teams table", err.Error())
		return
	}
	if len(teams) == 0 {
		utils.SendValidationError(c, "Teams table has no usable rows", filename)
		return
	}

	rows := make([]models.TeamInfo, 0, len(teams))
	for _, team := range teams {
		rows = append(rows, models.TeamInfo{
			Code: team.Code,
			Name: team.Name,
		})
	}

	if err := replaceTable(h.db, &models.TeamInfo{}, &rows); err != nil {
		h.logger.Errorf("Teams upload failed: %v", err)
		utils.SendInternalError(c, "Failed to save teams")
		return
	}

	utils.SendSuccess(c, gin.H{"table": "teams", "accepted": len(rows)})
}

func (h *UploadHandler) uploadInjuries(c *gin.Context, t *loader.Table, filename string) {
	injuries, err := loader.Injuries(t)
	if err != nil {
		utils.SendValidationError(c, "Invalid injuries table", err.Error())
		return
	}
	if len(injuries) == 0 {
		utils.SendValidationError(c, "Injuries table has no usable rows", filename)
		return
	}

	rows := make([]models.Injury, 0, len(injuries))
	for _, inj := range injuries {
		rows = append(rows, models.Injury{
			Player:     inj.Player,
			Team:       inj.Team,
			InjuryType: inj.InjuryType,
			Note:       inj.Note,
			Date:       inj.Date,
		})
	}

	if err := replaceTable(h.db, &models.Injury{}, &rows); err != nil {
		h.logger.Errorf("Injuries upload failed: %v", err)
		utils.SendInternalError(c, "Failed to save injuries")
		return
	}

	utils.SendSuccess(c, gin.H{"table": "injuries", "accepted": len(rows)})
}

// replaceTable swaps a full reference table for its replacement upload
func replaceTable(db *database.DB, model interface{}, rows interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
		return tx.Create(rows).Error
	})
}
