package handlers

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/puckshotz/prop-stop/internal/models"
)

func TestRunToCSV(t *testing.T) {
	run := &models.ProjectionRun{
		ID:       "run-1",
		GameDate: "2026-01-15",
		Line:     3.0,
		Projections: []models.SavedProjection{
			{
				Matchup:      "NJD@BOS",
				Player:       "Jack Hughes",
				Team:         "NJD",
				Projected:    4.25,
				ProbOverPct:  71.3,
				PlayableOdds: "-248",
				Signal:       "Strong",
				SeasonAvg:    4.1,
				TrendScore:   0.05,
				Last5:        datatypes.JSON([]byte("[4,3,5,2,6]")),
				Last10:       datatypes.JSON([]byte("[4,3,5,2,6,4,3,5,4,7]")),
			},
		},
	}

	data, err := runToCSV(run)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "matchup", rows[0][0])
	assert.Equal(t, "NJD@BOS", rows[1][0])
	assert.Equal(t, "Jack Hughes", rows[1][1])
	assert.Equal(t, "4.25", rows[1][3])
	assert.Equal(t, "71.3", rows[1][4])
	assert.Equal(t, "-248", rows[1][5])
	assert.Equal(t, "[4,3,5,2,6]", rows[1][9])
}

func TestRunToCSVEmptyRun(t *testing.T) {
	data, err := runToCSV(&models.ProjectionRun{ID: "run-2", GameDate: "2026-01-15"})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
