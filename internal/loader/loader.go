package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/puckshotz/prop-stop/internal/hockey"
)

// Table is a normalized in-memory spreadsheet: headers lower-cased and
// trimmed, cell values trimmed, rows keyed by header
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// HasColumn reports whether a normalized column is present
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// firstColumn returns the first of the candidate columns present, or ""
func (t *Table) firstColumn(candidates ...string) string {
	for _, c := range candidates {
		if t.HasColumn(c) {
			return c
		}
	}
	return ""
}

// ParseReport counts what row validation kept and dropped
type ParseReport struct {
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

// ParseTable reads an uploaded .xlsx or .csv file into a Table. Format is
// chosen by filename extension, matching what the upload form accepts.
func ParseTable(r io.Reader, filename string) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return parseXLSX(r)
	}
	return parseCSV(r)
}

func parseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return tableFromRows(rows)
}

func parseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows handled below

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rows = append(rows, record)
	}

	return tableFromRows(rows)
}

func tableFromRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	columns := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	table := &Table{Columns: columns}
	for _, raw := range rows[1:] {
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(raw) {
				row[col] = strings.TrimSpace(raw[i])
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Roster extracts roster entries from a skaters table. The player column
// may be "name" or "player" depending on the export; team is required.
func Roster(t *Table) ([]hockey.RosterEntry, error) {
	playerCol := t.firstColumn("name", "player")
	if playerCol == "" {
		return nil, fmt.Errorf("skaters table missing player column (need %q or %q)", "name", "player")
	}
	teamCol := t.firstColumn("team")
	if teamCol == "" {
		return nil, fmt.Errorf("skaters table missing %q column", "team")
	}
	posCol := t.firstColumn("position", "pos")

	var roster []hockey.RosterEntry
	for _, row := range t.Rows {
		player := row[playerCol]
		team := row[teamCol]
		if player == "" || team == "" {
			continue
		}
		entry := hockey.RosterEntry{
			Player: player,
			Team:   hockey.NormalizeTeam(team),
		}
		if posCol != "" {
			entry.Position = strings.ToUpper(row[posCol])
		}
		roster = append(roster, entry)
	}

	return roster, nil
}

// StatRecords extracts per-game stat rows from a shots table. Rows with a
// missing player, missing game id, or a stat value that is not a
// non-negative integer are dropped and counted, never passed downstream.
func StatRecords(t *Table) ([]hockey.StatRecord, *ParseReport, error) {
	playerCol := t.firstColumn("player", "name")
	if playerCol == "" {
		return nil, nil, fmt.Errorf("shots table missing player column (need %q or %q)", "player", "name")
	}
	gameCol := t.firstColumn("game_id", "game id", "gameid")
	if gameCol == "" {
		return nil, nil, fmt.Errorf("shots table missing game id column")
	}
	statCol := t.firstColumn("sog", "shots_on_goal", "shots on goal")
	if statCol == "" {
		return nil, nil, fmt.Errorf("shots table missing stat column (need %q)", "sog")
	}
	teamCol := t.firstColumn("team")

	report := &ParseReport{}
	var records []hockey.StatRecord
	for _, row := range t.Rows {
		player := row[playerCol]
		gameID := row[gameCol]
		value, err := strconv.Atoi(row[statCol])
		if player == "" || gameID == "" || err != nil || value < 0 {
			report.Dropped++
			continue
		}

		rec := hockey.StatRecord{
			Player: player,
			GameID: gameID,
			Value:  value,
		}
		if teamCol != "" {
			rec.Team = hockey.NormalizeTeam(row[teamCol])
		}
		records = append(records, rec)
		report.Accepted++
	}

	return records, report, nil
}

// LineUsages extracts line-pairing rows from a lines table. Games and SOG
// against default to zero when the cell is not numeric, matching how the
// source sheet treats blanks.
func LineUsages(t *Table) ([]hockey.LineUsage, error) {
	pairingCol := t.firstColumn("line pairings", "pairing", "line")
	if pairingCol == "" {
		return nil, fmt.Errorf("lines table missing %q column", "line pairings")
	}
	teamCol := t.firstColumn("team")
	if teamCol == "" {
		return nil, fmt.Errorf("lines table missing %q column", "team")
	}
	gamesCol := t.firstColumn("games")
	sogCol := t.firstColumn("sog against", "sog_against")

	var lines []hockey.LineUsage
	for _, row := range t.Rows {
		pairing := row[pairingCol]
		team := row[teamCol]
		if pairing == "" || team == "" {
			continue
		}
		entry := hockey.LineUsage{
			Pairing: pairing,
			Team:    hockey.NormalizeTeam(team),
		}
		if gamesCol != "" {
			entry.Games, _ = strconv.Atoi(row[gamesCol])
		}
		if sogCol != "" {
			entry.SOGAgainst, _ = strconv.Atoi(row[sogCol])
		}
		lines = append(lines, entry)
	}

	return lines, nil
}

// Injuries extracts injury rows. Only player and team are required; the
// descriptive columns are carried through when present.
func Injuries(t *Table) ([]hockey.InjuryReport, error) {
	playerCol := t.firstColumn("player", "name")
	if playerCol == "" {
		return nil, fmt.Errorf("injuries table missing player column (need %q or %q)", "player", "name")
	}
	teamCol := t.firstColumn("team")
	if teamCol == "" {
		return nil, fmt.Errorf("injuries table missing %q column", "team")
	}
	typeCol := t.firstColumn("injury type", "injury_type", "type")
	noteCol := t.firstColumn("injury note", "injury_note", "note")
	dateCol := t.firstColumn("date of injury", "date")

	var injuries []hockey.InjuryReport
	for _, row := range t.Rows {
		player := row[playerCol]
		team := row[teamCol]
		if player == "" || team == "" {
			continue
		}
		entry := hockey.InjuryReport{
			Player: player,
			Team:   hockey.NormalizeTeam(team),
		}
		if typeCol != "" {
			entry.InjuryType = row[typeCol]
		}
		if noteCol != "" {
			entry.Note = row[noteCol]
		}
		if dateCol != "" {
			entry.Date = row[dateCol]
		}
		injuries = append(injuries, entry)
	}

	return injuries, nil
}

// Teams extracts team rows, canonicalizing the code column
func Teams(t *Table) ([]hockey.TeamRecord, error) {
	codeCol := t.firstColumn("team", "abbrev", "code")
	if codeCol == "" {
		return nil, fmt.Errorf("teams table missing %q column", "team")
	}
	nameCol := t.firstColumn("name", "team name")

	var teams []hockey.TeamRecord
	for _, row := range t.Rows {
		code := row[codeCol]
		if code == "" {
			continue
		}
		entry := hockey.TeamRecord{Code: hockey.NormalizeTeam(code)}
		if nameCol != "" {
			entry.Name = row[nameCol]
		}
		teams = append(teams, entry)
	}

	return teams, nil
}
