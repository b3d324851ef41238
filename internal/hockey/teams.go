package hockey

import "strings"

// teamAbbrevMap maps ESPN abbreviations to the canonical codes used by the
// uploaded stat tables. Most codes match; the four short forms do not.
var teamAbbrevMap = map[string]string{
	"NJ": "NJD", "LA": "LAK", "SJ": "SJS", "TB": "TBL",
	"ARI": "ARI", "ANA": "ANA", "BOS": "BOS", "BUF": "BUF",
	"CAR": "CAR", "CBJ": "CBJ", "CGY": "CGY", "CHI": "CHI",
	"COL": "COL", "DAL": "DAL", "DET": "DET", "EDM": "EDM",
	"FLA": "FLA", "MIN": "MIN", "MTL": "MTL", "NSH": "NSH",
	"NYI": "NYI", "NYR": "NYR", "OTT": "OTT", "PHI": "PHI",
	"PIT": "PIT", "SEA": "SEA", "STL": "STL", "TOR": "TOR",
	"UTA": "UTA", "VAN": "VAN", "VGK": "VGK", "WSH": "WSH",
	"WPG": "WPG",
}

// NormalizeTeam maps an inconsistent team abbreviation to its canonical
// code. Unknown codes pass through upper-cased rather than failing, so a
// new franchise doesn't break the schedule fetch.
func NormalizeTeam(abbrev string) string {
	code := strings.ToUpper(strings.TrimSpace(abbrev))
	if canonical, ok := teamAbbrevMap[code]; ok {
		return canonical
	}
	return code
}
