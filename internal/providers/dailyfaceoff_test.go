package providers

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puckshotz/prop-stop/internal/hockey"
	"github.com/puckshotz/prop-stop/internal/services"
)

const lineupFixture = `
<html><body>
<section data-lineup="forwards">
  <div class="line" data-unit="L1">
    <span class="player">Matthew Knies</span>
    <span class="player">Auston Matthews</span>
    <span class="player">Mitch Marner</span>
  </div>
  <div class="line" data-unit="L2">
    <span class="player">Max Domi</span>
    <span class="player">John Tavares</span>
    <span class="player">William Nylander</span>
  </div>
</section>
<section data-lineup="defense">
  <div class="line" data-unit="D1">
    <span class="player">Morgan Rielly</span>
    <span class="player">Chris Tanev</span>
  </div>
</section>
<section data-lineup="goalies">
  <div class="goalie">
    <span class="player">Joseph Woll</span>
    <span class="status">Confirmed</span>
  </div>
</section>
</body></html>`

func TestParseLineup(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(lineupFixture))
	require.NoError(t, err)

	lineup := ParseLineup(doc, "TOR")

	require.Len(t, lineup.Lines, 3)
	assert.Equal(t, "L1", lineup.Lines[0].Unit)
	assert.Equal(t, []string{"Matthew Knies", "Auston Matthews", "Mitch Marner"}, lineup.Lines[0].Players)
	assert.Equal(t, "D1", lineup.Lines[2].Unit)
	assert.Len(t, lineup.Lines[2].Players, 2)

	assert.Equal(t, "Joseph Woll", lineup.Goalie.Goalie)
	assert.Equal(t, "confirmed", lineup.Goalie.Confirmation)
	assert.Equal(t, "TOR", lineup.Goalie.Team)
}

func TestParseLineupEmptyDocument(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)

	lineup := ParseLineup(doc, "BOS")

	assert.Empty(t, lineup.Lines)
	assert.Empty(t, lineup.Goalie.Goalie)
}

func TestNormalizeConfirmation(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Confirmed", "confirmed"},
		{" likely ", "likely"},
		{"Projected", "likely"},
		{"???", "unconfirmed"},
		{"", "unconfirmed"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeConfirmation(tt.input), "input %q", tt.input)
	}
}

func TestGetTeamLineupUnknownTeam(t *testing.T) {
	client := NewDailyFaceoffClient(fakeCache{}, nil, 0)

	_, err := client.GetTeamLineup("XXX")
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

// keyedCache serves one cached lineup and records the requested key
type keyedCache struct {
	key       string
	lineup    hockey.TeamLineup
	lastKey   string
	lastStore string
}

func (c *keyedCache) SetSimple(key string, value interface{}, expiration time.Duration) error {
	c.lastStore = key
	return nil
}

func (c *keyedCache) GetSimple(key string, dest interface{}) error {
	c.lastKey = key
	if key != c.key {
		return assert.AnError
	}
	*(dest.(*hockey.TeamLineup)) = c.lineup
	return nil
}

func TestGetTeamLineupUsesSharedCacheKey(t *testing.T) {
	want := hockey.TeamLineup{
		Team:   "NJD",
		Goalie: hockey.GoalieStatus{Team: "NJD", Goalie: "Jacob Markstrom", Confirmation: "confirmed"},
	}
	cache := &keyedCache{key: services.LineupCacheKey("NJD"), lineup: want}
	client := NewDailyFaceoffClient(cache, logrus.New(), time.Second)

	// Alias resolves to the canonical code before the key is formed
	got, err := client.GetTeamLineup("nj")
	require.NoError(t, err)

	assert.Equal(t, services.LineupCacheKey("NJD"), cache.lastKey)
	assert.Equal(t, want.Goalie.Goalie, got.Goalie.Goalie)
}
