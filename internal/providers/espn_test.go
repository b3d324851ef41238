package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an always-miss cache for provider tests
type fakeCache struct{}

func (fakeCache) SetSimple(key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (fakeCache) GetSimple(key string, dest interface{}) error {
	return assert.AnError
}

func newTestESPNClient(serverURL string) *ESPNClient {
	client := NewESPNClient(fakeCache{}, logrus.New(), 5*time.Second, 100, 5)
	client.baseURL = serverURL
	return client
}

const scoreboardFixture = `{
  "events": [
    {
      "id": "401559001",
      "date": "2026-01-15T00:00Z",
      "competitions": [
        {
          "status": {"type": {"state": "pre", "completed": false}},
          "competitors": [
            {"homeAway": "home", "team": {"abbreviation": "TOR"}},
            {"homeAway": "away", "team": {"abbreviation": "NJ"}}
          ]
        }
      ]
    },
    {
      "id": "401559002",
      "date": "2026-01-15T02:00Z",
      "competitions": [
        {
          "status": {"type": {"state": "in", "completed": false}},
          "competitors": [
            {"homeAway": "home", "team": {"abbreviation": "LA"}},
            {"homeAway": "away", "team": {"abbreviation": "SJ"}}
          ]
        }
      ]
    }
  ]
}`

const summaryFixture = `{
  "boxscore": {
    "players": [
      {
        "team": {"abbreviation": "TOR"},
        "statistics": [
          {
            "name": "forwards",
            "keys": ["goals", "assists", "shotsOnGoal"],
            "athletes": [
              {"athlete": {"displayName": "Auston Matthews"}, "stats": ["1", "0", "6"]},
              {"athlete": {"displayName": "William Nylander"}, "stats": ["0", "2", "3"]}
            ]
          },
          {
            "name": "goalies",
            "keys": ["saves"],
            "athletes": [
              {"athlete": {"displayName": "Goalie Guy"}, "stats": ["30"]}
            ]
          }
        ]
      }
    ]
  }
}`

func TestGetMatchups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scoreboard", r.URL.Path)
		assert.Equal(t, "20260115", r.URL.Query().Get("dates"))
		w.Write([]byte(scoreboardFixture))
	}))
	defer server.Close()

	client := newTestESPNClient(server.URL)
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	matchups, err := client.GetMatchups(date)
	require.NoError(t, err)
	require.Len(t, matchups, 2)

	assert.Equal(t, "NJD", matchups[0].Away) // short form normalized
	assert.Equal(t, "TOR", matchups[0].Home)
	assert.Equal(t, "pre", matchups[0].State)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), matchups[0].StartTime)

	assert.Equal(t, "SJS", matchups[1].Away)
	assert.Equal(t, "LAK", matchups[1].Home)
	assert.Equal(t, "in", matchups[1].State)
}

func TestGetBoxscoreStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summary", r.URL.Path)
		assert.Equal(t, "401559001", r.URL.Query().Get("event"))
		w.Write([]byte(summaryFixture))
	}))
	defer server.Close()

	client := newTestESPNClient(server.URL)

	records, err := client.GetBoxscoreStats("401559001")
	require.NoError(t, err)
	require.Len(t, records, 2) // goalie group skipped

	assert.Equal(t, "Auston Matthews", records[0].Player)
	assert.Equal(t, 6, records[0].Value)
	assert.Equal(t, "TOR", records[0].Team)
	assert.Equal(t, "401559001", records[0].GameID)
}

func TestMakeRequestBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestESPNClient(server.URL)

	_, err := client.GetMatchups(time.Now())
	assert.Error(t, err)
}

func TestCircuitBreakerOpens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewESPNClient(fakeCache{}, logrus.New(), time.Second, 100, 2)
	client.baseURL = server.URL

	for i := 0; i < 3; i++ {
		client.GetMatchups(time.Now())
	}

	// Breaker is open now; the error should come back without a request
	_, err := client.GetMatchups(time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}
