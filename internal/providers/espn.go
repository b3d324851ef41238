package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/puckshotz/prop-stop/internal/hockey"
)

const espnBaseURL = "https://site.api.espn.com/apis/site/v2/sports/hockey/nhl"

// ESPNClient fetches NHL schedule and boxscore data
type ESPNClient struct {
	baseURL    string
	httpClient *http.Client
	cache      hockey.CacheProvider
	logger     *logrus.Logger
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// NewESPNClient creates a new ESPN API client. Requests are rate limited to
// requestsPerSecond and routed through a circuit breaker that opens after
// breakerThreshold consecutive failures.
func NewESPNClient(cache hockey.CacheProvider, logger *logrus.Logger, timeout time.Duration, requestsPerSecond, breakerThreshold int) *ESPNClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "espn",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(breakerThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &ESPNClient{
		baseURL:    espnBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		breaker:    breaker,
	}
}

// ESPN API response structures
type espnScoreboardResponse struct {
	Events []struct {
		ID           string `json:"id"`
		Date         string `json:"date"`
		Competitions []struct {
			Status struct {
				Type struct {
					State     string `json:"state"`
					Completed bool   `json:"completed"`
				} `json:"type"`
			} `json:"status"`
			Competitors []struct {
				HomeAway string `json:"homeAway"`
				Team     struct {
					Abbreviation string `json:"abbreviation"`
				} `json:"team"`
			} `json:"competitors"`
		} `json:"competitions"`
	} `json:"events"`
}

type espnSummaryResponse struct {
	Boxscore struct {
		Players []struct {
			Team struct {
				Abbreviation string `json:"abbreviation"`
			} `json:"team"`
			Statistics []struct {
				Name     string   `json:"name"`
				Keys     []string `json:"keys"`
				Athletes []struct {
					Athlete struct {
						DisplayName string `json:"displayName"`
					} `json:"athlete"`
					Stats []string `json:"stats"`
				} `json:"athletes"`
			} `json:"statistics"`
		} `json:"players"`
	} `json:"boxscore"`
}

// GetMatchups fetches the scoreboard for a date and returns its games with
// canonicalized team codes
func (c *ESPNClient) GetMatchups(date time.Time) ([]hockey.Matchup, error) {
	dateStr := date.Format("20060102")
	cacheKey := fmt.Sprintf("espn:scoreboard:%s", dateStr)

	var cached []hockey.Matchup
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	url := fmt.Sprintf("%s/scoreboard?dates=%s", c.baseURL, dateStr)
	var scoreboard espnScoreboardResponse
	if err := c.makeRequest(url, &scoreboard); err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard: %w", err)
	}

	var matchups []hockey.Matchup
	for _, event := range scoreboard.Events {
		if len(event.Competitions) == 0 {
			continue
		}
		comp := event.Competitions[0]

		m := hockey.Matchup{
			GameID: event.ID,
			State:  comp.Status.Type.State,
		}
		if start, err := time.Parse("2006-01-02T15:04Z", event.Date); err == nil {
			m.StartTime = start
		}
		for _, competitor := range comp.Competitors {
			code := hockey.NormalizeTeam(competitor.Team.Abbreviation)
			if competitor.HomeAway == "home" {
				m.Home = code
			} else {
				m.Away = code
			}
		}
		if m.Home == "" || m.Away == "" {
			c.logger.Warnf("Skipping event %s with incomplete competitors", event.ID)
			continue
		}
		matchups = append(matchups, m)
	}

	// Cache for 5 minutes; the slate rarely changes but game states do
	if len(matchups) > 0 {
		c.cache.SetSimple(cacheKey, matchups, 5*time.Minute)
	}

	return matchups, nil
}

// GetBoxscoreStats pulls per-skater SOG from a game summary. Goalie groups
// are skipped; rows without a shotsOnGoal entry are ignored.
func (c *ESPNClient) GetBoxscoreStats(gameID string) ([]hockey.StatRecord, error) {
	url := fmt.Sprintf("%s/summary?event=%s", c.baseURL, gameID)
	var summary espnSummaryResponse
	if err := c.makeRequest(url, &summary); err != nil {
		return nil, fmt.Errorf("failed to fetch summary for game %s: %w", gameID, err)
	}

	var records []hockey.StatRecord
	for _, teamBlock := range summary.Boxscore.Players {
		team := hockey.NormalizeTeam(teamBlock.Team.Abbreviation)

		for _, group := range teamBlock.Statistics {
			if group.Name == "goalies" {
				continue
			}
			sogIdx := -1
			for i, key := range group.Keys {
				if key == "shotsOnGoal" {
					sogIdx = i
					break
				}
			}
			if sogIdx < 0 {
				continue
			}

			for _, athlete := range group.Athletes {
				if sogIdx >= len(athlete.Stats) {
					continue
				}
				sog, err := strconv.Atoi(athlete.Stats[sogIdx])
				if err != nil || sog < 0 {
					continue
				}
				records = append(records, hockey.StatRecord{
					Player: athlete.Athlete.DisplayName,
					Team:   team,
					GameID: gameID,
					Value:  sog,
				})
			}
		}
	}

	return records, nil
}

// makeRequest performs a rate-limited request through the circuit breaker
func (c *ESPNClient) makeRequest(url string, target interface{}) error {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Get(url)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		return nil, json.NewDecoder(resp.Body).Decode(target)
	})
	return err
}
