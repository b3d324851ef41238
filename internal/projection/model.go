package projection

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/puckshotz/prop-stop/internal/hockey"
)

// minRateFloor keeps the Poisson rate away from a degenerate zero
const minRateFloor = 0.01

// Params holds the model's tunable constants. The defaults are the
// hand-tuned values the projections were calibrated with.
type Params struct {
	WeightL10 float64 `json:"weight_l10"`
	WeightL5  float64 `json:"weight_l5"`
	WeightL3  float64 `json:"weight_l3"`
	Line      float64 `json:"line"`      // probability threshold: P(X >= Line)
	MinGames  int     `json:"min_games"` // data-sufficiency cutoff
}

// DefaultParams returns the standard blend: a long L10 baseline with recent
// form pulling the estimate, and a 3-shot line.
func DefaultParams() Params {
	return Params{
		WeightL10: 0.55,
		WeightL5:  0.30,
		WeightL3:  0.15,
		Line:      3.0,
		MinGames:  3,
	}
}

// Projection is one player's model output for a matchup
type Projection struct {
	Player       string  `json:"player"`
	Team         string  `json:"team"`
	Projected    float64 `json:"projected"`      // blended λ, rounded to 2dp
	ProbOver     float64 `json:"prob_over"`      // raw P(X >= line), 0-1
	ProbOverPct  float64 `json:"prob_over_pct"`  // percentage, rounded to 1dp
	PlayableOdds string  `json:"playable_odds"`  // American odds implied by ProbOver
	Signal       string  `json:"signal"`         // "Strong", "Moderate", "Weak"
	SeasonAvg    float64 `json:"season_avg"`
	TrendScore   float64 `json:"trend_score"`
	Last5        []int   `json:"last5"`
	Last10       []int   `json:"last10"`
}

// Project computes a projection for every roster player on teamA or teamB
// with enough history. Players with no matching history, or fewer grouped
// games than params.MinGames, are silently excluded; partial data must
// never block a run. Pure function of its inputs.
func Project(roster []hockey.RosterEntry, history []hockey.StatRecord, teamA, teamB string, params Params) []Projection {
	grouped := groupByPlayer(history)

	seen := make(map[string]bool)
	var results []Projection
	for _, entry := range roster {
		if entry.Team != teamA && entry.Team != teamB {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(entry.Player))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		series := gameSeries(grouped[key])
		if len(series) < params.MinGames {
			continue
		}

		l3 := trailingMean(series, 3)
		l5 := trailingMean(series, 5)
		l10 := trailingMean(series, 10)

		lambda := params.WeightL10*l10 + params.WeightL5*l5 + params.WeightL3*l3
		prob := SurvivalProb(lambda, params.Line)

		trend := 0.0
		if l10 > 0 {
			trend = (l5 - l10) / l10
		}

		results = append(results, Projection{
			Player:       entry.Player,
			Team:         entry.Team,
			Projected:    round(lambda, 2),
			ProbOver:     prob,
			ProbOverPct:  round(prob*100, 1),
			PlayableOdds: americanOdds(prob),
			Signal:       classifySignal(prob),
			SeasonAvg:    round(mean(series), 2),
			TrendScore:   round(trend, 3),
			Last5:        tail(series, 5),
			Last10:       tail(series, 10),
		})
	}

	return results
}

// SurvivalProb returns P(X >= line) for X ~ Poisson(max(lambda, floor)).
// The floor avoids a degenerate zero-rate distribution.
func SurvivalProb(lambda, line float64) float64 {
	dist := distuv.Poisson{Lambda: math.Max(lambda, minRateFloor)}
	return 1 - dist.CDF(line-1)
}

// groupByPlayer indexes history rows by lower-cased player name, preserving
// source order within each player
func groupByPlayer(history []hockey.StatRecord) map[string][]hockey.StatRecord {
	grouped := make(map[string][]hockey.StatRecord)
	for _, rec := range history {
		key := strings.ToLower(strings.TrimSpace(rec.Player))
		if key == "" {
			continue
		}
		grouped[key] = append(grouped[key], rec)
	}
	return grouped
}

// gameSeries collapses a player's records into one total per game, in the
// order games first appear. A player can have multiple raw rows per game
// (period splits, corrections) that must be summed before use.
func gameSeries(records []hockey.StatRecord) []int {
	totals := make(map[string]int)
	var order []string
	for _, rec := range records {
		if _, ok := totals[rec.GameID]; !ok {
			order = append(order, rec.GameID)
		}
		totals[rec.GameID] += rec.Value
	}

	series := make([]int, 0, len(order))
	for _, gameID := range order {
		series = append(series, totals[gameID])
	}
	return series
}

// trailingMean averages the last n values, or all values if fewer exist
func trailingMean(series []int, n int) float64 {
	return mean(tail(series, n))
}

func tail(series []int, n int) []int {
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// classifySignal buckets the over probability into play-strength bands
func classifySignal(prob float64) string {
	switch {
	case prob >= 0.70:
		return "Strong"
	case prob >= 0.55:
		return "Moderate"
	default:
		return "Weak"
	}
}

// americanOdds converts a probability to the American odds a book would
// have to post for the over to break even. Clamped so extreme
// probabilities don't produce absurd numbers.
func americanOdds(prob float64) string {
	p := math.Min(math.Max(prob, 0.001), 0.999)
	var odds float64
	if p >= 0.5 {
		odds = -100 * (p / (1 - p))
	} else {
		odds = 100 * ((1 - p) / p)
	}
	if odds > 0 {
		return fmt.Sprintf("+%d", int(odds))
	}
	return fmt.Sprintf("%d", int(odds))
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
