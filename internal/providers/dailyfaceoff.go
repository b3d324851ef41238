package providers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/puckshotz/prop-stop/internal/hockey"
	"github.com/puckshotz/prop-stop/internal/services"
)

const dailyFaceoffBaseURL = "https://www.dailyfaceoff.com"

// ErrUnknownTeam means the code has no known lineup page
var ErrUnknownTeam = errors.New("no lineup page known for team")

// teamSlugs maps canonical codes to Daily Faceoff URL slugs
var teamSlugs = map[string]string{
	"ANA": "anaheim-ducks", "BOS": "boston-bruins", "BUF": "buffalo-sabres",
	"CAR": "carolina-hurricanes", "CBJ": "columbus-blue-jackets",
	"CGY": "calgary-flames", "CHI": "chicago-blackhawks",
	"COL": "colorado-avalanche", "DAL": "dallas-stars",
	"DET": "detroit-red-wings", "EDM": "edmonton-oilers",
	"FLA": "florida-panthers", "LAK": "los-angeles-kings",
	"MIN": "minnesota-wild", "MTL": "montreal-canadiens",
	"NJD": "new-jersey-devils", "NSH": "nashville-predators",
	"NYI": "new-york-islanders", "NYR": "new-york-rangers",
	"OTT": "ottawa-senators", "PHI": "philadelphia-flyers",
	"PIT": "pittsburgh-penguins", "SEA": "seattle-kraken",
	"SJS": "san-jose-sharks", "STL": "st-louis-blues",
	"TBL": "tampa-bay-lightning", "TOR": "toronto-maple-leafs",
	"UTA": "utah-hockey-club", "VAN": "vancouver-canucks",
	"VGK": "vegas-golden-knights", "WPG": "winnipeg-jets",
	"WSH": "washington-capitals",
}

// DailyFaceoffClient scrapes line combinations and goalie status
type DailyFaceoffClient struct {
	baseURL    string
	httpClient *http.Client
	cache      hockey.CacheProvider
	logger     *logrus.Logger
}

// NewDailyFaceoffClient creates a new lineup scraper
func NewDailyFaceoffClient(cache hockey.CacheProvider, logger *logrus.Logger, timeout time.Duration) *DailyFaceoffClient {
	return &DailyFaceoffClient{
		baseURL:    dailyFaceoffBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		logger:     logger,
	}
}

// GetTeamLineup fetches and parses the line combination page for a team
func (c *DailyFaceoffClient) GetTeamLineup(team string) (*hockey.TeamLineup, error) {
	code := hockey.NormalizeTeam(team)
	slug, ok := teamSlugs[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTeam, code)
	}

	cacheKey := services.LineupCacheKey(code)
	var cached hockey.TeamLineup
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return &cached, nil
	}

	url := fmt.Sprintf("%s/teams/%s/line-combinations", c.baseURL, slug)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "prop-stop/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lineup page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lineup page: %w", err)
	}

	lineup := ParseLineup(doc, code)
	c.cache.SetSimple(cacheKey, lineup, 30*time.Minute)

	return lineup, nil
}

// ParseLineup extracts line slots and goalie status from a lineup document.
// Split from the fetch so the parser contract can be pinned by fixture
// tests; the site's markup is the only thing that breaks here.
func ParseLineup(doc *goquery.Document, team string) *hockey.TeamLineup {
	lineup := &hockey.TeamLineup{
		Team:      team,
		FetchedAt: time.Now().UTC(),
	}

	doc.Find(`section[data-lineup="forwards"] .line, section[data-lineup="defense"] .line, section[data-lineup="powerplay"] .line`).
		Each(func(i int, sel *goquery.Selection) {
			unit, _ := sel.Attr("data-unit")
			slot := hockey.LineSlot{Unit: unit}
			sel.Find(".player").Each(func(j int, p *goquery.Selection) {
				name := strings.TrimSpace(p.Text())
				if name != "" {
					slot.Players = append(slot.Players, name)
				}
			})
			if len(slot.Players) > 0 {
				lineup.Lines = append(lineup.Lines, slot)
			}
		})

	goalieSel := doc.Find(`section[data-lineup="goalies"] .goalie`).First()
	if goalieSel.Length() > 0 {
		lineup.Goalie = hockey.GoalieStatus{
			Team:         team,
			Goalie:       strings.TrimSpace(goalieSel.Find(".player").First().Text()),
			Confirmation: normalizeConfirmation(goalieSel.Find(".status").First().Text()),
		}
	}

	return lineup
}

func normalizeConfirmation(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confirmed":
		return "confirmed"
	case "likely", "projected":
		return "likely"
	default:
		return "unconfirmed"
	}
}
