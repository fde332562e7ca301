package goal

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/livescore/internal/domain/match"
)

var nextDataPattern = regexp.MustCompile(`(?s)<script id="__NEXT_DATA__" type="application/json">(.*?)</script>`)

type nextData struct {
	Props struct {
		PageProps struct {
			Content struct {
				LiveScores []competitionBlock `json:"liveScores"`
			} `json:"content"`
		} `json:"pageProps"`
	} `json:"props"`
}

type competitionBlock struct {
	Competition struct {
		Name string `json:"name"`
	} `json:"competition"`
	Matches []liveMatch `json:"matches"`
}

type liveMatch struct {
	ID            flexibleID  `json:"id"`
	Status        string      `json:"status"`
	StartDate     string      `json:"startDate"`
	LastUpdatedAt string      `json:"lastUpdatedAt"`
	CachedAt      string      `json:"cachedAt"`
	TeamA         teamBlock   `json:"teamA"`
	TeamB         teamBlock   `json:"teamB"`
	Score         scoreBlock  `json:"score"`
	Period        periodBlock `json:"period"`
	Venue         struct {
		Name string `json:"name"`
	} `json:"venue"`
}

type teamBlock struct {
	Name  string `json:"name"`
	Short string `json:"short"`
}

type scoreBlock struct {
	TeamA *json.Number `json:"teamA"`
	TeamB *json.Number `json:"teamB"`
}

type periodBlock struct {
	Type   string       `json:"type"`
	Minute *json.Number `json:"minute"`
	Extra  *json.Number `json:"extra"`
}

// flexibleID tolerates both string and numeric match ids.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		*f = flexibleID(unquoted)
		return nil
	}
	*f = flexibleID(text)
	return nil
}

// ParseLiveScoresHTML pulls the __NEXT_DATA__ script out of the page and
// flattens its per-competition match blocks into provider rows.
func ParseLiveScoresHTML(html string) ([]match.ProviderRow, error) {
	found := nextDataPattern.FindStringSubmatch(html)
	if found == nil {
		return nil, fmt.Errorf("goal payload did not include __NEXT_DATA__")
	}

	var payload nextData
	if err := sonic.Unmarshal([]byte(found[1]), &payload); err != nil {
		return nil, fmt.Errorf("parse goal __NEXT_DATA__: %w", err)
	}

	rows := make([]match.ProviderRow, 0, 32)
	for _, block := range payload.Props.PageProps.Content.LiveScores {
		for _, item := range block.Matches {
			lastUpdated := item.LastUpdatedAt
			if lastUpdated == "" {
				lastUpdated = item.CachedAt
			}

			rows = append(rows, match.ProviderRow{
				Provider:        ProviderName,
				ProviderMatchID: string(item.ID),
				Competition:     block.Competition.Name,
				HomeTeam:        firstNonEmpty(item.TeamA.Name, item.TeamA.Short),
				AwayTeam:        firstNonEmpty(item.TeamB.Name, item.TeamB.Short),
				HomeScore:       toIntPtr(item.Score.TeamA),
				AwayScore:       toIntPtr(item.Score.TeamB),
				Status:          mapStatus(item.Status),
				RawStatus:       item.Status,
				Period:          item.Period.Type,
				Minute:          toIntPtr(item.Period.Minute),
				ExtraMinute:     toIntPtr(item.Period.Extra),
				StartTimeUTC:    item.StartDate,
				LastUpdatedUTC:  lastUpdated,
				Venue:           item.Venue.Name,
				Discrepancies:   []string{},
			})
		}
	}
	return rows, nil
}

func mapStatus(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "LIVE":
		return match.StatusLive
	case "RESULT":
		return match.StatusFinished
	case "FIXTURE":
		return match.StatusScheduled
	case "POSTPONED":
		return match.StatusPostponed
	case "CANCELLED":
		return match.StatusCancelled
	default:
		return match.StatusUnknown
	}
}

func toIntPtr(value *json.Number) *int {
	if value == nil {
		return nil
	}
	parsed, err := value.Int64()
	if err != nil {
		return nil
	}
	out := int(parsed)
	return &out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
