package streamed

import (
	"strconv"
	"strings"

	"github.com/riskibarqy/livescore/internal/domain/match"
)

type ListedMatch struct {
	ID       flexibleID `json:"id"`
	Title    string     `json:"title"`
	Category string     `json:"category"`
	// Date is epoch milliseconds.
	Date  int64 `json:"date"`
	Teams struct {
		Home *namedTeam `json:"home"`
		Away *namedTeam `json:"away"`
	} `json:"teams"`
}

type namedTeam struct {
	Name string `json:"name"`
}

// flexibleID tolerates both slug and numeric match ids.
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

// ParseLivePayload keeps only football listings and turns each into a
// discovery row: no score, unknown status, a watch URL when the listing has
// an id. Team names fall back to splitting the "X vs Y" title.
func ParseLivePayload(payload []ListedMatch, baseURL, fetchedAtUTC string) []match.ProviderRow {
	if fetchedAtUTC == "" {
		fetchedAtUTC = match.UTCNowISO()
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	rows := make([]match.ProviderRow, 0, len(payload))
	for _, item := range payload {
		if !strings.EqualFold(strings.TrimSpace(item.Category), "football") {
			continue
		}

		homeTeam := ""
		awayTeam := ""
		if item.Teams.Home != nil {
			homeTeam = item.Teams.Home.Name
		}
		if item.Teams.Away != nil {
			awayTeam = item.Teams.Away.Name
		}
		if homeTeam == "" || awayTeam == "" {
			if left, right, ok := strings.Cut(item.Title, " vs "); ok {
				if homeTeam == "" {
					homeTeam = strings.TrimSpace(left)
				}
				if awayTeam == "" {
					awayTeam = strings.TrimSpace(right)
				}
			}
		}

		watchURL := ""
		if item.ID != "" {
			watchURL = baseURL + "/watch/" + string(item.ID)
		}

		rows = append(rows, match.ProviderRow{
			Provider:        ProviderName,
			ProviderMatchID: string(item.ID),
			HomeTeam:        homeTeam,
			AwayTeam:        awayTeam,
			Status:          match.StatusUnknown,
			StartTimeUTC:    match.EpochMillisToISOUTC(item.Date),
			LastUpdatedUTC:  fetchedAtUTC,
			WatchURL:        watchURL,
			Discrepancies:   []string{},
		})
	}
	return rows
}
