package sofascore

import (
	"strconv"
	"strings"

	"github.com/riskibarqy/livescore/internal/domain/match"
)

type LivePayload struct {
	Events []liveEvent `json:"events"`
}

type liveEvent struct {
	ID         int64 `json:"id"`
	Tournament struct {
		Name             string `json:"name"`
		UniqueTournament struct {
			Name string `json:"name"`
		} `json:"uniqueTournament"`
	} `json:"tournament"`
	HomeTeam       namedTeam   `json:"homeTeam"`
	AwayTeam       namedTeam   `json:"awayTeam"`
	HomeScore      scoreState  `json:"homeScore"`
	AwayScore      scoreState  `json:"awayScore"`
	Status         eventStatus `json:"status"`
	StartTimestamp int64       `json:"startTimestamp"`
}

type namedTeam struct {
	Name string `json:"name"`
}

type scoreState struct {
	Current *int `json:"current"`
}

type eventStatus struct {
	Code        *int   `json:"code"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ParseLivePayload flattens live events into provider rows. The feed has no
// per-event update timestamp; rows carry the fetch time.
func ParseLivePayload(payload LivePayload, fetchedAtUTC string) []match.ProviderRow {
	if fetchedAtUTC == "" {
		fetchedAtUTC = match.UTCNowISO()
	}

	rows := make([]match.ProviderRow, 0, len(payload.Events))
	for _, event := range payload.Events {
		if event.HomeTeam.Name == "" || event.AwayTeam.Name == "" {
			continue
		}

		competition := event.Tournament.UniqueTournament.Name
		if competition == "" {
			competition = event.Tournament.Name
		}

		rows = append(rows, match.ProviderRow{
			Provider:        ProviderName,
			ProviderMatchID: strconv.FormatInt(event.ID, 10),
			Competition:     competition,
			HomeTeam:        event.HomeTeam.Name,
			AwayTeam:        event.AwayTeam.Name,
			HomeScore:       cloneIntPtr(event.HomeScore.Current),
			AwayScore:       cloneIntPtr(event.AwayScore.Current),
			Status:          mapStatus(event.Status),
			RawStatus:       event.Status.Description,
			// Minute formats vary across competitions; keep period text only.
			Period:         event.Status.Description,
			StartTimeUTC:   match.EpochSecondsToISOUTC(event.StartTimestamp),
			LastUpdatedUTC: fetchedAtUTC,
			Discrepancies:  []string{},
		})
	}
	return rows
}

func mapStatus(status eventStatus) string {
	haystack := strings.ToLower(status.Type + " " + status.Description)

	switch {
	case strings.Contains(haystack, "inprogress"):
		return match.StatusLive
	case strings.Contains(haystack, "finished"):
		return match.StatusFinished
	case strings.Contains(haystack, "postponed"):
		return match.StatusPostponed
	case strings.Contains(haystack, "cancel"):
		return match.StatusCancelled
	}

	if status.Code != nil {
		switch code := *status.Code; {
		case code >= 1 && code <= 5:
			return match.StatusScheduled
		case (code >= 6 && code <= 10) || (code >= 31 && code <= 33):
			return match.StatusLive
		case code == 100 || code == 120:
			return match.StatusFinished
		}
	}
	return match.StatusUnknown
}

func cloneIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
