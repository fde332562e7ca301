package espn

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/riskibarqy/livescore/internal/domain/match"
)

// The scoreboard clock reads like "77'" or "90'+4".
var clockPattern = regexp.MustCompile(`(\d+)(?:\+(\d+))?`)

type ScoreboardPayload struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	League struct {
		Name string `json:"name"`
	} `json:"league"`
	Competitions []eventCompetition `json:"competitions"`
}

type eventCompetition struct {
	StartDate   string       `json:"startDate"`
	Competitors []competitor `json:"competitors"`
	Status      eventStatus  `json:"status"`
	Venue       struct {
		FullName string `json:"fullName"`
	} `json:"venue"`
	Notes []struct {
		Headline string `json:"headline"`
	} `json:"notes"`
}

type competitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     struct {
		DisplayName string `json:"displayName"`
	} `json:"team"`
}

type eventStatus struct {
	DisplayClock string `json:"displayClock"`
	Type         struct {
		Name        string `json:"name"`
		State       string `json:"state"`
		Description string `json:"description"`
		ShortDetail string `json:"shortDetail"`
	} `json:"type"`
}

// ParseScoreboard flattens scoreboard events into provider rows. The feed
// has no per-match update timestamp, so rows carry the fetch time instead.
func ParseScoreboard(payload ScoreboardPayload, fetchedAtUTC string) []match.ProviderRow {
	rows := make([]match.ProviderRow, 0, len(payload.Events))

	for _, event := range payload.Events {
		if len(event.Competitions) == 0 {
			continue
		}
		competition := event.Competitions[0]

		home, away, ok := resolveSides(competition.Competitors)
		if !ok {
			continue
		}

		var minute, extra *int
		if clock := clockPattern.FindStringSubmatch(competition.Status.DisplayClock); clock != nil {
			minute = atoiPtr(clock[1])
			extra = atoiPtr(clock[2])
		}

		league := event.League.Name
		if league == "" && len(competition.Notes) > 0 {
			league = competition.Notes[0].Headline
		}

		startTime := competition.StartDate
		if startTime == "" {
			startTime = event.Date
		}

		statusType := competition.Status.Type
		rawStatus := statusType.Name
		if rawStatus == "" {
			rawStatus = statusType.Description
		}

		rows = append(rows, match.ProviderRow{
			Provider:        ProviderName,
			ProviderMatchID: event.ID,
			Competition:     league,
			HomeTeam:        home.Team.DisplayName,
			AwayTeam:        away.Team.DisplayName,
			HomeScore:       atoiPtr(home.Score),
			AwayScore:       atoiPtr(away.Score),
			Status:          mapStatus(statusType.Name, statusType.State, statusType.Description, statusType.ShortDetail),
			RawStatus:       rawStatus,
			Period:          statusType.Description,
			Minute:          minute,
			ExtraMinute:     extra,
			StartTimeUTC:    startTime,
			LastUpdatedUTC:  fetchedAtUTC,
			Venue:           competition.Venue.FullName,
			Discrepancies:   []string{},
		})
	}
	return rows
}

// resolveSides prefers the explicit homeAway tags and falls back to feed
// order when they are missing.
func resolveSides(competitors []competitor) (competitor, competitor, bool) {
	var home, away *competitor
	for i := range competitors {
		switch competitors[i].HomeAway {
		case "home":
			home = &competitors[i]
		case "away":
			away = &competitors[i]
		}
	}
	if home != nil && away != nil {
		return *home, *away, true
	}
	if len(competitors) >= 2 {
		return competitors[0], competitors[1], true
	}
	return competitor{}, competitor{}, false
}

func mapStatus(name, state, description, shortDetail string) string {
	haystack := strings.ToLower(name + " " + state + " " + description + " " + shortDetail)

	switch {
	case strings.Contains(haystack, "postponed"):
		return match.StatusPostponed
	case strings.Contains(haystack, "canceled"), strings.Contains(haystack, "cancelled"):
		return match.StatusCancelled
	case strings.ToLower(state) == "in":
		return match.StatusLive
	case strings.ToLower(state) == "post":
		return match.StatusFinished
	case strings.ToLower(state) == "pre":
		return match.StatusScheduled
	default:
		return match.StatusUnknown
	}
}

func atoiPtr(value string) *int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &parsed
}
