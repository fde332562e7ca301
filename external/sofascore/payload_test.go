package sofascore

import (
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/livescore/internal/domain/match"
)

const liveFixture = `{
  "events": [
    {
      "id": 123,
      "startTimestamp": 1770829200,
      "status": {"code": 6, "description": "1st half", "type": "inprogress"},
      "tournament": {"name": "Frauen-Bundesliga"},
      "homeTeam": {"name": "Alpha FC"},
      "awayTeam": {"name": "Beta FC"},
      "homeScore": {"current": 1},
      "awayScore": {"current": 0}
    }
  ]
}`

func decodeLive(t *testing.T, raw string) LivePayload {
	t.Helper()

	var payload LivePayload
	if err := sonic.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return payload
}

func TestParseLivePayload_ExtractsLiveMatch(t *testing.T) {
	rows := ParseLivePayload(decodeLive(t, liveFixture), "2026-02-11T17:40:00Z")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.Provider != "sofascore" || row.ProviderMatchID != "123" {
		t.Fatalf("unexpected identity: %s/%s", row.Provider, row.ProviderMatchID)
	}
	if row.Status != match.StatusLive {
		t.Fatalf("unexpected status: %s", row.Status)
	}
	if row.HomeTeam != "Alpha FC" || row.AwayTeam != "Beta FC" {
		t.Fatalf("unexpected teams: %s vs %s", row.HomeTeam, row.AwayTeam)
	}
	if row.HomeScore == nil || *row.HomeScore != 1 || row.AwayScore == nil || *row.AwayScore != 0 {
		t.Fatalf("unexpected score: %s", match.FormatScore(row.HomeScore, row.AwayScore))
	}
	if row.Competition != "Frauen-Bundesliga" {
		t.Fatalf("unexpected competition: %s", row.Competition)
	}
	if row.LastUpdatedUTC != "2026-02-11T17:40:00Z" {
		t.Fatalf("row should carry the fetch time, got %s", row.LastUpdatedUTC)
	}
	if row.StartTimeUTC == "" {
		t.Fatal("start timestamp should convert to an ISO string")
	}
}

func TestParseLivePayload_SkipsEventsWithoutTeams(t *testing.T) {
	payload := decodeLive(t, liveFixture)
	payload.Events[0].AwayTeam.Name = ""

	if rows := ParseLivePayload(payload, ""); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestParseLivePayload_PrefersUniqueTournamentName(t *testing.T) {
	payload := decodeLive(t, liveFixture)
	payload.Events[0].Tournament.UniqueTournament.Name = "Bundesliga"

	rows := ParseLivePayload(payload, "")
	if rows[0].Competition != "Bundesliga" {
		t.Fatalf("unexpected competition: %s", rows[0].Competition)
	}
}

func TestMapStatus_CodeFallbacks(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{3, match.StatusScheduled},
		{7, match.StatusLive},
		{32, match.StatusLive},
		{100, match.StatusFinished},
		{120, match.StatusFinished},
		{999, match.StatusUnknown},
	}
	for _, tc := range cases {
		code := tc.code
		if got := mapStatus(eventStatus{Code: &code}); got != tc.want {
			t.Fatalf("code %d: expected %s, got %s", tc.code, tc.want, got)
		}
	}

	if got := mapStatus(eventStatus{Type: "finished"}); got != match.StatusFinished {
		t.Fatalf("unexpected status: %s", got)
	}
}
