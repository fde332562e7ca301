package usecase

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/livescore/internal/domain/match"
	"github.com/riskibarqy/livescore/internal/platform/logging"
)

type stubProvider struct {
	name  string
	rows  []match.ProviderRow
	err   error
	calls atomic.Int32
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) FetchMatches(context.Context) ([]match.ProviderRow, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.rows, nil
}

func intPtr(v int) *int { return &v }

func liveRow(provider, id, home, away string, homeScore, awayScore int, lastUpdated string) match.ProviderRow {
	return match.ProviderRow{
		Provider:        provider,
		ProviderMatchID: id,
		Competition:     "Premier League",
		HomeTeam:        home,
		AwayTeam:        away,
		HomeScore:       intPtr(homeScore),
		AwayScore:       intPtr(awayScore),
		Status:          match.StatusLive,
		StartTimeUTC:    "2026-08-23T14:00:00Z",
		LastUpdatedUTC:  lastUpdated,
	}
}

func newTestService(goal, espn, sofa, streamed *stubProvider, maxLiveStale float64) *LiveScoreService {
	return NewLiveScoreService(goal, espn, sofa, streamed, time.Minute, maxLiveStale, logging.NewNop())
}

func emptyProvider(name string) *stubProvider {
	return &stubProvider{name: name}
}

func TestLiveScoreService_Scores_DefaultsToLiveOnly(t *testing.T) {
	t.Parallel()

	now := match.UTCNowISO()
	finished := liveRow("goal", "g-2", "Milan", "Inter", 0, 2, now)
	finished.Status = match.StatusFinished

	goal := &stubProvider{name: "goal", rows: []match.ProviderRow{
		liveRow("goal", "g-1", "Arsenal", "Chelsea", 2, 1, now),
		finished,
	}}
	svc := newTestService(goal, emptyProvider("espn"), emptyProvider("sofascore"), emptyProvider("streamed"), 180)

	result, err := svc.Scores(t.Context(), ScoresQuery{})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}

	if result.Count != 1 {
		t.Fatalf("expected 1 live match, got %d", result.Count)
	}
	if result.Matches[0].Status != match.StatusLive {
		t.Fatalf("unexpected status: %s", result.Matches[0].Status)
	}
	if result.Filters.Status != "live" || result.Filters.Source != "all" {
		t.Fatalf("unexpected filter echo: %+v", result.Filters)
	}
}

func TestLiveScoreService_Scores_StatusSetAndSourceFilter(t *testing.T) {
	t.Parallel()

	now := match.UTCNowISO()
	finished := liveRow("goal", "g-2", "Milan", "Inter", 0, 2, now)
	finished.Status = match.StatusFinished

	goal := &stubProvider{name: "goal", rows: []match.ProviderRow{
		liveRow("goal", "g-1", "Arsenal", "Chelsea", 2, 1, now),
		finished,
	}}
	espn := &stubProvider{name: "espn", rows: []match.ProviderRow{
		liveRow("espn", "e-9", "Real Madrid", "Barcelona", 1, 1, now),
	}}
	svc := newTestService(goal, espn, emptyProvider("sofascore"), emptyProvider("streamed"), 180)

	all, err := svc.Scores(t.Context(), ScoresQuery{Status: "all"})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}
	if all.Count != 3 {
		t.Fatalf("expected 3 matches for status=all, got %d", all.Count)
	}

	set, err := svc.Scores(t.Context(), ScoresQuery{Status: "live,finished", Source: "goal"})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}
	if set.Count != 2 {
		t.Fatalf("expected 2 goal matches, got %d", set.Count)
	}
	for _, m := range set.Matches {
		if !m.HasSource("goal") {
			t.Fatalf("row without goal source leaked through: %+v", m.Sources)
		}
	}

	espnOnly, err := svc.Scores(t.Context(), ScoresQuery{Status: "all", Source: "espn"})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}
	if espnOnly.Count != 1 || espnOnly.Matches[0].HomeTeam != "Real Madrid" {
		t.Fatalf("unexpected espn-only result: %+v", espnOnly.Matches)
	}
}

func TestLiveScoreService_Scores_LeagueSubstringFilter(t *testing.T) {
	t.Parallel()

	now := match.UTCNowISO()
	laLiga := liveRow("goal", "g-2", "Real Madrid", "Barcelona", 1, 1, now)
	laLiga.Competition = "La Liga"

	goal := &stubProvider{name: "goal", rows: []match.ProviderRow{
		liveRow("goal", "g-1", "Arsenal", "Chelsea", 2, 1, now),
		laLiga,
	}}
	svc := newTestService(goal, emptyProvider("espn"), emptyProvider("sofascore"), emptyProvider("streamed"), 180)

	result, err := svc.Scores(t.Context(), ScoresQuery{League: "premier"})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}
	if result.Count != 1 || result.Matches[0].Competition != "Premier League" {
		t.Fatalf("league filter failed: %+v", result.Matches)
	}
}

func TestLiveScoreService_Scores_StaleLiveRowDroppedByDefault(t *testing.T) {
	t.Parallel()

	old := time.Now().UTC().Add(-20 * time.Minute).Format("2006-01-02T15:04:05Z07:00")
	goal := &stubProvider{name: "goal", rows: []match.ProviderRow{
		liveRow("goal", "g-1", "Arsenal", "Chelsea", 2, 1, old),
	}}
	svc := newTestService(goal, emptyProvider("espn"), emptyProvider("sofascore"), emptyProvider("streamed"), 60)

	dropped, err := svc.Scores(t.Context(), ScoresQuery{})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}
	if dropped.Count != 0 {
		t.Fatalf("stale row should be dropped, got %d rows", dropped.Count)
	}
	if dropped.Quality.DroppedStaleCount != 1 {
		t.Fatalf("expected 1 dropped stale row, got %d", dropped.Quality.DroppedStaleCount)
	}

	included, err := svc.Scores(t.Context(), ScoresQuery{IncludeStale: true})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}
	if included.Count != 1 {
		t.Fatalf("include_stale should serve the row, got %d rows", included.Count)
	}
	row := included.Matches[0]
	if !row.IsStale {
		t.Fatal("row should be marked stale")
	}
	if row.StalenessReason != "older_than_60_seconds" {
		t.Fatalf("unexpected staleness reason: %s", row.StalenessReason)
	}
	if row.LastUpdateAgeSeconds == nil || *row.LastUpdateAgeSeconds < 1100 {
		t.Fatalf("unexpected age annotation: %v", row.LastUpdateAgeSeconds)
	}
}

func TestLiveScoreService_Scores_MissingLastUpdateIsStale(t *testing.T) {
	t.Parallel()

	goal := &stubProvider{name: "goal", rows: []match.ProviderRow{
		liveRow("goal", "g-1", "Arsenal", "Chelsea", 2, 1, ""),
	}}
	svc := newTestService(goal, emptyProvider("espn"), emptyProvider("sofascore"), emptyProvider("streamed"), 60)

	result, err := svc.Scores(t.Context(), ScoresQuery{IncludeStale: true})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("expected 1 row, got %d", result.Count)
	}
	row := result.Matches[0]
	if !row.IsStale || row.StalenessReason != "missing_last_update" {
		t.Fatalf("unexpected staleness verdict: stale=%v reason=%s", row.IsStale, row.StalenessReason)
	}
	if row.LastUpdateAgeSeconds != nil {
		t.Fatalf("age should be absent, got %v", *row.LastUpdateAgeSeconds)
	}
}

func TestLiveScoreService_Scores_FinishedRowsNeverStale(t *testing.T) {
	t.Parallel()

	old := time.Now().UTC().Add(-2 * time.Hour).Format("2006-01-02T15:04:05Z07:00")
	finished := liveRow("goal", "g-1", "Milan", "Inter", 0, 2, old)
	finished.Status = match.StatusFinished

	goal := &stubProvider{name: "goal", rows: []match.ProviderRow{finished}}
	svc := newTestService(goal, emptyProvider("espn"), emptyProvider("sofascore"), emptyProvider("streamed"), 60)

	result, err := svc.Scores(t.Context(), ScoresQuery{Status: "finished"})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}
	if result.Count != 1 || result.Matches[0].IsStale {
		t.Fatalf("finished row wrongly gated: %+v", result.Matches)
	}
	if result.Quality.DroppedStaleCount != 0 {
		t.Fatalf("unexpected stale drop count: %d", result.Quality.DroppedStaleCount)
	}
}

func TestLiveScoreService_Scores_ConflictDroppedUnlessIncluded(t *testing.T) {
	t.Parallel()

	now := match.UTCNowISO()
	goal := &stubProvider{name: "goal", rows: []match.ProviderRow{
		liveRow("goal", "g-1", "Arsenal", "Chelsea", 2, 1, now),
	}}
	espn := &stubProvider{name: "espn", rows: []match.ProviderRow{
		liveRow("espn", "e-1", "Arsenal", "Chelsea", 1, 1, now),
	}}
	svc := newTestService(goal, espn, emptyProvider("sofascore"), emptyProvider("streamed"), 180)

	dropped, err := svc.Scores(t.Context(), ScoresQuery{})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}
	if dropped.Count != 0 {
		t.Fatalf("conflicted row should be dropped, got %d rows", dropped.Count)
	}
	if dropped.Quality.DroppedConflictCount != 1 {
		t.Fatalf("expected 1 dropped conflict, got %d", dropped.Quality.DroppedConflictCount)
	}

	included, err := svc.Scores(t.Context(), ScoresQuery{IncludeConflicts: true})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}
	if included.Count != 1 {
		t.Fatalf("include_conflicts should serve the row, got %d rows", included.Count)
	}
	row := included.Matches[0]
	if row.Verification != match.VerificationConflict {
		t.Fatalf("unexpected verification: %s", row.Verification)
	}
	if len(row.Discrepancies) != 1 || !strings.Contains(row.Discrepancies[0], "espn") {
		t.Fatalf("unexpected discrepancies: %v", row.Discrepancies)
	}
}

func TestLiveScoreService_Scores_FailingProviderIsIsolated(t *testing.T) {
	t.Parallel()

	now := match.UTCNowISO()
	goal := &stubProvider{name: "goal", rows: []match.ProviderRow{
		liveRow("goal", "g-1", "Arsenal", "Chelsea", 2, 1, now),
	}}
	espn := &stubProvider{name: "espn", err: errors.New("upstream timeout")}
	svc := newTestService(goal, espn, emptyProvider("sofascore"), emptyProvider("streamed"), 180)

	result, err := svc.Scores(t.Context(), ScoresQuery{Status: "all"})
	if err != nil {
		t.Fatalf("scores failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("goal rows should survive an espn failure, got %d rows", result.Count)
	}

	espnStatus := result.Providers["espn"]
	if espnStatus.OK || espnStatus.Error == "" {
		t.Fatalf("unexpected espn status: %+v", espnStatus)
	}
	goalStatus := result.Providers["goal"]
	if !goalStatus.OK || goalStatus.Count != 1 {
		t.Fatalf("unexpected goal status: %+v", goalStatus)
	}
}

func TestLiveScoreService_Scores_CachedSnapshotSkipsFetch(t *testing.T) {
	t.Parallel()

	now := match.UTCNowISO()
	goal := &stubProvider{name: "goal", rows: []match.ProviderRow{
		liveRow("goal", "g-1", "Arsenal", "Chelsea", 2, 1, now),
	}}
	svc := newTestService(goal, emptyProvider("espn"), emptyProvider("sofascore"), emptyProvider("streamed"), 180)

	for i := 0; i < 3; i++ {
		if _, err := svc.Scores(t.Context(), ScoresQuery{}); err != nil {
			t.Fatalf("scores failed: %v", err)
		}
	}
	if got := goal.calls.Load(); got != 1 {
		t.Fatalf("expected a single fetch across cached reads, got %d", got)
	}

	if _, err := svc.Scores(t.Context(), ScoresQuery{ForceRefresh: true}); err != nil {
		t.Fatalf("forced refresh failed: %v", err)
	}
	if got := goal.calls.Load(); got != 2 {
		t.Fatalf("forced refresh should fetch again, got %d calls", got)
	}
}

func TestLiveScoreService_Scores_RejectsUnknownFilters(t *testing.T) {
	t.Parallel()

	goal := emptyProvider("goal")
	svc := newTestService(goal, emptyProvider("espn"), emptyProvider("sofascore"), emptyProvider("streamed"), 180)

	if _, err := svc.Scores(t.Context(), ScoresQuery{Status: "halftime"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
	if _, err := svc.Scores(t.Context(), ScoresQuery{Source: "bbc"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown source, got %v", err)
	}
}
