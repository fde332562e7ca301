package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/livescore/internal/domain/match"
	"github.com/riskibarqy/livescore/internal/platform/logging"
	"github.com/riskibarqy/livescore/internal/usecase"
	"github.com/stretchr/testify/require"
)

type staticProvider struct {
	name string
	rows []match.ProviderRow
}

func (p staticProvider) Name() string { return p.name }

func (p staticProvider) FetchMatches(context.Context) ([]match.ProviderRow, error) {
	return p.rows, nil
}

func newTestRouter(t *testing.T, goalRows []match.ProviderRow) http.Handler {
	t.Helper()

	svc := usecase.NewLiveScoreService(
		staticProvider{name: "goal", rows: goalRows},
		staticProvider{name: "espn"},
		staticProvider{name: "sofascore"},
		staticProvider{name: "streamed"},
		time.Minute,
		180,
		logging.NewNop(),
	)
	return NewRouter(NewHandler(svc, logging.NewNop()), logging.NewNop(), []string{"*"})
}

func scoreOf(v int) *int { return &v }

func TestHandler_Healthz(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "ok", data["status"])
}

func TestHandler_GetLiveScores(t *testing.T) {
	now := match.UTCNowISO()
	router := newTestRouter(t, []match.ProviderRow{
		{
			Provider:        "goal",
			ProviderMatchID: "g-1",
			Competition:     "Premier League",
			HomeTeam:        "Arsenal",
			AwayTeam:        "Chelsea",
			HomeScore:       scoreOf(2),
			AwayScore:       scoreOf(1),
			Status:          match.StatusLive,
			LastUpdatedUTC:  now,
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/live-scores?status=all&source=goal", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		APIVersion string         `json:"apiVersion"`
		Data       liveScoresData `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "2.0", body.APIVersion)
	require.Equal(t, 1, body.Data.Count)
	require.Len(t, body.Data.Matches, 1)
	require.Equal(t, "Arsenal", body.Data.Matches[0].HomeTeam)
	require.Equal(t, "all", body.Data.Filters.Status)
	require.Equal(t, "goal", body.Data.Filters.Source)
	require.True(t, body.Data.Providers["goal"].OK)
}

func TestHandler_GetLiveScores_UnknownStatusIsBadRequest(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/live-scores?status=halftime", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "INVALID_ARGUMENT", errObj["status"])
}

func TestHandler_GetLiveScores_BoolFlagsAreLenient(t *testing.T) {
	old := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	router := newTestRouter(t, []match.ProviderRow{
		{
			Provider:        "goal",
			ProviderMatchID: "g-1",
			HomeTeam:        "Milan",
			AwayTeam:        "Inter",
			HomeScore:       scoreOf(0),
			AwayScore:       scoreOf(0),
			Status:          match.StatusLive,
			LastUpdatedUTC:  old,
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/live-scores?include_stale=yes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data liveScoresData `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Data.Count)
	require.True(t, body.Data.Matches[0].IsStale)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/live-scores?include_stale=nope", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 0, body.Data.Count)
	require.Equal(t, 1, body.Data.Quality.DroppedStaleCount)
}
