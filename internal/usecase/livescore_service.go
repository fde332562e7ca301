package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/livescore/internal/domain/match"
	"github.com/riskibarqy/livescore/internal/platform/cache"
	"github.com/riskibarqy/livescore/internal/platform/logging"
)

const (
	snapshotCacheKey = "live-scores"

	DefaultMaxLiveStaleSeconds = 180.0
)

// Snapshot is one completed refresh cycle: the merged canonical list plus
// per-provider fetch status. Cached snapshots are shared across requests and
// must be treated as read-only; the quality gate annotates copies.
type Snapshot struct {
	GeneratedAtUTC string
	Matches        []match.Canonical
	Providers      map[string]ProviderStatus
}

// ScoresQuery carries the caller's filters. Zero values mean the defaults:
// live matches, every source, no league filter.
type ScoresQuery struct {
	Status           string
	Source           string
	League           string
	IncludeStale     bool
	IncludeConflicts bool
	ForceRefresh     bool
}

type ScoresFilters struct {
	Status string `json:"status"`
	Source string `json:"source"`
	League string `json:"league"`
}

type QualitySummary struct {
	MaxLiveStaleSeconds  float64 `json:"max_live_stale_seconds"`
	IncludeStale         bool    `json:"include_stale"`
	IncludeConflicts     bool    `json:"include_conflicts"`
	DroppedStaleCount    int     `json:"dropped_stale_count"`
	DroppedConflictCount int     `json:"dropped_conflict_count"`
}

type ScoresResult struct {
	GeneratedAtUTC string
	Matches        []match.Canonical
	Count          int
	Filters        ScoresFilters
	Quality        QualitySummary
	Providers      map[string]ProviderStatus
}

// LiveScoreService owns the refresh-and-cache cycle. The anchor provider
// seeds the canonical list; the others fold in via the fixed stage pipeline.
type LiveScoreService struct {
	anchor    MatchProvider
	espn      MatchProvider
	sofascore MatchProvider
	streamed  MatchProvider

	snapshots           *cache.Store
	maxLiveStaleSeconds float64
	logger              *logging.Logger
}

func NewLiveScoreService(
	anchor MatchProvider,
	espn MatchProvider,
	sofascore MatchProvider,
	streamed MatchProvider,
	cacheTTL time.Duration,
	maxLiveStaleSeconds float64,
	logger *logging.Logger,
) *LiveScoreService {
	if logger == nil {
		logger = logging.Default()
	}
	if maxLiveStaleSeconds <= 0 {
		maxLiveStaleSeconds = DefaultMaxLiveStaleSeconds
	}

	return &LiveScoreService{
		anchor:              anchor,
		espn:                espn,
		sofascore:           sofascore,
		streamed:            streamed,
		snapshots:           cache.NewStore(cacheTTL),
		maxLiveStaleSeconds: maxLiveStaleSeconds,
		logger:              logger,
	}
}

// Scores serves the most recent snapshot through the request filters and the
// quality gate, refreshing first when the cache expired or the caller forced
// it.
func (s *LiveScoreService) Scores(ctx context.Context, query ScoresQuery) (ScoresResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveScoreService.Scores")
	defer span.End()

	if s.anchor == nil || s.espn == nil || s.sofascore == nil || s.streamed == nil {
		return ScoresResult{}, fmt.Errorf("%w: live score providers are not fully configured", ErrDependencyUnavailable)
	}

	statuses, statusEcho, err := s.parseStatusFilter(query.Status)
	if err != nil {
		return ScoresResult{}, err
	}
	source, sourceEcho, err := s.parseSourceFilter(query.Source)
	if err != nil {
		return ScoresResult{}, err
	}
	league := strings.TrimSpace(query.League)

	snapshot, err := s.currentSnapshot(ctx, query.ForceRefresh)
	if err != nil {
		return ScoresResult{}, fmt.Errorf("%w: refresh snapshot: %v", ErrDependencyUnavailable, err)
	}

	filtered := filterMatches(snapshot.Matches, statuses, source, league)
	served, droppedStale, droppedConflict := s.applyQualityGate(
		filtered, snapshot.GeneratedAtUTC, query.IncludeStale, query.IncludeConflicts,
	)

	return ScoresResult{
		GeneratedAtUTC: snapshot.GeneratedAtUTC,
		Matches:        served,
		Count:          len(served),
		Filters: ScoresFilters{
			Status: statusEcho,
			Source: sourceEcho,
			League: league,
		},
		Quality: QualitySummary{
			MaxLiveStaleSeconds:  s.maxLiveStaleSeconds,
			IncludeStale:         query.IncludeStale,
			IncludeConflicts:     query.IncludeConflicts,
			DroppedStaleCount:    droppedStale,
			DroppedConflictCount: droppedConflict,
		},
		Providers: snapshot.Providers,
	}, nil
}

func (s *LiveScoreService) currentSnapshot(ctx context.Context, force bool) (Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveScoreService.currentSnapshot")
	defer span.End()

	if force {
		s.snapshots.Delete(ctx, snapshotCacheKey)
	}

	value, err := s.snapshots.GetOrLoad(ctx, snapshotCacheKey, func(loadCtx context.Context) (any, error) {
		return s.refresh(loadCtx)
	})
	if err != nil {
		return Snapshot{}, err
	}

	snapshot, ok := value.(Snapshot)
	if !ok {
		return Snapshot{}, fmt.Errorf("unexpected snapshot cache entry %T", value)
	}
	return snapshot, nil
}

// refresh fetches every provider in parallel and merges whatever arrived.
// A failing provider contributes zero rows and an error entry, never a
// failed refresh.
func (s *LiveScoreService) refresh(ctx context.Context) (Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveScoreService.refresh")
	defer span.End()

	providers := []MatchProvider{s.anchor, s.espn, s.sofascore, s.streamed}

	type fetchOutcome struct {
		name string
		rows []match.ProviderRow
		err  error
	}

	pool, err := ants.NewPool(len(providers))
	if err != nil {
		return Snapshot{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan fetchOutcome, len(providers))
	var workers sync.WaitGroup
	for _, provider := range providers {
		provider := provider
		workers.Add(1)
		if submitErr := pool.Submit(func() {
			defer workers.Done()
			rows, fetchErr := provider.FetchMatches(ctx)
			results <- fetchOutcome{name: provider.Name(), rows: rows, err: fetchErr}
		}); submitErr != nil {
			workers.Done()
			results <- fetchOutcome{name: provider.Name(), err: submitErr}
		}
	}
	workers.Wait()
	close(results)

	rowsBySource := make(map[string][]match.ProviderRow, len(providers))
	statuses := make(map[string]ProviderStatus, len(providers))
	for outcome := range results {
		if outcome.err != nil {
			s.logger.WarnContext(ctx, "provider fetch failed",
				"provider", outcome.name,
				"error", outcome.err,
			)
			statuses[outcome.name] = ProviderStatus{Error: outcome.err.Error()}
			continue
		}
		rowsBySource[outcome.name] = outcome.rows
		statuses[outcome.name] = ProviderStatus{OK: true, Count: len(outcome.rows)}
	}

	merged := match.Merge(s.anchor.Name(), rowsBySource[s.anchor.Name()], match.DefaultStages(
		rowsBySource[s.espn.Name()],
		rowsBySource[s.sofascore.Name()],
		rowsBySource[s.streamed.Name()],
	))

	s.logger.InfoContext(ctx, "snapshot refreshed",
		"matches", len(merged),
		"providers", len(providers),
	)

	return Snapshot{
		GeneratedAtUTC: match.UTCNowISO(),
		Matches:        merged,
		Providers:      statuses,
	}, nil
}

// parseStatusFilter turns a comma-separated status expression into a lookup
// set. An empty expression defaults to live matches; "all" or "*" disables
// the filter.
func (s *LiveScoreService) parseStatusFilter(raw string) (map[string]struct{}, string, error) {
	expression := strings.ToLower(strings.TrimSpace(raw))
	if expression == "" {
		expression = match.StatusLive
	}
	if expression == "all" || expression == "*" {
		return nil, expression, nil
	}

	wanted := make(map[string]struct{})
	for _, token := range strings.Split(expression, ",") {
		status := strings.TrimSpace(token)
		if status == "" {
			continue
		}
		if status == "all" || status == "*" {
			return nil, expression, nil
		}
		if match.StatusPriority(status) == 0 && status != match.StatusUnknown {
			return nil, "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		wanted[status] = struct{}{}
	}
	if len(wanted) == 0 {
		return nil, "", fmt.Errorf("%w: empty status filter", ErrInvalidInput)
	}

	return wanted, expression, nil
}

// parseSourceFilter accepts a single provider id; "all" or "*" (or nothing)
// disables the filter.
func (s *LiveScoreService) parseSourceFilter(raw string) (string, string, error) {
	source := strings.ToLower(strings.TrimSpace(raw))
	if source == "" || source == "all" || source == "*" {
		return "", "all", nil
	}

	for _, provider := range []MatchProvider{s.anchor, s.espn, s.sofascore, s.streamed} {
		if strings.EqualFold(provider.Name(), source) {
			return source, source, nil
		}
	}
	return "", "", fmt.Errorf("%w: unknown source %q", ErrInvalidInput, source)
}

func filterMatches(rows []match.Canonical, statuses map[string]struct{}, source, league string) []match.Canonical {
	leagueNeedle := strings.ToLower(league)

	out := make([]match.Canonical, 0, len(rows))
	for _, row := range rows {
		if statuses != nil {
			status := strings.ToLower(strings.TrimSpace(row.Status))
			if status == "" {
				status = match.StatusUnknown
			}
			if _, ok := statuses[status]; !ok {
				continue
			}
		}
		if source != "" && !row.HasSource(source) {
			continue
		}
		if leagueNeedle != "" && !strings.Contains(strings.ToLower(row.Competition), leagueNeedle) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// applyQualityGate annotates each surviving row with its update age and
// staleness verdict, and drops conflicted or stale rows unless the caller
// opted in. Conflict and staleness are judged independently; a row dropped
// for both still increments both counters. Rows are copied on write so the
// shared snapshot stays untouched.
func (s *LiveScoreService) applyQualityGate(rows []match.Canonical, generatedAt string, includeStale, includeConflicts bool) ([]match.Canonical, int, int) {
	reference, ok := match.ParseISOUTC(generatedAt)
	if !ok {
		reference = time.Now().UTC()
	}

	served := make([]match.Canonical, 0, len(rows))
	droppedStale := 0
	droppedConflict := 0

	for _, shared := range rows {
		row := shared

		conflicted := row.Verification == match.VerificationConflict
		if conflicted && !includeConflicts {
			droppedConflict++
		}

		var age *float64
		if updated, parsed := match.ParseISOUTC(row.LastUpdatedUTC); parsed {
			seconds := reference.Sub(updated).Seconds()
			if seconds < 0 {
				seconds = 0
			}
			age = &seconds
		}
		row.LastUpdateAgeSeconds = age

		// Only live matches go stale; a finished score does not age.
		if strings.EqualFold(strings.TrimSpace(row.Status), match.StatusLive) {
			switch {
			case age == nil:
				row.IsStale = true
				row.StalenessReason = "missing_last_update"
			case *age > s.maxLiveStaleSeconds:
				row.IsStale = true
				row.StalenessReason = fmt.Sprintf("older_than_%d_seconds", int(s.maxLiveStaleSeconds))
			}
		}
		if row.IsStale && !includeStale {
			droppedStale++
		}

		if (conflicted && !includeConflicts) || (row.IsStale && !includeStale) {
			continue
		}
		served = append(served, row)
	}

	return served, droppedStale, droppedConflict
}
