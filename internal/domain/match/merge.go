package match

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Stage describes how one source folds into the accumulated canonical list.
// Order matters: later stages only touch fields not already decided, or
// escalate confidence, so the pipeline is not order-independent.
type Stage struct {
	Provider string
	Rows     []ProviderRow

	// MinSimilarity is the linker acceptance threshold for this stage.
	MinSimilarity float64
	// RescoreOnLink re-derives confidence from the link score on every
	// accepted link, before floors and ceilings apply. Only the first
	// corroborating stage does this; later stages adjust confidence solely
	// through the confirm/fill/conflict branches, so accumulated evidence
	// is never overwritten by a scoreless link.
	RescoreOnLink bool
	// ConfirmFloor raises confidence when score pairs agree.
	ConfirmFloor float64
	// FillFloor raises confidence when this source fills an unknown score.
	FillFloor float64
	// ConflictCeiling caps confidence when known score pairs disagree.
	ConflictCeiling float64
	// StandaloneSeed is the confidence given to rows this stage could not
	// link; ignored for discovery stages, whose unlinked rows are dropped.
	StandaloneSeed float64
	// Discovery stages carry no trustworthy score or status. A link only
	// attaches the watch URL and source id.
	Discovery bool
}

const (
	anchorSeedConfidence = 0.72

	espnMinSimilarity  = 0.76
	espnConfirmFloor   = 0.95
	espnFillFloor      = 0.83
	espnConflictCap    = 0.56
	espnStandaloneSeed = 0.68

	sofaMinSimilarity  = 0.78
	sofaConfirmFloor   = 0.96
	sofaFillFloor      = 0.86
	sofaConflictCap    = 0.50
	sofaStandaloneSeed = 0.74

	streamedMinSimilarity = 0.80
)

// DefaultStages returns the production pipeline: espn corroborates the goal
// anchor, sofascore corroborates the accumulated list with tighter linkage,
// and streamed contributes watch URLs only.
func DefaultStages(espnRows, sofaRows, streamedRows []ProviderRow) []Stage {
	return []Stage{
		{
			Provider:        "espn",
			Rows:            espnRows,
			MinSimilarity:   espnMinSimilarity,
			RescoreOnLink:   true,
			ConfirmFloor:    espnConfirmFloor,
			FillFloor:       espnFillFloor,
			ConflictCeiling: espnConflictCap,
			StandaloneSeed:  espnStandaloneSeed,
		},
		{
			Provider:        "sofascore",
			Rows:            sofaRows,
			MinSimilarity:   sofaMinSimilarity,
			ConfirmFloor:    sofaConfirmFloor,
			FillFloor:       sofaFillFloor,
			ConflictCeiling: sofaConflictCap,
			StandaloneSeed:  sofaStandaloneSeed,
		},
		{
			Provider:      "streamed",
			Rows:          streamedRows,
			MinSimilarity: streamedMinSimilarity,
			Discovery:     true,
		},
	}
}

// Merge seeds the canonical list from the anchor source, then folds each
// stage in order. Every canonical row keeps exactly one claim on a given
// (provider, native id) pair because stage rows are linked one-to-one and
// unlinked rows become fresh canonical entries.
func Merge(anchorProvider string, anchorRows []ProviderRow, stages []Stage) []Canonical {
	merged := make([]Canonical, 0, len(anchorRows))
	for _, row := range anchorRows {
		merged = append(merged, newCanonical(row, anchorProvider, anchorSeedConfidence))
	}

	for _, stage := range stages {
		merged = applyStage(merged, stage)
	}

	sortCanonical(merged)
	return merged
}

func applyStage(merged []Canonical, stage Stage) []Canonical {
	links := LinkRows(merged, stage.Rows, DefaultMaxMinutesDiff, stage.MinSimilarity)

	linked := make(map[int]struct{}, len(links))
	for _, link := range links {
		linked[link.CandidateIndex] = struct{}{}
		row := &merged[link.BaseIndex]
		candidate := stage.Rows[link.CandidateIndex]

		if stage.Discovery {
			attachDiscovery(row, stage.Provider, candidate)
			continue
		}
		foldRow(row, stage, candidate, link.Similarity)
	}

	if stage.Discovery {
		// Discovery sources enrich existing fixtures only; an unlinked row
		// has no independent evidentiary value and is dropped.
		return merged
	}

	for index, candidate := range stage.Rows {
		if _, ok := linked[index]; ok {
			continue
		}
		merged = append(merged, newCanonical(candidate, stage.Provider, stage.StandaloneSeed))
	}
	return merged
}

func foldRow(row *Canonical, stage Stage, candidate ProviderRow, linkScore float64) {
	existingLabel := sourceLabel(row.Sources)
	if !row.HasSource(stage.Provider) {
		row.Sources = append(row.Sources, stage.Provider)
	}
	row.ExternalIDs[stage.Provider] = candidate.ProviderMatchID
	if stage.RescoreOnLink {
		row.Confidence = linkConfidence(linkScore)
	}
	row.Status = PreferredStatus(orUnknown(row.Status), orUnknown(candidate.Status))
	row.LastUpdatedUTC = MaxTimestamp(row.LastUpdatedUTC, candidate.LastUpdatedUTC)

	switch {
	case row.HasScore() && candidate.HasScore() && sameScore(row.ProviderRow, candidate):
		row.Verification = VerificationConfirmed
		row.Confidence = math.Max(row.Confidence, stage.ConfirmFloor)
	case row.HasScore() && candidate.HasScore():
		row.Verification = VerificationConflict
		row.Confidence = math.Min(row.Confidence, stage.ConflictCeiling)
		row.Discrepancies = append(row.Discrepancies, fmt.Sprintf(
			"%s score %s differs from %s %s",
			existingLabel, FormatScore(row.HomeScore, row.AwayScore),
			stage.Provider, FormatScore(candidate.HomeScore, candidate.AwayScore),
		))
	case !row.HasScore() && candidate.HasScore():
		// A known score is adopted but never the other way round: once a
		// pair is known it can only be replaced by another known pair.
		row.HomeScore = cloneIntPtr(candidate.HomeScore)
		row.AwayScore = cloneIntPtr(candidate.AwayScore)
		row.Verification = "filled_from_" + stage.Provider
		row.Confidence = math.Max(row.Confidence, stage.FillFloor)
	}

	if row.Competition == "" && candidate.Competition != "" {
		row.Competition = candidate.Competition
	}
	if row.Venue == "" && candidate.Venue != "" {
		row.Venue = candidate.Venue
	}
}

func attachDiscovery(row *Canonical, provider string, candidate ProviderRow) {
	if candidate.WatchURL == "" {
		return
	}
	row.WatchURL = candidate.WatchURL
	if !row.HasSource(provider) {
		row.Sources = append(row.Sources, provider)
	}
	row.ExternalIDs[provider] = candidate.ProviderMatchID
}

func newCanonical(row ProviderRow, provider string, seedConfidence float64) Canonical {
	cloned := row.Clone()
	if cloned.Discrepancies == nil {
		cloned.Discrepancies = []string{}
	}
	return Canonical{
		ProviderRow:  cloned,
		Sources:      []string{provider},
		ExternalIDs:  map[string]string{provider: row.ProviderMatchID},
		Confidence:   seedConfidence,
		Verification: VerificationSingleSource,
	}
}

// linkConfidence maps a link score to a fresh-link confidence, before the
// per-stage floors and ceilings apply.
func linkConfidence(linkScore float64) float64 {
	confidence := math.Min(0.98, 0.80+(linkScore-0.75))
	return math.Round(confidence*100) / 100
}

func sameScore(left, right ProviderRow) bool {
	return *left.HomeScore == *right.HomeScore && *left.AwayScore == *right.AwayScore
}

func sourceLabel(sources []string) string {
	if len(sources) == 1 {
		return sources[0]
	}
	return "merged"
}

func orUnknown(status string) string {
	if strings.TrimSpace(status) == "" {
		return StatusUnknown
	}
	return status
}

func sortCanonical(rows []Canonical) {
	sort.SliceStable(rows, func(i, j int) bool {
		leftRank := StatusPriority(orUnknown(rows[i].Status))
		rightRank := StatusPriority(orUnknown(rows[j].Status))
		if leftRank != rightRank {
			return leftRank > rightRank
		}
		if rows[i].StartTimeUTC != rows[j].StartTimeUTC {
			return rows[i].StartTimeUTC < rows[j].StartTimeUTC
		}
		leftLabel := strings.ToLower(rows[i].HomeTeam + " vs " + rows[i].AwayTeam)
		rightLabel := strings.ToLower(rows[j].HomeTeam + " vs " + rows[j].AwayTeam)
		return leftLabel < rightLabel
	})
}
