package match

const (
	// DefaultMaxMinutesDiff is how far apart two kickoff times may be while
	// still describing the same fixture. Rescheduled kickoffs rarely move
	// further than a couple of hours inside one live window.
	DefaultMaxMinutesDiff = 180.0

	// DefaultMinSimilarity is the baseline acceptance threshold; merge
	// stages tighten it as more corroborating sources accumulate.
	DefaultMinSimilarity = 0.74

	timeProximityBonusCap = 0.10
)

// Link pairs one base row with one candidate row from another source.
type Link struct {
	BaseIndex      int
	CandidateIndex int
	Similarity     float64
	Swapped        bool
}

// LinkRows links base rows to candidate rows greedily in base order: each
// base row claims its best-scoring unused candidate, and a claimed candidate
// is never reconsidered for later base rows. This is deliberately not a
// globally optimal bipartite matching; the first-come-first-served scan is
// cheap, deterministic, and matches how the pipeline folds sources in.
//
// Candidates further than maxMinutesDiff from the base kickoff are skipped,
// but only when both timestamps are present; a missing timestamp never
// excludes a candidate. When both timestamps are present, a proximity bonus
// of up to 0.10 is added so closer kickoffs win among equal name scores.
func LinkRows(baseRows []Canonical, candidateRows []ProviderRow, maxMinutesDiff, minSimilarity float64) []Link {
	links := make([]Link, 0, len(baseRows))
	usedCandidates := make(map[int]struct{}, len(candidateRows))

	for baseIndex := range baseRows {
		base := &baseRows[baseIndex]
		best := Link{BaseIndex: -1}

		for candidateIndex := range candidateRows {
			if _, used := usedCandidates[candidateIndex]; used {
				continue
			}
			candidate := &candidateRows[candidateIndex]

			minuteGap, gapKnown := MinutesBetween(base.StartTimeUTC, candidate.StartTimeUTC)
			if gapKnown && minuteGap > maxMinutesDiff {
				continue
			}

			score, swapped := TeamPairSimilarity(
				base.HomeTeam, base.AwayTeam,
				candidate.HomeTeam, candidate.AwayTeam,
			)
			if gapKnown {
				bonus := 1.0 - minuteGap/maxMinutesDiff
				if bonus > 0 {
					score += bonus * timeProximityBonusCap
				}
			}

			if best.BaseIndex < 0 || score > best.Similarity {
				best = Link{
					BaseIndex:      baseIndex,
					CandidateIndex: candidateIndex,
					Similarity:     score,
					Swapped:        swapped,
				}
			}
		}

		if best.BaseIndex < 0 || best.Similarity < minSimilarity {
			continue
		}
		usedCandidates[best.CandidateIndex] = struct{}{}
		links = append(links, best)
	}
	return links
}
