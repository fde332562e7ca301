package match

import "testing"

func canonicalRow(home, away, startTime string) Canonical {
	return Canonical{
		ProviderRow: ProviderRow{
			Provider:     "goal",
			HomeTeam:     home,
			AwayTeam:     away,
			StartTimeUTC: startTime,
		},
		Sources:     []string{"goal"},
		ExternalIDs: map[string]string{"goal": "goal-1"},
	}
}

func candidateRow(home, away, startTime string) ProviderRow {
	return ProviderRow{
		Provider:     "espn",
		HomeTeam:     home,
		AwayTeam:     away,
		StartTimeUTC: startTime,
	}
}

func TestLinkRows_LinksMatchingFixture(t *testing.T) {
	t.Parallel()

	base := []Canonical{canonicalRow("Alpha FC", "Beta FC", "2026-02-11T16:00:00Z")}
	candidates := []ProviderRow{candidateRow("Alpha", "Beta", "2026-02-11T16:00:00Z")}

	links := LinkRows(base, candidates, DefaultMaxMinutesDiff, DefaultMinSimilarity)
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	link := links[0]
	if link.BaseIndex != 0 || link.CandidateIndex != 0 {
		t.Fatalf("unexpected link indices: %+v", link)
	}
	if link.Swapped {
		t.Fatal("direct orientation flagged as swapped")
	}
	if link.Similarity < DefaultMinSimilarity {
		t.Fatalf("accepted link below threshold: %v", link.Similarity)
	}
}

func TestLinkRows_GreedyClaimIsFirstComeFirstServed(t *testing.T) {
	t.Parallel()

	base := []Canonical{
		canonicalRow("Alpha FC", "Beta FC", "2026-02-11T16:00:00Z"),
		canonicalRow("Alpha FC", "Beta FC", "2026-02-11T16:00:00Z"),
	}
	candidates := []ProviderRow{candidateRow("Alpha FC", "Beta FC", "2026-02-11T16:00:00Z")}

	links := LinkRows(base, candidates, DefaultMaxMinutesDiff, DefaultMinSimilarity)
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1: a candidate may be claimed once", len(links))
	}
	if links[0].BaseIndex != 0 {
		t.Fatalf("candidate claimed by base %d, want first base row", links[0].BaseIndex)
	}
}

func TestLinkRows_TimeGapExcludesOnlyWhenBothTimestampsPresent(t *testing.T) {
	t.Parallel()

	base := []Canonical{canonicalRow("Alpha FC", "Beta FC", "2026-02-11T16:00:00Z")}

	farAway := []ProviderRow{candidateRow("Alpha FC", "Beta FC", "2026-02-11T23:00:00Z")}
	if links := LinkRows(base, farAway, DefaultMaxMinutesDiff, DefaultMinSimilarity); len(links) != 0 {
		t.Fatalf("candidate 7h away linked anyway: %+v", links)
	}

	noTimestamp := []ProviderRow{candidateRow("Alpha FC", "Beta FC", "")}
	if links := LinkRows(base, noTimestamp, DefaultMaxMinutesDiff, DefaultMinSimilarity); len(links) != 1 {
		t.Fatal("missing candidate timestamp must never exclude a candidate")
	}
}

func TestLinkRows_TimeProximityBonusBreaksNameTies(t *testing.T) {
	t.Parallel()

	base := []Canonical{canonicalRow("Alpha FC", "Beta FC", "2026-02-11T16:00:00Z")}
	candidates := []ProviderRow{
		candidateRow("Alpha FC", "Beta FC", "2026-02-11T18:00:00Z"),
		candidateRow("Alpha FC", "Beta FC", "2026-02-11T16:05:00Z"),
	}

	links := LinkRows(base, candidates, DefaultMaxMinutesDiff, DefaultMinSimilarity)
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	if links[0].CandidateIndex != 1 {
		t.Fatalf("linked candidate %d, want the closer kickoff", links[0].CandidateIndex)
	}
}

func TestLinkRows_RejectsBelowThreshold(t *testing.T) {
	t.Parallel()

	base := []Canonical{canonicalRow("Alpha FC", "Beta FC", "2026-02-11T16:00:00Z")}
	candidates := []ProviderRow{candidateRow("Gamma United", "Delta City", "2026-02-11T16:00:00Z")}

	if links := LinkRows(base, candidates, DefaultMaxMinutesDiff, DefaultMinSimilarity); len(links) != 0 {
		t.Fatalf("dissimilar fixture linked: %+v", links)
	}
}

func TestLinkRows_DetectsSwappedHomeAway(t *testing.T) {
	t.Parallel()

	base := []Canonical{canonicalRow("Alpha FC", "Beta FC", "2026-02-11T16:00:00Z")}
	candidates := []ProviderRow{candidateRow("Beta FC", "Alpha FC", "2026-02-11T16:00:00Z")}

	links := LinkRows(base, candidates, DefaultMaxMinutesDiff, DefaultMinSimilarity)
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	if !links[0].Swapped {
		t.Fatal("swapped home/away assignment not detected")
	}
}
