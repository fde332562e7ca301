package match

import "strings"

const (
	StatusLive      = "live"
	StatusFinished  = "finished"
	StatusPostponed = "postponed"
	StatusCancelled = "cancelled"
	StatusScheduled = "scheduled"
	StatusUnknown   = "unknown"
)

// Verification states describe how well a canonical score is corroborated.
const (
	VerificationSingleSource = "single_source"
	VerificationConfirmed    = "confirmed_by_multiple_sources"
	VerificationConflict     = "score_conflict"
)

var statusPriority = map[string]int{
	StatusLive:      5,
	StatusFinished:  4,
	StatusPostponed: 3,
	StatusCancelled: 2,
	StatusScheduled: 1,
	StatusUnknown:   0,
}

func StatusPriority(status string) int {
	return statusPriority[strings.ToLower(strings.TrimSpace(status))]
}

// PreferredStatus keeps the higher-priority status; ties keep the first.
func PreferredStatus(first, second string) string {
	if StatusPriority(second) > StatusPriority(first) {
		return second
	}
	return first
}

// ProviderRow is the pre-merge row shape every source client produces.
// Timestamps are ISO-8601 UTC strings; empty means absent. Scores are nil
// when the source does not know them, which is distinct from 0-0.
type ProviderRow struct {
	Provider        string   `json:"provider"`
	ProviderMatchID string   `json:"provider_match_id"`
	Competition     string   `json:"competition,omitempty"`
	HomeTeam        string   `json:"home_team"`
	AwayTeam        string   `json:"away_team"`
	HomeScore       *int     `json:"home_score"`
	AwayScore       *int     `json:"away_score"`
	Status          string   `json:"status"`
	RawStatus       string   `json:"raw_status,omitempty"`
	Period          string   `json:"period,omitempty"`
	Minute          *int     `json:"minute"`
	ExtraMinute     *int     `json:"extra_minute"`
	StartTimeUTC    string   `json:"start_time_utc,omitempty"`
	LastUpdatedUTC  string   `json:"last_updated_utc,omitempty"`
	Venue           string   `json:"venue,omitempty"`
	WatchURL        string   `json:"streamed_watch_url,omitempty"`
	Discrepancies   []string `json:"discrepancies"`
}

// HasScore reports whether both sides of the score pair are known.
func (r ProviderRow) HasScore() bool {
	return r.HomeScore != nil && r.AwayScore != nil
}

func (r ProviderRow) Clone() ProviderRow {
	out := r
	out.HomeScore = cloneIntPtr(r.HomeScore)
	out.AwayScore = cloneIntPtr(r.AwayScore)
	out.Minute = cloneIntPtr(r.Minute)
	out.ExtraMinute = cloneIntPtr(r.ExtraMinute)
	out.Discrepancies = append([]string(nil), r.Discrepancies...)
	return out
}

// Canonical is the reconciled multi-source record for one fixture. It only
// lives inside a single cached snapshot; every refresh rebuilds the set.
type Canonical struct {
	ProviderRow

	Sources     []string          `json:"sources"`
	ExternalIDs map[string]string `json:"external_ids"`
	Confidence  float64           `json:"confidence"`
	// Verification is single_source, confirmed_by_multiple_sources,
	// filled_from_<provider>, or score_conflict.
	Verification string `json:"verification"`

	// Quality-gate annotations, populated at read time.
	LastUpdateAgeSeconds *float64 `json:"last_update_age_seconds"`
	IsStale              bool     `json:"is_stale"`
	StalenessReason      string   `json:"staleness_reason,omitempty"`
}

// HasSource reports whether the provider already contributed to this record.
func (c Canonical) HasSource(provider string) bool {
	for _, src := range c.Sources {
		if strings.EqualFold(src, provider) {
			return true
		}
	}
	return false
}

func cloneIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
