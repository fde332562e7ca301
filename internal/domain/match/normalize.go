package match

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const isoUTCFormat = "2006-01-02T15:04:05.000000Z07:00"

// Generic club-type tokens that carry no identity signal. The set is fixed
// on purpose: stripping aggressively ("united", "city") would collapse
// distinct clubs into one normalized name.
var teamStopWords = map[string]struct{}{
	"ac": {}, "afc": {}, "athletic": {}, "atletico": {}, "cf": {},
	"club": {}, "fc": {}, "fk": {}, "foot": {}, "football": {},
	"if": {}, "nk": {}, "rc": {}, "sc": {}, "sk": {}, "sporting": {}, "sv": {},
}

var diacriticStripper = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
)

func UTCNowISO() string {
	return time.Now().UTC().Format(isoUTCFormat)
}

// ParseISOUTC parses an ISO-8601 timestamp, accepting a trailing "Z", an
// explicit offset, or timezone-naive input (implicitly UTC). Unparseable
// input yields ok=false, never an error; callers treat it as absent.
func ParseISOUTC(value string) (time.Time, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return time.Time{}, false
	}

	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, cleaned); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func EpochSecondsToISOUTC(value int64) string {
	if value == 0 {
		return ""
	}
	return time.Unix(value, 0).UTC().Format(isoUTCFormat)
}

func EpochMillisToISOUTC(value int64) string {
	if value == 0 {
		return ""
	}
	return time.UnixMilli(value).UTC().Format(isoUTCFormat)
}

// NormalizeTeamName canonicalizes a team name for cross-source comparison:
// decompose and drop diacritics, lowercase, squash non-alphanumeric runs to
// spaces, then drop stop-word tokens. Idempotent.
func NormalizeTeamName(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}

	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		stripped = name
	}
	lowered := strings.ToLower(stripped)

	var builder strings.Builder
	builder.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
		} else {
			builder.WriteByte(' ')
		}
	}

	parts := make([]string, 0, 4)
	for _, token := range strings.Fields(builder.String()) {
		if _, skip := teamStopWords[token]; skip {
			continue
		}
		parts = append(parts, token)
	}
	return strings.Join(parts, " ")
}

// Similarity returns a gestalt sequence-similarity ratio in [0,1] over the
// normalized names. Two empty names are vacuously equal.
func Similarity(left, right string) float64 {
	leftNorm := NormalizeTeamName(left)
	rightNorm := NormalizeTeamName(right)
	if leftNorm == "" && rightNorm == "" {
		return 1.0
	}
	if leftNorm == "" || rightNorm == "" {
		return 0.0
	}
	return sequenceRatio(leftNorm, rightNorm)
}

// TeamPairSimilarity scores two fixtures by averaging home/home+away/away
// similarity against the swapped orientation, returning whichever is larger.
// The swapped flag absorbs sources that disagree on home/away assignment;
// ties favor the direct orientation.
func TeamPairSimilarity(homeA, awayA, homeB, awayB string) (float64, bool) {
	direct := (Similarity(homeA, homeB) + Similarity(awayA, awayB)) / 2.0
	swapped := (Similarity(homeA, awayB) + Similarity(awayA, homeB)) / 2.0
	if direct >= swapped {
		return direct, false
	}
	return swapped, true
}

// MinutesBetween returns the absolute gap in minutes between two ISO
// timestamps, or ok=false when either side is missing or unparseable.
func MinutesBetween(leftISO, rightISO string) (float64, bool) {
	left, leftOK := ParseISOUTC(leftISO)
	right, rightOK := ParseISOUTC(rightISO)
	if !leftOK || !rightOK {
		return 0, false
	}
	return math.Abs(left.Sub(right).Minutes()), true
}

// MaxTimestamp returns the later of two ISO timestamps, preferring whichever
// side parses when the other does not.
func MaxTimestamp(left, right string) string {
	leftTime, leftOK := ParseISOUTC(left)
	rightTime, rightOK := ParseISOUTC(right)
	if !leftOK {
		return right
	}
	if !rightOK {
		return left
	}
	if leftTime.Before(rightTime) {
		return right
	}
	return left
}

// sequenceRatio implements the Ratcliff-Obershelp ratio: twice the total
// size of recursively-found longest matching blocks over the combined
// length. Block selection prefers the earliest start in left, then in right,
// which keeps the score stable for repeated substrings.
func sequenceRatio(left, right string) float64 {
	a := []rune(left)
	b := []rune(right)
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	matched := matchingBlockTotal(a, b)
	return 2.0 * float64(matched) / float64(total)
}

func matchingBlockTotal(a, b []rune) int {
	aStart, bStart, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingBlockTotal(a[:aStart], b[:bStart]) +
		matchingBlockTotal(a[aStart+size:], b[bStart+size:])
}

func longestMatch(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	// lengths[j] holds the length of the match ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prevDiagonal := 0
		for j := 1; j <= len(b); j++ {
			current := 0
			if a[i-1] == b[j-1] {
				current = prevDiagonal + 1
			}
			prevDiagonal = lengths[j]
			lengths[j] = current
			if current > bestSize {
				bestSize = current
				bestA = i - current
				bestB = j - current
			}
		}
	}
	return bestA, bestB, bestSize
}

// FormatScore renders a score pair as "h-a" for discrepancy messages.
func FormatScore(home, away *int) string {
	if home == nil || away == nil {
		return "?-?"
	}
	return strconv.Itoa(*home) + "-" + strconv.Itoa(*away)
}
