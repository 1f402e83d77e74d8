// Package filter decides which scraped listings are fresh enough to ingest.
package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/constadinisio/huntly/internal/model"
)

// Ensure FreshnessFilter implements model.RawJobFilter.
var _ model.RawJobFilter = (*FreshnessFilter)(nil)

// unknownAge is assigned when the posted-at text cannot be parsed, so unknown
// listings are treated as stale rather than re-ingested forever.
const unknownAge = 999 * time.Hour

// FreshnessFilter drops listings older than MaxAge based on the marketplace's
// relative posted-at text ("Hace 3 horas", "Ayer"). A zero MaxAge passes all.
type FreshnessFilter struct {
	maxAge time.Duration
}

// NewFreshnessFilter returns a filter keeping listings at most maxAge old.
func NewFreshnessFilter(maxAge time.Duration) *FreshnessFilter {
	return &FreshnessFilter{maxAge: maxAge}
}

// Match returns true if the listing is within the configured age window.
func (f *FreshnessFilter) Match(raw model.RawJob) bool {
	if f.maxAge <= 0 {
		return true
	}
	return ParseAge(raw.PostedAt) <= f.maxAge
}

var numberRe = regexp.MustCompile(`\d+`)

// ParseAge converts the feed's relative posted-at text into a duration.
// Unrecognized text maps to a very large age.
func ParseAge(postedAt string) time.Duration {
	s := strings.ToLower(postedAt)

	n := 0
	if m := numberRe.FindString(s); m != "" {
		n, _ = strconv.Atoi(m)
	}

	switch {
	case strings.Contains(s, "minuto"):
		return time.Duration(n) * time.Minute
	case strings.Contains(s, "hora"):
		if n == 0 {
			n = 1
		}
		return time.Duration(n) * time.Hour
	case strings.Contains(s, "ayer"):
		return 24 * time.Hour
	case strings.Contains(s, "día") || strings.Contains(s, "dia"):
		if n == 0 {
			n = 1
		}
		return time.Duration(n) * 24 * time.Hour
	default:
		return unknownAge
	}
}
