package dedup

import (
	"regexp"
	"strings"
)

// Size-variant markers the CDN injects into otherwise identical asset
// URLs. Stripping them yields a canonical pattern key so the same
// image served at w640 and w1440 collapses to one entry.
var (
	sizeInfixPattern   = regexp.MustCompile(`_[swp]\d{2,4}(x\d{2,4})?_`)
	sizeSegmentPattern = regexp.MustCompile(`/(?:[swp]\d{2,4}(?:x\d{2,4})?|e\d{2})/`)
)

// CanonicalPattern reduces a URL to its size-invariant form: query
// parameters dropped, size-variant infixes and path segments removed.
// Two URLs with the same pattern are treated as the same asset.
func CanonicalPattern(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	url = sizeInfixPattern.ReplaceAllString(url, "_")
	url = sizeSegmentPattern.ReplaceAllString(url, "/")
	return url
}

// ByPattern collapses URL-pattern duplicates, keeping the first URL
// seen for each canonical pattern. Order of the kept URLs is the order
// they arrived in, so the output is always a subsequence of the input
// and the operation is idempotent.
func ByPattern(urls []string) []string {
	seen := NewSet()
	kept := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen.AddIfNotExists(CanonicalPattern(u)) {
			kept = append(kept, u)
		}
	}
	return kept
}
