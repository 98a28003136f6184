package carousel

import (
	"strings"

	"igcarousel/pkg/snapshot"
)

const (
	// contentMarker identifies full-resolution Instagram post images.
	// Thumbnails and avatars live under other CDN paths.
	contentMarker = "t51.2885-15"
)

// exclusionMarkers identify size variants and avatar assets that share
// the content CDN host but never belong to the post itself.
var exclusionMarkers = []string{
	"t51.2885-19", // profile picture path
	"s150x150",
	"s320x320",
	"profile_pic",
}

// ImageCandidate is one qualifying image element from a snapshot scan.
// Candidates are created fresh per scan and never mutated.
type ImageCandidate struct {
	// URL is the image source exactly as it appeared in the DOM.
	URL string
	// AltText is the accompanying alt attribute, possibly empty.
	AltText string
	// ExtractedDate is the month-day-year token parsed from AltText,
	// empty when no date was found. Populated by Classify.
	ExtractedDate string
	// Position is the candidate's index in DOM encounter order within
	// its snapshot. The selector's positional-window heuristic depends
	// on it.
	Position int
}

// Collect scans a snapshot and returns every image element that looks
// like Instagram post content, in DOM encounter order. An element
// qualifies when its URL contains the content-image marker and matches
// none of the thumbnail/avatar exclusions. URL and alt text are
// captured verbatim. No deduplication happens here, and finding
// nothing is an empty result, not an error.
func Collect(snap snapshot.Snapshot) []ImageCandidate {
	var candidates []ImageCandidate
	for _, el := range snap.ImageElements() {
		if !qualifies(el.URL) {
			continue
		}
		candidates = append(candidates, ImageCandidate{
			URL:      el.URL,
			AltText:  el.Alt,
			Position: len(candidates),
		})
	}
	return candidates
}

func qualifies(url string) bool {
	if !strings.Contains(url, contentMarker) {
		return false
	}
	for _, marker := range exclusionMarkers {
		if strings.Contains(url, marker) {
			return false
		}
	}
	return true
}
