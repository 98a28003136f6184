package carousel

import "sort"

// SelectionRules are the tuned thresholds behind the main-post
// selector. They came out of manual labeling of example posts; treat
// them as configuration, not as derivable constants.
type SelectionRules struct {
	// PositionalWindow is how far past the first date group's last
	// member a no-date candidate may appear and still be included.
	PositionalWindow int
	// MaxCarouselSize caps the final selection.
	MaxCarouselSize int
	// FallbackCap bounds the first-N fallback used when no candidate
	// carries a date at all.
	FallbackCap int
}

// DefaultRules returns the empirically tuned selection thresholds.
func DefaultRules() SelectionRules {
	return SelectionRules{
		PositionalWindow: 3,
		MaxCarouselSize:  10,
		FallbackCap:      5,
	}
}

// Select applies the main-post selection policy over classified
// candidates.
//
// Single post: exactly one candidate - the first member of the first
// date group, else the first no-date candidate, else nothing.
//
// Carousel: the first date group is taken as the main-post cluster.
// With multiple date groups, no-date candidates are pulled in only if
// they sit before the second group starts and within the positional
// window past the first group's last member; with a single date group,
// all no-date candidates are assumed to belong to the same post. With
// no date groups at all, the first FallbackCap candidates are a last
// resort. The result is always capped at MaxCarouselSize and returned
// in original snapshot order.
//
// Instagram mixes suggested-post thumbnails into the same DOM region
// as the active post; the date-group-plus-window heuristic is the only
// usable signal without a stable post-container selector.
func Select(cl *Classification, isCarousel bool, rules SelectionRules) []ImageCandidate {
	if !isCarousel {
		return selectSingle(cl)
	}

	if len(cl.Groups) == 0 {
		return capSelection(firstN(cl.NoDate, rules.FallbackCap), rules.MaxCarouselSize)
	}

	main := cl.Groups[0].Members
	selected := append([]ImageCandidate(nil), main...)

	if len(cl.Groups) > 1 {
		secondStart := cl.Groups[1].Members[0].Position
		lastMain := main[len(main)-1].Position
		for _, cand := range cl.NoDate {
			if cand.Position < secondStart && cand.Position <= lastMain+rules.PositionalWindow {
				selected = append(selected, cand)
			}
		}
	} else {
		selected = append(selected, cl.NoDate...)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Position < selected[j].Position
	})

	return capSelection(selected, rules.MaxCarouselSize)
}

// selectSingle returns at most one candidate for non-carousel posts.
func selectSingle(cl *Classification) []ImageCandidate {
	if len(cl.Groups) > 0 {
		return []ImageCandidate{cl.Groups[0].Members[0]}
	}
	if len(cl.NoDate) > 0 {
		return []ImageCandidate{cl.NoDate[0]}
	}
	return nil
}

func firstN(candidates []ImageCandidate, n int) []ImageCandidate {
	if len(candidates) <= n {
		return append([]ImageCandidate(nil), candidates...)
	}
	return append([]ImageCandidate(nil), candidates[:n]...)
}

func capSelection(selected []ImageCandidate, maxSize int) []ImageCandidate {
	if maxSize > 0 && len(selected) > maxSize {
		return selected[:maxSize]
	}
	return selected
}

// URLs extracts the URL list from a selection, preserving order.
func URLs(candidates []ImageCandidate) []string {
	urls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		urls = append(urls, c.URL)
	}
	return urls
}
