package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidatesFromAlts(alts ...string) []ImageCandidate {
	candidates := make([]ImageCandidate, len(alts))
	for i, alt := range alts {
		candidates[i] = ImageCandidate{
			URL:      contentURL("img.jpg"),
			AltText:  alt,
			Position: i,
		}
	}
	return candidates
}

func TestClassifyGroupsByDate(t *testing.T) {
	cl := Classify(candidatesFromAlts(
		"Photo by a on December 12, 2023.",
		"Photo by a on December 12, 2023. May be an image of food.",
		"Photo shared on January 3, 2024.",
		"no date in this one",
	))

	require.Len(t, cl.Groups, 2)
	assert.Equal(t, "December 12, 2023", cl.Groups[0].DateKey)
	assert.Len(t, cl.Groups[0].Members, 2)
	assert.Equal(t, "January 3, 2024", cl.Groups[1].DateKey)
	assert.Len(t, cl.Groups[1].Members, 1)
	require.Len(t, cl.NoDate, 1)
	assert.Equal(t, 3, cl.NoDate[0].Position)
}

func TestClassifyFirstSeenOrdering(t *testing.T) {
	cl := Classify(candidatesFromAlts(
		"October 5, 2024",
		"October 4, 2024",
		"October 5, 2024",
	))

	// Group order follows first appearance, not calendar order
	require.Len(t, cl.Groups, 2)
	assert.Equal(t, "October 5, 2024", cl.Groups[0].DateKey)
	assert.Equal(t, "October 4, 2024", cl.Groups[1].DateKey)
	assert.Equal(t, []int{0, 2}, memberPositions(cl.Groups[0]))
}

func TestClassifyFirstMatchWinsOnDoubleDate(t *testing.T) {
	cl := Classify(candidatesFromAlts(
		"Posted June 1, 2024, reposted June 2, 2024.",
	))

	require.Len(t, cl.Groups, 1)
	assert.Equal(t, "June 1, 2024", cl.Groups[0].DateKey)
	assert.Equal(t, "June 1, 2024", cl.Groups[0].Members[0].ExtractedDate)
}

func TestClassifyPartition(t *testing.T) {
	candidates := candidatesFromAlts(
		"March 9, 2022", "", "March 9, 2022", "April 10, 2022", "",
		"no date here either", "May 1, 2023",
	)
	cl := Classify(candidates)

	// Every candidate appears exactly once across all buckets
	seen := make(map[int]int)
	for _, g := range cl.Groups {
		for _, m := range g.Members {
			seen[m.Position]++
		}
	}
	for _, m := range cl.NoDate {
		seen[m.Position]++
	}

	assert.Len(t, seen, len(candidates))
	for pos, count := range seen {
		assert.Equalf(t, 1, count, "candidate %d classified %d times", pos, count)
	}
}

func TestClassifyRejectsPartialDates(t *testing.T) {
	cl := Classify(candidatesFromAlts(
		"Dec 12, 2023",      // abbreviated month
		"December 12",       // no year
		"December 12, 23",   // 2-digit year
		"on 12 December 2023", // day-first ordering
	))

	assert.Empty(t, cl.Groups)
	assert.Len(t, cl.NoDate, 4)
}

func TestClassifyEmptyInput(t *testing.T) {
	cl := Classify(nil)

	assert.Empty(t, cl.Groups)
	assert.Empty(t, cl.NoDate)
}

func memberPositions(g DateGroup) []int {
	positions := make([]int, len(g.Members))
	for i, m := range g.Members {
		positions[i] = m.Position
	}
	return positions
}
