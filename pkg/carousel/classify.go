package carousel

import "regexp"

// datePattern matches the "{MonthName} {Day}, {Year}" token Instagram
// embeds in post image alt text. Full English month names, 1-2 digit
// day, 4-digit year.
var datePattern = regexp.MustCompile(
	`(January|February|March|April|May|June|July|August|September|October|November|December) \d{1,2}, \d{4}`)

// DateGroup is the set of candidates sharing one alt-text date, in
// first-seen order.
type DateGroup struct {
	DateKey string
	Members []ImageCandidate
}

// Classification partitions candidates by extracted alt-text date.
// Group order and within-group member order both follow first
// appearance; candidates without a date form the NoDate bucket. Every
// input candidate lands in exactly one place.
type Classification struct {
	Groups []DateGroup
	NoDate []ImageCandidate
}

// Classify searches each candidate's alt text for a calendar-date
// substring and groups candidates by it. Only the first regex match in
// an alt text counts, so a caption mentioning two dates is filed under
// the earlier-positioned one. The first-seen ordering of date keys is
// what the selector later treats as "the main post's date first" - a
// heuristic over DOM order, not a chronological sort.
func Classify(candidates []ImageCandidate) *Classification {
	cl := &Classification{}
	index := make(map[string]int) // date key -> position in cl.Groups

	for _, cand := range candidates {
		date := datePattern.FindString(cand.AltText)
		if date == "" {
			cl.NoDate = append(cl.NoDate, cand)
			continue
		}

		cand.ExtractedDate = date
		if i, ok := index[date]; ok {
			cl.Groups[i].Members = append(cl.Groups[i].Members, cand)
			continue
		}
		index[date] = len(cl.Groups)
		cl.Groups = append(cl.Groups, DateGroup{
			DateKey: date,
			Members: []ImageCandidate{cand},
		})
	}

	return cl
}
