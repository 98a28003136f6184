package snapshot

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"igcarousel/pkg/errors"
)

// navButtonSelectors match the carousel "next" controls Instagram has
// shipped across UI versions. Any hit marks the snapshot as a carousel.
var navButtonSelectors = []string{
	`button[aria-label="Next"]`,
	`button[aria-label="Go to next"]`,
	`div[role="button"][aria-label="Next"]`,
}

// HTML is a Snapshot backed by a parsed HTML document.
type HTML struct {
	doc *goquery.Document
}

// ParseHTML parses serialized page HTML into a snapshot. A document
// that cannot be parsed at all is the one hard error in this package;
// a document with no images is a valid, empty snapshot.
func ParseHTML(html string) (*HTML, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeSnapshot,
			Message: "failed to parse page snapshot: " + err.Error(),
		}
	}
	return &HTML{doc: doc}, nil
}

// ImageElements returns all img elements carrying a src, in document
// order, with src and alt captured verbatim.
func (h *HTML) ImageElements() []ImageElement {
	var elements []ImageElement
	h.doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		alt, _ := s.Attr("alt")
		elements = append(elements, ImageElement{URL: src, Alt: alt})
	})
	return elements
}

// HasNavigation reports whether any known carousel "next" control is
// present in the document.
func (h *HTML) HasNavigation() bool {
	for _, sel := range navButtonSelectors {
		if h.doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}
