package snapshot

// ImageElement is a single image-bearing DOM element as seen in a page
// snapshot: its source URL and accompanying alt attribute, both verbatim.
type ImageElement struct {
	URL string
	Alt string
}

// Snapshot is the boundary contract with the browser-automation layer.
// The extraction core never parses raw HTML itself; it only asks a
// snapshot for its image elements and whether carousel navigation
// controls are present.
type Snapshot interface {
	// ImageElements returns every image-bearing element in DOM encounter
	// order. No filtering or deduplication happens at this level.
	ImageElements() []ImageElement

	// HasNavigation reports whether the snapshot contains carousel
	// navigation controls ("next" buttons or equivalent).
	HasNavigation() bool
}

// Static is a pre-built snapshot, mainly used by tests and scripted
// drivers.
type Static struct {
	Elements   []ImageElement
	Navigation bool
}

func (s *Static) ImageElements() []ImageElement { return s.Elements }

func (s *Static) HasNavigation() bool { return s.Navigation }
