package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHTMLImageElements(t *testing.T) {
	html := `
	<html><body>
		<img src="https://cdn.example.com/t51.2885-15/one.jpg" alt="Photo by someone on December 12, 2023.">
		<img alt="no src, skipped">
		<img src="https://cdn.example.com/t51.2885-15/two.jpg">
		<img src="">
	</body></html>`

	snap, err := ParseHTML(html)
	require.NoError(t, err)

	elements := snap.ImageElements()
	require.Len(t, elements, 2)
	assert.Equal(t, "https://cdn.example.com/t51.2885-15/one.jpg", elements[0].URL)
	assert.Equal(t, "Photo by someone on December 12, 2023.", elements[0].Alt)
	assert.Equal(t, "https://cdn.example.com/t51.2885-15/two.jpg", elements[1].URL)
	assert.Empty(t, elements[1].Alt)
}

func TestParseHTMLEmptyDocument(t *testing.T) {
	snap, err := ParseHTML("<html><body><p>nothing here</p></body></html>")
	require.NoError(t, err)

	assert.Empty(t, snap.ImageElements())
	assert.False(t, snap.HasNavigation())
}

func TestHasNavigation(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{
			name: "aria next button",
			html: `<body><button aria-label="Next"></button></body>`,
			want: true,
		},
		{
			name: "div role button",
			html: `<body><div role="button" aria-label="Next"></div></body>`,
			want: true,
		},
		{
			name: "unrelated button",
			html: `<body><button aria-label="Like"></button></body>`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := ParseHTML(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, snap.HasNavigation())
		})
	}
}

func TestStaticSnapshot(t *testing.T) {
	snap := &Static{
		Elements:   []ImageElement{{URL: "https://example.com/a.jpg", Alt: "a"}},
		Navigation: true,
	}

	assert.Len(t, snap.ImageElements(), 1)
	assert.True(t, snap.HasNavigation())
}
