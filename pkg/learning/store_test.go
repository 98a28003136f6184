package learning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSuccessRate(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Record("button_click", true))
	require.NoError(t, store.Record("button_click", true))
	require.NoError(t, store.Record("button_click", false))
	require.NoError(t, store.Record("keyboard_arrow", true))

	assert.InDelta(t, 2.0/3.0, store.SuccessRate("button_click"), 0.001)
	assert.Equal(t, 1.0, store.SuccessRate("keyboard_arrow"))
	assert.Equal(t, 0.0, store.SuccessRate("touch_swipe"))
}

func TestMemoryStoreBest(t *testing.T) {
	store := NewMemoryStore()
	assert.Empty(t, store.Best())

	store.Record("button_click", false)
	store.Record("keyboard_arrow", true)

	assert.Equal(t, "keyboard_arrow", store.Best())
}

func TestMemoryStoreBestTieGoesToMoreAttempted(t *testing.T) {
	store := NewMemoryStore()

	store.Record("button_click", true)
	store.Record("keyboard_arrow", true)
	store.Record("keyboard_arrow", true)

	assert.Equal(t, "keyboard_arrow", store.Best())
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	first, err := NewFileStore()
	require.NoError(t, err)
	require.NoError(t, first.Record("button_click", true))
	require.NoError(t, first.Record("button_click", false))

	second, err := NewFileStore()
	require.NoError(t, err)

	assert.InDelta(t, 0.5, second.SuccessRate("button_click"), 0.001)
	assert.Equal(t, "button_click", second.Best())
	assert.NotEqual(t, first.RunID(), second.RunID())
}

func TestFileStoreSurvivesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	statsDir := filepath.Join(dir, "igcarousel")
	require.NoError(t, os.MkdirAll(statsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(statsDir, "strategies.json"), []byte("{not json"), 0644))

	store, err := NewFileStore()
	require.NoError(t, err)

	assert.Empty(t, store.Best())
	assert.NoError(t, store.Record("script_fallback", true))
}
