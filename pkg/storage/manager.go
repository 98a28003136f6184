package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"igcarousel/pkg/dedup"
)

// savedFilePattern matches files the manager wrote: shortcode_index.jpg.
var savedFilePattern = regexp.MustCompile(`^(.+)_(\d+)\.jpg$`)

// Manager handles file storage for extracted carousel images. Files
// are named shortcode_index.jpg inside the output directory.
type Manager struct {
	outputDir  string
	savedFiles map[string]bool
	seenHashes map[string]string
	mu         sync.RWMutex
}

// NewManager creates a storage manager rooted at outputDir, creating
// the directory if needed and indexing any files already present.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir:  outputDir,
		savedFiles: make(map[string]bool),
		seenHashes: make(map[string]string),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles indexes images already in the output directory so
// re-runs detect them as saved.
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !savedFilePattern.MatchString(entry.Name()) {
			continue
		}
		m.savedFiles[entry.Name()] = true

		data, err := os.ReadFile(filepath.Join(m.outputDir, entry.Name()))
		if err != nil {
			continue
		}
		m.seenHashes[dedup.HashBytes(data)] = entry.Name()
	}

	return nil
}

// IsSaved reports whether the image at the given carousel index of a
// post is already on disk.
func (m *Manager) IsSaved(shortcode string, index int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name := m.fileName(shortcode, index)
	if m.savedFiles[name] {
		return true
	}

	if _, err := os.Stat(filepath.Join(m.outputDir, name)); err == nil {
		return true
	}

	return false
}

// SaveImage writes image bytes for the given post and carousel index
// and returns the path written. If identical bytes were saved before,
// nothing is written and the existing path is returned.
func (m *Manager) SaveImage(data []byte, shortcode string, index int) (string, error) {
	hash := dedup.HashBytes(data)

	m.mu.Lock()
	if existing, ok := m.seenHashes[hash]; ok {
		m.mu.Unlock()
		return filepath.Join(m.outputDir, existing), nil
	}
	m.mu.Unlock()

	name := m.fileName(shortcode, index)
	filename := filepath.Join(m.outputDir, name)

	tempFile := filename + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.savedFiles[name] = true
	m.seenHashes[hash] = name
	m.mu.Unlock()

	return filename, nil
}

// SavedPath returns the path the image at the given carousel index of
// a post is stored under.
func (m *Manager) SavedPath(shortcode string, index int) string {
	return filepath.Join(m.outputDir, m.fileName(shortcode, index))
}

// OutputDir returns the output directory path.
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// SavedCount returns the number of saved images.
func (m *Manager) SavedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.savedFiles)
}

func (m *Manager) fileName(shortcode string, index int) string {
	return fmt.Sprintf("%s_%d.jpg", shortcode, index)
}
