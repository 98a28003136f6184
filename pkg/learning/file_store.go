package learning

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"igcarousel/pkg/logger"
)

// FileStore persists strategy stats as a JSON file under the user's
// data directory, so what worked for one extraction run informs the
// next.
type FileStore struct {
	path   string
	runID  string
	mu     sync.Mutex
	stats  map[string]*Stats
	logger logger.Logger
}

// fileFormat is the on-disk layout.
type fileFormat struct {
	Version    int               `json:"version"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Strategies map[string]*Stats `json:"strategies"`
}

// NewFileStore opens (or creates) the strategy-stats file. Each store
// instance carries a fresh run ID that is stamped onto the stats it
// records.
func NewFileStore() (*FileStore, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fs := &FileStore{
		path:   filepath.Join(dataDir, "strategies.json"),
		runID:  uuid.NewString(),
		stats:  make(map[string]*Stats),
		logger: logger.GetLogger(),
	}

	if err := fs.load(); err != nil {
		// A corrupt stats file should not block extraction; start over
		fs.logger.WithError(err).Warn("failed to load strategy stats, starting fresh")
		fs.stats = make(map[string]*Stats)
	}

	return fs, nil
}

// RunID returns this store instance's run identifier.
func (fs *FileStore) RunID() string { return fs.runID }

func (fs *FileStore) Record(strategy string, success bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	s, ok := fs.stats[strategy]
	if !ok {
		s = &Stats{}
		fs.stats[strategy] = s
	}
	s.Attempts++
	if success {
		s.Successes++
	}
	s.LastUsed = time.Now()
	s.LastRunID = fs.runID

	return fs.save()
}

func (fs *FileStore) SuccessRate(strategy string) float64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if s, ok := fs.stats[strategy]; ok {
		return s.Rate()
	}
	return 0
}

func (fs *FileStore) Best() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return bestOf(fs.stats)
}

// load reads the stats file if it exists. Callers must hold the lock
// or have exclusive access.
func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read stats file: %w", err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return fmt.Errorf("failed to parse stats file: %w", err)
	}
	if ff.Strategies != nil {
		fs.stats = ff.Strategies
	}
	return nil
}

// save writes the stats file atomically. Callers must hold the lock.
func (fs *FileStore) save() error {
	ff := fileFormat{
		Version:    1,
		UpdatedAt:  time.Now(),
		Strategies: fs.stats,
	}

	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	return os.Rename(tmp, fs.path)
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return filepath.Join(xdgDataHome, "igcarousel"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "igcarousel"), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "igcarousel"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "igcarousel"), nil
		}
		fallthrough
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".igcarousel"), nil
	}
}
