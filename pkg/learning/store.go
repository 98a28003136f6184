package learning

import (
	"sort"
	"sync"
	"time"
)

// Store records how well navigation strategies perform so drivers can
// try the historically best one first. It is injected rather than held
// as mutable state on a long-lived agent, which keeps the navigation
// core testable.
type Store interface {
	// Record notes one attempt of the named strategy and whether it
	// advanced the carousel.
	Record(strategy string, success bool) error
	// SuccessRate returns the fraction of recorded attempts that
	// succeeded, or 0 when the strategy was never tried.
	SuccessRate(strategy string) float64
	// Best returns the strategy with the highest success rate, or ""
	// when nothing has been recorded. Ties go to the more-attempted
	// strategy.
	Best() string
}

// Stats holds the counters kept per strategy.
type Stats struct {
	Attempts  int       `json:"attempts"`
	Successes int       `json:"successes"`
	LastUsed  time.Time `json:"last_used"`
	LastRunID string    `json:"last_run_id,omitempty"`
}

// Rate returns the success fraction for these stats.
func (s Stats) Rate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Attempts)
}

// MemoryStore is an in-process Store, used in tests and as the default
// when persistence is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	stats map[string]*Stats
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stats: make(map[string]*Stats)}
}

func (m *MemoryStore) Record(strategy string, success bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[strategy]
	if !ok {
		s = &Stats{}
		m.stats[strategy] = s
	}
	s.Attempts++
	if success {
		s.Successes++
	}
	s.LastUsed = time.Now()
	return nil
}

func (m *MemoryStore) SuccessRate(strategy string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stats[strategy]; ok {
		return s.Rate()
	}
	return 0
}

func (m *MemoryStore) Best() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return bestOf(m.stats)
}

func bestOf(stats map[string]*Stats) string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	// Stable order so ties are deterministic
	sort.Strings(names)

	best := ""
	bestRate := -1.0
	bestAttempts := -1
	for _, name := range names {
		s := stats[name]
		if s.Rate() > bestRate || (s.Rate() == bestRate && s.Attempts > bestAttempts) {
			best = name
			bestRate = s.Rate()
			bestAttempts = s.Attempts
		}
	}
	return best
}
