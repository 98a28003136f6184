package downloader

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"igcarousel/pkg/ratelimit"
)

// MockClient is a mock image downloader.
type MockClient struct {
	downloadDelay   time.Duration
	downloadError   error
	downloadCounter int32
}

func (m *MockClient) DownloadImage(url string) ([]byte, error) {
	atomic.AddInt32(&m.downloadCounter, 1)
	if m.downloadDelay > 0 {
		time.Sleep(m.downloadDelay)
	}
	if m.downloadError != nil {
		return nil, m.downloadError
	}
	return []byte("mock image data for " + url), nil
}

func (m *MockClient) GetDownloadCount() int {
	return int(atomic.LoadInt32(&m.downloadCounter))
}

// MockStorage is a mock image store.
type MockStorage struct {
	saved     map[string]bool
	saveError error
	mu        sync.Mutex
}

func NewMockStorage() *MockStorage {
	return &MockStorage{saved: make(map[string]bool)}
}

func (m *MockStorage) key(shortcode string, index int) string {
	return fmt.Sprintf("%s_%d", shortcode, index)
}

func (m *MockStorage) IsSaved(shortcode string, index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[m.key(shortcode, index)]
}

func (m *MockStorage) SavedPath(shortcode string, index int) string {
	return filepath.Join("output", m.key(shortcode, index)+".jpg")
}

func (m *MockStorage) SaveImage(data []byte, shortcode string, index int) (string, error) {
	if m.saveError != nil {
		return "", m.saveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name := m.key(shortcode, index)
	m.saved[name] = true
	return filepath.Join("output", name+".jpg"), nil
}

func (m *MockStorage) GetSavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func collectResults(pool *WorkerPool, wg *sync.WaitGroup, results *[]DownloadResult) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range pool.Results() {
			*results = append(*results, result)
		}
	}()
}

func TestWorkerPoolBasicFunctionality(t *testing.T) {
	mockClient := &MockClient{downloadDelay: 10 * time.Millisecond}
	mockStorage := NewMockStorage()
	rateLimiter := ratelimit.NewTokenBucket(100, time.Second)

	pool := NewWorkerPool(3, mockClient, mockStorage, rateLimiter, nil)
	pool.Start()

	var results []DownloadResult
	var wg sync.WaitGroup
	collectResults(pool, &wg, &results)

	numJobs := 10
	for i := 0; i < numJobs; i++ {
		job := DownloadJob{
			URL:       fmt.Sprintf("https://example.com/image%d.jpg", i),
			Shortcode: "ABC123",
			Index:     i,
		}
		if err := pool.Submit(job); err != nil {
			t.Errorf("Failed to submit job %d: %v", i, err)
		}
	}

	pool.Stop()
	wg.Wait()

	if len(results) != numJobs {
		t.Errorf("Expected %d results, got %d", numJobs, len(results))
	}

	for _, result := range results {
		if !result.Success {
			t.Errorf("Expected job %d to succeed: %v", result.Job.Index, result.Error)
		}
		if result.Path == "" {
			t.Errorf("Expected job %d to report a saved path", result.Job.Index)
		}
		if result.Hash == "" {
			t.Errorf("Expected job %d to report a content hash", result.Job.Index)
		}
	}

	if mockClient.GetDownloadCount() != numJobs {
		t.Errorf("Expected %d download calls, got %d", numJobs, mockClient.GetDownloadCount())
	}
	if mockStorage.GetSavedCount() != numJobs {
		t.Errorf("Expected %d saved images, got %d", numJobs, mockStorage.GetSavedCount())
	}
}

func TestWorkerPoolWithErrors(t *testing.T) {
	mockClient := &MockClient{
		downloadError: fmt.Errorf("download error"),
	}
	mockStorage := NewMockStorage()
	rateLimiter := ratelimit.NewTokenBucket(100, time.Second)

	pool := NewWorkerPool(2, mockClient, mockStorage, rateLimiter, nil)
	pool.Start()

	var results []DownloadResult
	var wg sync.WaitGroup
	collectResults(pool, &wg, &results)

	numJobs := 5
	for i := 0; i < numJobs; i++ {
		job := DownloadJob{
			URL:       fmt.Sprintf("https://example.com/image%d.jpg", i),
			Shortcode: "ABC123",
			Index:     i,
		}
		if err := pool.Submit(job); err != nil {
			t.Errorf("Failed to submit job %d: %v", i, err)
		}
	}

	pool.Stop()
	wg.Wait()

	if len(results) != numJobs {
		t.Errorf("Expected %d results, got %d", numJobs, len(results))
	}

	for _, result := range results {
		if result.Success {
			t.Error("Expected all downloads to fail")
		}
		if result.Error == nil {
			t.Error("Expected error in result")
		}
	}
}

func TestWorkerPoolConcurrency(t *testing.T) {
	mockClient := &MockClient{downloadDelay: 100 * time.Millisecond}
	mockStorage := NewMockStorage()
	rateLimiter := ratelimit.NewTokenBucket(100, time.Second)

	pool := NewWorkerPool(5, mockClient, mockStorage, rateLimiter, nil)
	pool.Start()

	var results []DownloadResult
	var wg sync.WaitGroup
	collectResults(pool, &wg, &results)

	numJobs := 10
	startTime := time.Now()

	for i := 0; i < numJobs; i++ {
		job := DownloadJob{
			URL:       fmt.Sprintf("https://example.com/image%d.jpg", i),
			Shortcode: "ABC123",
			Index:     i,
		}
		if err := pool.Submit(job); err != nil {
			t.Errorf("Failed to submit job %d: %v", i, err)
		}
	}

	pool.Stop()
	wg.Wait()

	elapsed := time.Since(startTime)

	// 10 jobs at 100ms each across 5 workers should take about 200ms.
	expectedTime := 300 * time.Millisecond
	if elapsed > expectedTime {
		t.Errorf("Downloads took too long: %v (expected < %v)", elapsed, expectedTime)
	}

	if len(results) != numJobs {
		t.Errorf("Expected %d results, got %d", numJobs, len(results))
	}
}

func TestWorkerPoolSkipsSavedImages(t *testing.T) {
	mockClient := &MockClient{}
	mockStorage := NewMockStorage()

	mockStorage.saved["ABC123_0"] = true
	mockStorage.saved["ABC123_2"] = true

	rateLimiter := ratelimit.NewTokenBucket(100, time.Second)

	pool := NewWorkerPool(2, mockClient, mockStorage, rateLimiter, nil)
	pool.Start()

	var results []DownloadResult
	var wg sync.WaitGroup
	collectResults(pool, &wg, &results)

	for i := 0; i < 4; i++ {
		job := DownloadJob{
			URL:       fmt.Sprintf("https://example.com/image%d.jpg", i),
			Shortcode: "ABC123",
			Index:     i,
		}
		if err := pool.Submit(job); err != nil {
			t.Errorf("Failed to submit job: %v", err)
		}
	}

	pool.Stop()
	wg.Wait()

	if len(results) != 4 {
		t.Errorf("Expected 4 results, got %d", len(results))
	}

	// Skipped images still report where the existing file lives.
	for _, result := range results {
		if !result.Success {
			t.Errorf("Expected job %d to succeed: %v", result.Job.Index, result.Error)
		}
		if result.Path == "" {
			t.Errorf("Expected job %d to report a saved path", result.Job.Index)
		}
	}

	// Indexes 0 and 2 were already on disk.
	if mockClient.GetDownloadCount() != 2 {
		t.Errorf("Expected 2 downloads, got %d", mockClient.GetDownloadCount())
	}
	if mockStorage.GetSavedCount() != 4 {
		t.Errorf("Expected 4 saved images, got %d", mockStorage.GetSavedCount())
	}
}
