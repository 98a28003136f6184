package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"igcarousel/pkg/logger"
)

// Fetcher retrieves the bytes behind a URL for content hashing.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HashResult is the outcome of a content-hash dedup pass.
type HashResult struct {
	// URLs are the survivors, in input order.
	URLs []string
	// Hashes maps each surviving URL to its content hash, when one
	// could be computed. URLs kept because their fetch failed have no
	// entry.
	Hashes map[string]string
}

// ByContentHash drops URLs whose downloaded bytes hash to something
// already seen. This is the expensive second-stage dedup; run
// ByPattern first. A URL whose fetch fails is kept, not dropped -
// missing an image is worse than a rare duplicate.
//
// The seen set may be shared across calls by the caller to track
// duplicates across posts; pass nil to start fresh.
func ByContentHash(ctx context.Context, urls []string, fetcher Fetcher, seen *Set, log logger.Logger) *HashResult {
	if seen == nil {
		seen = NewSet()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	result := &HashResult{Hashes: make(map[string]string)}
	for _, u := range urls {
		data, err := fetcher.Fetch(ctx, u)
		if err != nil {
			log.WithError(err).WithField("url", u).Warn("content-hash fetch failed, keeping URL")
			result.URLs = append(result.URLs, u)
			continue
		}

		hash := HashBytes(data)
		if !seen.AddIfNotExists(hash) {
			log.DebugWithFields("dropping content-hash duplicate", map[string]interface{}{
				"url":  u,
				"hash": hash,
			})
			continue
		}

		result.URLs = append(result.URLs, u)
		result.Hashes[u] = hash
	}

	return result
}

// HashBytes returns the hex sha256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
