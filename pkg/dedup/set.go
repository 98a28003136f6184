package dedup

import "hash/fnv"

// Set tracks which keys have been seen, storing fnv64 hashes instead
// of the keys themselves. An extraction call owns its Set for its
// whole lifetime, so no locking is needed.
type Set struct {
	seen map[uint64]struct{}
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[uint64]struct{})}
}

// AddIfNotExists records the key and reports whether it was new.
func (s *Set) AddIfNotExists(key string) bool {
	h := s.hash(key)
	if _, ok := s.seen[h]; ok {
		return false
	}
	s.seen[h] = struct{}{}
	return true
}

// Contains reports whether the key has been recorded.
func (s *Set) Contains(key string) bool {
	_, ok := s.seen[s.hash(key)]
	return ok
}

// Len returns the number of distinct keys recorded.
func (s *Set) Len() int {
	return len(s.seen)
}

func (s *Set) hash(key string) uint64 {
	h := fnv.New64()
	h.Write([]byte(key))
	return h.Sum64()
}
