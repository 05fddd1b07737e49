package server

import "sync"

// DedupStore checks the dedup hash of newly parsed documents before the
// server accepts them. Hash computation belongs to the pipelines; rejecting
// re-uploads belongs here, at the caller.
type DedupStore interface {
	// Seen reports whether the hash was recorded before, recording it
	// when new.
	Seen(hash string) bool
}

// MemoryDedupStore is an in-process DedupStore. Safe for concurrent use.
type MemoryDedupStore struct {
	mu     sync.Mutex
	hashes map[string]struct{}
}

// NewMemoryDedupStore creates an empty in-memory dedup store
func NewMemoryDedupStore() *MemoryDedupStore {
	return &MemoryDedupStore{hashes: make(map[string]struct{})}
}

// Seen records the hash and reports whether it was present already
func (s *MemoryDedupStore) Seen(hash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hashes[hash]; ok {
		return true
	}
	s.hashes[hash] = struct{}{}
	return false
}
