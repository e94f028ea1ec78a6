package server

import (
	"sync"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
)

// Store holds the dashboard of the currently loaded table. Each upload
// replaces it wholesale; there is no incremental update.
type Store struct {
	mu      sync.RWMutex
	current *analysis.Dashboard
}

// Replace swaps in a new dashboard and returns the previous one.
func (s *Store) Replace(d *analysis.Dashboard) *analysis.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = d
	return prev
}

// Current returns the loaded dashboard, or nil before the first upload.
func (s *Store) Current() *analysis.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
