package episodes

import (
	"log/slog"
	"sync"
)

// Show is a catalog entry. Many files may share one Show; the listings index
// is swapped in atomically when a download succeeds.
type Show struct {
	ID   string
	Name string

	mu    sync.RWMutex
	index *Index
}

// NewShow creates a show without listings.
func NewShow(id, name string) *Show {
	return &Show{ID: id, Name: name}
}

// Index returns the current listings index, or nil before a download.
func (s *Show) Index() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// HasListings reports whether a populated index is installed.
func (s *Show) HasListings() bool {
	ix := s.Index()
	return ix != nil && ix.Populated()
}

// AddEpisodes builds a fresh index from records and installs it. The
// previous index stays in place if population fails.
func (s *Show) AddEpisodes(records []Record, numbering Numbering, logger *slog.Logger) (AddReport, error) {
	ix := NewIndex(numbering, logger)
	report, err := ix.AddEpisodes(records)
	if err != nil {
		return report, err
	}
	s.mu.Lock()
	s.index = ix
	s.mu.Unlock()
	return report, nil
}
