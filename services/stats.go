// services/stats.go - Dashboard counts, cached between writes
package services

import (
	"time"

	"scripturedash/models"

	gocache "github.com/patrickmn/go-cache"
)

const (
	statsTTL = 5 * time.Minute
	statsKey = "corpus:stats"
)

// CorpusStats is what the dashboard landing page shows.
type CorpusStats struct {
	Books       int64      `json:"books"`
	Chapters    int64      `json:"chapters"`
	Verses      int64      `json:"verses"`
	LastUpdated *time.Time `json:"lastUpdated"`
}

// Stats returns corpus counts. Results are cached until the next write or
// statsTTL, whichever comes first.
func (s *CorpusService) Stats() (*CorpusStats, error) {
	if cached, ok := s.cache.Get(statsKey); ok {
		stats := cached.(CorpusStats)
		return &stats, nil
	}

	gen := s.generation()
	var stats CorpusStats
	if err := s.db.Model(&models.Book{}).Count(&stats.Books).Error; err != nil {
		return nil, NewInternal("count books", err)
	}
	if err := s.db.Model(&models.Chapter{}).Count(&stats.Chapters).Error; err != nil {
		return nil, NewInternal("count chapters", err)
	}
	if err := s.db.Model(&models.Verse{}).Count(&stats.Verses).Error; err != nil {
		return nil, NewInternal("count verses", err)
	}

	last, err := s.LastUpdated()
	if err != nil {
		return nil, err
	}
	stats.LastUpdated = last

	s.storeStats(gen, stats)
	return &stats, nil
}

func (s *CorpusService) generation() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.writes
}

// storeStats caches stats counted at generation gen unless a write has
// happened since.
func (s *CorpusService) storeStats(gen uint64, stats CorpusStats) bool {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.writes != gen {
		return false
	}
	s.cache.Set(statsKey, stats, gocache.DefaultExpiration)
	return true
}

// LastUpdated is the most recent change to any book, chapter or verse, or nil
// for an empty corpus.
func (s *CorpusService) LastUpdated() (*time.Time, error) {
	var latest *time.Time

	var books []models.Book
	if err := s.db.Order("updated_at DESC").Limit(1).Find(&books).Error; err != nil {
		return nil, NewInternal("fetch last update", err)
	}
	if len(books) > 0 {
		latest = later(latest, books[0].UpdatedAt)
	}

	var chapters []models.Chapter
	if err := s.db.Order("updated_at DESC").Limit(1).Find(&chapters).Error; err != nil {
		return nil, NewInternal("fetch last update", err)
	}
	if len(chapters) > 0 {
		latest = later(latest, chapters[0].UpdatedAt)
	}

	var verses []models.Verse
	if err := s.db.Order("updated_at DESC").Limit(1).Find(&verses).Error; err != nil {
		return nil, NewInternal("fetch last update", err)
	}
	if len(verses) > 0 {
		latest = later(latest, verses[0].UpdatedAt)
	}

	return latest, nil
}

func later(current *time.Time, candidate time.Time) *time.Time {
	if current == nil || candidate.After(*current) {
		t := candidate
		return &t
	}
	return current
}

// invalidate drops cached stats after a write.
func (s *CorpusService) invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.writes++
	s.cache.Flush()
}
