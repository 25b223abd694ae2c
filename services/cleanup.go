// services/cleanup.go - Orphan sweeps
package services

import (
	"log"
	"sync"
	"time"

	"scripturedash/models"

	"gorm.io/gorm"
)

// OrphanCounts are chapters without a book and verses without a reachable
// chapter. The export leaves both out.
type OrphanCounts struct {
	Chapters int64 `json:"chapters"`
	Verses   int64 `json:"verses"`
}

func orphanChapters(tx *gorm.DB) *gorm.DB {
	return tx.Model(&models.Chapter{}).
		Where("book_id NOT IN (?)", tx.Session(&gorm.Session{NewDB: true}).Model(&models.Book{}).Select("id"))
}

func orphanVerses(tx *gorm.DB) *gorm.DB {
	fresh := tx.Session(&gorm.Session{NewDB: true})
	reachable := fresh.Model(&models.Chapter{}).Select("id").
		Where("book_id IN (?)", fresh.Model(&models.Book{}).Select("id"))
	return tx.Model(&models.Verse{}).Where("chapter_id NOT IN (?)", reachable)
}

// CountOrphans reports what PurgeOrphans would remove.
func (s *CorpusService) CountOrphans() (*OrphanCounts, error) {
	var counts OrphanCounts
	if err := orphanChapters(s.db).Count(&counts.Chapters).Error; err != nil {
		return nil, NewInternal("count orphan chapters", err)
	}
	if err := orphanVerses(s.db).Count(&counts.Verses).Error; err != nil {
		return nil, NewInternal("count orphan verses", err)
	}
	return &counts, nil
}

// PurgeOrphans deletes orphaned verses and chapters in one transaction.
func (s *CorpusService) PurgeOrphans() (*OrphanCounts, error) {
	var counts OrphanCounts
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := orphanVerses(tx).Delete(&models.Verse{})
		if res.Error != nil {
			return NewInternal("delete orphan verses", res.Error)
		}
		counts.Verses = res.RowsAffected

		res = orphanChapters(tx).Delete(&models.Chapter{})
		if res.Error != nil {
			return NewInternal("delete orphan chapters", res.Error)
		}
		counts.Chapters = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	if counts.Chapters > 0 || counts.Verses > 0 {
		s.invalidate()
	}
	return &counts, nil
}

// CleanupService handles background cleanup tasks
type CleanupService struct {
	corpus   *CorpusService
	interval time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	lastRun time.Time
	last    OrphanCounts
}

var cleanupService *CleanupService

// InitCleanupService initializes the singleton cleanup service.
func InitCleanupService(corpus *CorpusService, interval time.Duration) *CleanupService {
	cleanupService = NewCleanupService(corpus, interval)
	return cleanupService
}

// GetCleanupService returns the initialized cleanup service, or nil.
func GetCleanupService() *CleanupService {
	return cleanupService
}

func NewCleanupService(corpus *CorpusService, interval time.Duration) *CleanupService {
	return &CleanupService{corpus: corpus, interval: interval}
}

// Start sweeps once immediately and then every interval until Stop.
func (s *CleanupService) Start() {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.RunOnce()
		for {
			select {
			case <-ticker.C:
				s.RunOnce()
			case <-stop:
				return
			}
		}
	}()
	log.Printf("🧹 Orphan cleanup running every %v", s.interval)
}

// Stop ends the background sweep and waits for a running pass to finish.
func (s *CleanupService) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// RunOnce purges orphans now and remembers the result.
func (s *CleanupService) RunOnce() (*OrphanCounts, error) {
	counts, err := s.corpus.PurgeOrphans()
	if err != nil {
		log.Printf("❌ Orphan cleanup failed: %v", err)
		return nil, err
	}

	s.mu.Lock()
	s.lastRun = time.Now().UTC()
	s.last = *counts
	s.mu.Unlock()

	if counts.Chapters > 0 || counts.Verses > 0 {
		log.Printf("✅ Cleaned up %d orphan chapters and %d orphan verses", counts.Chapters, counts.Verses)
	}
	return counts, nil
}

// LastRun returns when RunOnce last succeeded and what it removed. The time
// is zero if it never ran.
func (s *CleanupService) LastRun() (time.Time, OrphanCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.last
}
