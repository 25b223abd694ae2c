// services/export_service.go - Full corpus export
package services

import (
	"context"
	"log"

	"scripturedash/export"
	"scripturedash/models"
)

// Export stages, in the order they are reported.
const (
	StageBooks     = "books"
	StageChapters  = "chapters"
	StageVerses    = "verses"
	StageStructure = "structure"
	StageDone      = "done"
)

// ProgressFunc receives a stage name and a percentage between 0 and 100.
type ProgressFunc func(stage string, percent int)

// ExportResult is the structured document plus what went into it.
type ExportResult struct {
	Document export.Document `json:"document"`
	Fetched  export.Stats    `json:"fetched"`
	Exported export.Stats    `json:"exported"`
	Orphans  export.Orphans  `json:"orphans"`
}

// Export loads every book, chapter and verse and structures them into the
// nested export document. progress may be nil.
func (s *CorpusService) Export(ctx context.Context, progress ProgressFunc) (*ExportResult, error) {
	report := func(stage string, pct int) {
		if progress != nil {
			progress(stage, pct)
		}
	}

	db := s.db.WithContext(ctx)

	report(StageBooks, 10)
	var books []models.Book
	if err := db.Find(&books).Error; err != nil {
		return nil, NewInternal("fetch books", err)
	}

	report(StageChapters, 30)
	var chapters []models.Chapter
	if err := db.Find(&chapters).Error; err != nil {
		return nil, NewInternal("fetch chapters", err)
	}

	report(StageVerses, 50)
	var verses []models.Verse
	if err := db.Find(&verses).Error; err != nil {
		return nil, NewInternal("fetch verses", err)
	}

	report(StageStructure, 70)
	return structureExport(books, chapters, verses, report), nil
}

func structureExport(books []models.Book, chapters []models.Chapter, verses []models.Verse, report ProgressFunc) *ExportResult {
	report(StageStructure, 80)
	doc, orphans := export.Build(books, chapters, verses)
	if !orphans.Empty() {
		log.Printf("⚠️  Export skipped %d orphan chapters and %d orphan verses",
			len(orphans.ChapterIDs), len(orphans.VerseIDs))
	}
	report(StageStructure, 90)

	result := &ExportResult{
		Document: doc,
		Fetched:  export.Stats{Books: len(books), Chapters: len(chapters), Verses: len(verses)},
		Exported: export.Count(doc),
		Orphans:  orphans,
	}
	report(StageDone, 100)
	return result
}
