// services/import.go - Load an export document back into the corpus
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"scripturedash/export"
	"scripturedash/models"

	"gorm.io/gorm"
)

var errDryRun = errors.New("dry run")

// ImportResult counts what an import created or changed.
type ImportResult struct {
	DryRun          bool `json:"dryRun"`
	BooksCreated    int  `json:"booksCreated"`
	ChaptersCreated int  `json:"chaptersCreated"`
	VersesCreated   int  `json:"versesCreated"`
	VersesUpdated   int  `json:"versesUpdated"`
	VersesUnchanged int  `json:"versesUnchanged"`
}

func validateDocument(doc export.Document) error {
	seen := make(map[string]bool, len(doc.Books))
	for _, b := range doc.Books {
		name := strings.TrimSpace(b.Name)
		if len([]rune(name)) < MinNameLength {
			return NewInvalidRequest(fmt.Sprintf("book name %q must be at least 3 characters long", b.Name))
		}
		if _, ok := models.ParseTestament(b.Testament); !ok {
			return NewInvalidRequest(fmt.Sprintf("book %q has unknown testament %q", b.Name, b.Testament))
		}
		key := strings.ToLower(name)
		if seen[key] {
			return NewInvalidRequest(fmt.Sprintf("book %q appears twice", b.Name))
		}
		seen[key] = true

		chapters := make(map[int]bool, len(b.Chapters))
		for _, c := range b.Chapters {
			if c.Number < 1 {
				return NewInvalidRequest(fmt.Sprintf("%s: chapter number must be positive", b.Name))
			}
			if chapters[c.Number] {
				return NewInvalidRequest(fmt.Sprintf("%s %d appears twice", b.Name, c.Number))
			}
			chapters[c.Number] = true

			verses := make(map[int]bool, len(c.Verses))
			for _, v := range c.Verses {
				if v.Number < 1 {
					return NewInvalidRequest(fmt.Sprintf("%s %d: verse number must be positive", b.Name, c.Number))
				}
				if verses[v.Number] {
					return NewInvalidRequest(fmt.Sprintf("%s %d:%d appears twice", b.Name, c.Number, v.Number))
				}
				verses[v.Number] = true
			}
		}
	}
	return nil
}

// ImportDocument merges doc into the corpus. Books match by name, chapters by
// number and verses by number; existing text is overwritten. With dryRun the
// counts are computed and the transaction is rolled back.
func (s *CorpusService) ImportDocument(doc export.Document, dryRun bool) (*ImportResult, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	result := &ImportResult{DryRun: dryRun}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, b := range doc.Books {
			if err := s.importBook(tx, b, result); err != nil {
				return err
			}
		}
		if dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, err
	}

	if !dryRun {
		s.invalidate()
	}
	log.Printf("📦 Import (dry run: %v): %d books, %d chapters, %d verses created; %d verses updated",
		dryRun, result.BooksCreated, result.ChaptersCreated, result.VersesCreated, result.VersesUpdated)
	return result, nil
}

func (s *CorpusService) importBook(tx *gorm.DB, b export.Book, result *ImportResult) error {
	book, err := s.findBookByName(tx, b.Name)
	if err != nil {
		return err
	}
	if book == nil {
		testament, _ := models.ParseTestament(b.Testament)
		if book, err = s.createBook(tx, strings.TrimSpace(b.Name), testament, nil); err != nil {
			return err
		}
		result.BooksCreated++
	}

	for _, c := range b.Chapters {
		chapter, err := s.findChapterByNumber(tx, book.ID, c.Number)
		if err != nil {
			return err
		}
		if chapter == nil {
			if chapter, err = s.createChapter(tx, book.ID, c.Number); err != nil {
				return err
			}
			result.ChaptersCreated++
		}

		for _, v := range c.Verses {
			if err := s.importVerse(tx, chapter.ID, v, result); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *CorpusService) importVerse(tx *gorm.DB, chapterID string, v export.Verse, result *ImportResult) error {
	existing, err := s.findVerseByNumber(tx, chapterID, v.Number)
	if err != nil {
		return err
	}
	switch {
	case existing == nil:
		verse := models.Verse{Number: v.Number, Text: v.Text, ChapterID: chapterID}
		if err := tx.Create(&verse).Error; err != nil {
			return NewInternal("create verse", err)
		}
		result.VersesCreated++
	case existing.Text == v.Text:
		result.VersesUnchanged++
	default:
		if err := tx.Model(existing).Update("text", v.Text).Error; err != nil {
			return NewInternal("update verse", err)
		}
		result.VersesUpdated++
	}
	return nil
}
