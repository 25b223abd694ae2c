// services/bulk_upload.go - Paste a whole chapter of verses at once
package services

import (
	"errors"
	"log"
	"strings"

	"scripturedash/models"
	"scripturedash/verseparser"

	"gorm.io/gorm"
)

// BulkUploadInput names the target chapter and carries the pasted text. The
// book is picked by id or by name; a name that matches nothing creates a new
// book. The chapter works the same way with id or number.
type BulkUploadInput struct {
	BookID        string `json:"bookId"`
	BookName      string `json:"bookName"`
	Testament     string `json:"testament"`
	ChapterID     string `json:"chapterId"`
	ChapterNumber int    `json:"chapterNumber"`
	VersesText    string `json:"versesText"`
}

// BulkUploadResult reports what the upload changed.
type BulkUploadResult struct {
	Book         models.Book         `json:"book"`
	Chapter      models.Chapter      `json:"chapter"`
	BookCreated  bool                `json:"bookCreated"`
	ChapterAdded bool                `json:"chapterCreated"`
	Created      int                 `json:"created"`
	Updated      int                 `json:"updated"`
	Unchanged    int                 `json:"unchanged"`
	Verses       []verseparser.Line  `json:"verses"`
	Warnings     []verseparser.Issue `json:"warnings"`
}

// Total is the number of verses in the block.
func (r *BulkUploadResult) Total() int {
	return r.Created + r.Updated + r.Unchanged
}

// ParsePreview is a dry run of the parser used by the upload dialog.
type ParsePreview struct {
	Verses []verseparser.Line  `json:"verses"`
	Issues []verseparser.Issue `json:"issues"`
}

func (in BulkUploadInput) validate() error {
	if strings.TrimSpace(in.BookID) == "" && strings.TrimSpace(in.BookName) == "" {
		return NewInvalidRequest("Please select a book or enter a book name")
	}
	if strings.TrimSpace(in.ChapterID) == "" && in.ChapterNumber < 1 {
		return NewInvalidRequest("Please select a chapter or enter a chapter number")
	}
	if strings.TrimSpace(in.VersesText) == "" {
		return NewInvalidRequest("Please enter verses text")
	}
	if in.Testament != "" {
		if _, ok := models.ParseTestament(in.Testament); !ok {
			return NewInvalidRequest("Covenant must be OLD, NEW, or CUSTOM")
		}
	}
	return nil
}

// PreviewVerses parses text without touching the database.
func PreviewVerses(text string) (*ParsePreview, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewInvalidRequest("Please enter verses text")
	}
	lines, err := verseparser.Parse(strings.TrimSpace(text))
	if err != nil {
		return nil, parseFailure(err)
	}
	issues := verseparser.Audit(lines)
	if issues == nil {
		issues = []verseparser.Issue{}
	}
	return &ParsePreview{Verses: lines, Issues: issues}, nil
}

func parseFailure(err error) *ServiceError {
	se := NewInvalidRequest(err.Error())
	var perr *verseparser.ParseError
	if errors.As(err, &perr) {
		se.Details = map[string]any{"line": perr.Line, "reason": perr.Kind.Error()}
	}
	se.Err = err
	return se
}

// BulkUpload parses the block and upserts its verses into the target chapter
// in one transaction. Duplicate numbers or short verses reject the whole block;
// out-of-order numbering is accepted and reported as a warning.
func (s *CorpusService) BulkUpload(in BulkUploadInput) (*BulkUploadResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	lines, err := verseparser.Parse(strings.TrimSpace(in.VersesText))
	if err != nil {
		return nil, parseFailure(err)
	}

	var warnings []verseparser.Issue
	var fatal []verseparser.Issue
	for _, issue := range verseparser.Audit(lines) {
		if issue.Fatal() {
			fatal = append(fatal, issue)
		} else {
			warnings = append(warnings, issue)
		}
	}
	if len(fatal) > 0 {
		se := NewInvalidRequest(fatal[0].Message)
		se.Details = map[string]any{"issues": fatal}
		return nil, se
	}
	if warnings == nil {
		warnings = []verseparser.Issue{}
	}

	result := &BulkUploadResult{Verses: lines, Warnings: warnings}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		book, created, err := s.resolveUploadBook(tx, in)
		if err != nil {
			return err
		}
		result.Book, result.BookCreated = *book, created

		chapter, added, err := s.resolveUploadChapter(tx, book, in)
		if err != nil {
			return err
		}
		result.Chapter, result.ChapterAdded = *chapter, added

		return s.upsertVerses(tx, chapter.ID, lines, result)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate()
	log.Printf("📥 Bulk upload to %s %d: %d created, %d updated, %d unchanged",
		result.Book.Name, result.Chapter.Number, result.Created, result.Updated, result.Unchanged)
	return result, nil
}

func (s *CorpusService) resolveUploadBook(tx *gorm.DB, in BulkUploadInput) (*models.Book, bool, error) {
	if id := strings.TrimSpace(in.BookID); id != "" {
		book, err := s.findBook(tx, id)
		if err != nil {
			if IsNotFound(err) {
				return nil, false, NewInvalidRequest("Selected book does not exist")
			}
			return nil, false, err
		}
		return book, false, nil
	}

	book, err := s.findBookByName(tx, in.BookName)
	if err != nil {
		return nil, false, err
	}
	if book != nil {
		return book, false, nil
	}

	name := strings.TrimSpace(in.BookName)
	if len([]rune(name)) < MinNameLength {
		return nil, false, NewInvalidRequest("Book name must be at least 3 characters long")
	}
	testament := models.TestamentCustom
	if in.Testament != "" {
		testament, _ = models.ParseTestament(in.Testament)
	}
	book, err = s.createBook(tx, name, testament, nil)
	if err != nil {
		return nil, false, err
	}
	return book, true, nil
}

func (s *CorpusService) resolveUploadChapter(tx *gorm.DB, book *models.Book, in BulkUploadInput) (*models.Chapter, bool, error) {
	if id := strings.TrimSpace(in.ChapterID); id != "" {
		chapter, err := s.findChapter(tx, id)
		if err != nil {
			if IsNotFound(err) {
				return nil, false, NewInvalidRequest("Selected chapter does not exist")
			}
			return nil, false, err
		}
		if chapter.BookID != book.ID {
			return nil, false, NewInvalidRequest("Selected chapter does not belong to the selected book")
		}
		return chapter, false, nil
	}

	chapter, err := s.findChapterByNumber(tx, book.ID, in.ChapterNumber)
	if err != nil {
		return nil, false, err
	}
	if chapter != nil {
		return chapter, false, nil
	}
	chapter, err = s.createChapter(tx, book.ID, in.ChapterNumber)
	if err != nil {
		return nil, false, err
	}
	return chapter, true, nil
}

func (s *CorpusService) upsertVerses(tx *gorm.DB, chapterID string, lines []verseparser.Line, result *BulkUploadResult) error {
	var existing []models.Verse
	if err := tx.Where("chapter_id = ?", chapterID).Find(&existing).Error; err != nil {
		return NewInternal("fetch verses", err)
	}
	byNumber := make(map[int]models.Verse, len(existing))
	for _, v := range existing {
		byNumber[v.Number] = v
	}

	for _, line := range lines {
		current, ok := byNumber[line.Number]
		switch {
		case !ok:
			verse := models.Verse{Number: line.Number, Text: line.Text, ChapterID: chapterID}
			if err := tx.Create(&verse).Error; err != nil {
				return NewInternal("create verse", err)
			}
			result.Created++
		case current.Text == line.Text:
			result.Unchanged++
		default:
			if err := tx.Model(&current).Update("text", line.Text).Error; err != nil {
				return NewInternal("update verse", err)
			}
			result.Updated++
		}
	}
	return nil
}
