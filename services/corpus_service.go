// services/corpus_service.go - Books, chapters and verses over GORM
package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"scripturedash/models"
	"scripturedash/verseparser"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 10000
	MinNameLength   = 3
)

// CorpusService owns every read and write of the corpus tables.
type CorpusService struct {
	db    *gorm.DB
	cache *gocache.Cache

	// cacheMu orders stats caching against invalidation; writes counts them
	cacheMu sync.Mutex
	writes  uint64
}

func NewCorpusService(db *gorm.DB) *CorpusService {
	return &CorpusService{
		db:    db,
		cache: gocache.New(statsTTL, 10*time.Minute),
	}
}

// ListParams are the query options shared by the list screens.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	Testament string
	BookID    string
	ChapterID string
}

func (p *ListParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	p.Search = strings.TrimSpace(p.Search)
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.Limit
}

func (p ListParams) like() string {
	return "%" + strings.ToLower(p.Search) + "%"
}

// Page is one page of a list with its totals.
type Page[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
}

func newPage[T any](data []T, total int64, p ListParams) *Page[T] {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	if pages < 1 {
		pages = 1
	}
	if data == nil {
		data = []T{}
	}
	return &Page[T]{Data: data, TotalCount: total, TotalPages: pages, Page: p.Page, Limit: p.Limit}
}

// ================== BOOKS ==================

// BookInput is the create/update payload for a book.
type BookInput struct {
	Name       string `json:"name"`
	Testament  string `json:"testament"`
	OrderIndex *int   `json:"orderIndex"`
}

func (in BookInput) validate() (string, models.Testament, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", "", NewInvalidRequest("Book name is required")
	}
	if len([]rune(name)) < MinNameLength {
		return "", "", NewInvalidRequest("Book name must be at least 3 characters long")
	}
	if strings.TrimSpace(in.Testament) == "" {
		return "", "", NewInvalidRequest("Covenant is required")
	}
	testament, ok := models.ParseTestament(in.Testament)
	if !ok {
		return "", "", NewInvalidRequest("Covenant must be OLD, NEW, or CUSTOM")
	}
	return name, testament, nil
}

// ListBooks pages through books ordered by orderIndex, filtered by name and testament.
func (s *CorpusService) ListBooks(p ListParams) (*Page[models.Book], error) {
	p.normalize()

	query := s.db.Model(&models.Book{})
	if p.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", p.like())
	}
	if p.Testament != "" {
		t, ok := models.ParseTestament(p.Testament)
		if !ok {
			return nil, NewInvalidRequest("testament must be OLD, NEW, or CUSTOM")
		}
		query = query.Where("testament = ?", t)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, NewInternal("count books", err)
	}

	var books []models.Book
	if err := query.Order("order_index ASC, name ASC, id ASC").
		Offset(p.offset()).Limit(p.Limit).Find(&books).Error; err != nil {
		return nil, NewInternal("fetch books", err)
	}
	return newPage(books, total, p), nil
}

// GetBook returns a single book.
func (s *CorpusService) GetBook(id string) (*models.Book, error) {
	return s.findBook(s.db, id)
}

func (s *CorpusService) findBook(tx *gorm.DB, id string) (*models.Book, error) {
	var book models.Book
	if err := tx.Where("id = ?", id).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("Book", id)
		}
		return nil, NewInternal("fetch book", err)
	}
	return &book, nil
}

// findBookByName matches case-insensitively; nil when absent.
func (s *CorpusService) findBookByName(tx *gorm.DB, name string) (*models.Book, error) {
	var books []models.Book
	if err := tx.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("id ASC").Limit(1).Find(&books).Error; err != nil {
		return nil, NewInternal("fetch book", err)
	}
	if len(books) == 0 {
		return nil, nil
	}
	return &books[0], nil
}

func (s *CorpusService) nextOrderIndex(tx *gorm.DB) (int, error) {
	var last []models.Book
	if err := tx.Order("order_index DESC").Limit(1).Find(&last).Error; err != nil {
		return 0, NewInternal("fetch order index", err)
	}
	if len(last) == 0 {
		return 1, nil
	}
	return last[0].OrderIndex + 1, nil
}

// CreateBook adds a book. Names are unique regardless of case.
func (s *CorpusService) CreateBook(in BookInput) (*models.Book, error) {
	name, testament, err := in.validate()
	if err != nil {
		return nil, err
	}

	var book *models.Book
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		book, err = s.createBook(tx, name, testament, in.OrderIndex)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return book, nil
}

func (s *CorpusService) createBook(tx *gorm.DB, name string, testament models.Testament, orderIndex *int) (*models.Book, error) {
	existing, err := s.findBookByName(tx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflict("A book named \"" + existing.Name + "\" already exists")
	}

	book := &models.Book{Name: name, Testament: testament}
	if orderIndex != nil {
		book.OrderIndex = *orderIndex
	} else if book.OrderIndex, err = s.nextOrderIndex(tx); err != nil {
		return nil, err
	}

	if err := tx.Create(book).Error; err != nil {
		return nil, NewInternal("create book", err)
	}
	return book, nil
}

// UpdateBook replaces name, testament and (when given) orderIndex.
func (s *CorpusService) UpdateBook(id string, in BookInput) (*models.Book, error) {
	name, testament, err := in.validate()
	if err != nil {
		return nil, err
	}

	book, err := s.findBook(s.db, id)
	if err != nil {
		return nil, err
	}

	other, err := s.findBookByName(s.db, name)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != book.ID {
		return nil, NewConflict("A book named \"" + other.Name + "\" already exists")
	}

	book.Name = name
	book.Testament = testament
	if in.OrderIndex != nil {
		book.OrderIndex = *in.OrderIndex
	}
	if err := s.db.Save(book).Error; err != nil {
		return nil, NewInternal("update book", err)
	}
	s.invalidate()
	return book, nil
}

// DeleteBook removes the book with all its chapters and verses.
func (s *CorpusService) DeleteBook(id string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.findBook(tx, id); err != nil {
			return err
		}

		chapterIDs := tx.Model(&models.Chapter{}).Select("id").Where("book_id = ?", id)
		if err := tx.Where("chapter_id IN (?)", chapterIDs).Delete(&models.Verse{}).Error; err != nil {
			return NewInternal("delete verses", err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&models.Chapter{}).Error; err != nil {
			return NewInternal("delete chapters", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Book{}).Error; err != nil {
			return NewInternal("delete book", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// ================== CHAPTERS ==================

// ChapterInput is the create/update payload for a chapter.
type ChapterInput struct {
	Number int    `json:"number"`
	BookID string `json:"bookId"`
}

func (in ChapterInput) validate() error {
	if in.Number < 1 {
		return NewInvalidRequest("Chapter number must be a positive number")
	}
	if strings.TrimSpace(in.BookID) == "" {
		return NewInvalidRequest("Book selection is required")
	}
	return nil
}

// ListChapters pages through chapters, optionally within one book, searching
// book name and chapter number.
func (s *CorpusService) ListChapters(p ListParams) (*Page[models.ChapterView], error) {
	p.normalize()

	query := s.db.Model(&models.Chapter{}).
		Joins("JOIN books ON books.id = chapters.book_id")
	if p.BookID != "" {
		query = query.Where("chapters.book_id = ?", p.BookID)
	}
	if p.Search != "" {
		query = query.Where("(LOWER(books.name) LIKE ? OR CAST(chapters.number AS TEXT) LIKE ?)", p.like(), "%"+p.Search+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, NewInternal("count chapters", err)
	}

	var chapters []models.Chapter
	if err := query.Select("chapters.*").
		Order("books.order_index ASC, books.name ASC, chapters.number ASC, chapters.id ASC").
		Offset(p.offset()).Limit(p.Limit).Find(&chapters).Error; err != nil {
		return nil, NewInternal("fetch chapters", err)
	}

	views, err := s.chapterViews(chapters)
	if err != nil {
		return nil, err
	}
	return newPage(views, total, p), nil
}

func (s *CorpusService) chapterViews(chapters []models.Chapter) ([]models.ChapterView, error) {
	if len(chapters) == 0 {
		return nil, nil
	}

	bookIDs := make([]string, 0, len(chapters))
	chapterIDs := make([]string, 0, len(chapters))
	for _, c := range chapters {
		bookIDs = append(bookIDs, c.BookID)
		chapterIDs = append(chapterIDs, c.ID)
	}

	var books []models.Book
	if err := s.db.Where("id IN ?", bookIDs).Find(&books).Error; err != nil {
		return nil, NewInternal("fetch books", err)
	}
	names := make(map[string]string, len(books))
	for _, b := range books {
		names[b.ID] = b.Name
	}

	var counts []struct {
		ChapterID string
		Total     int64
	}
	if err := s.db.Model(&models.Verse{}).
		Select("chapter_id, COUNT(*) AS total").
		Where("chapter_id IN ?", chapterIDs).
		Group("chapter_id").Scan(&counts).Error; err != nil {
		return nil, NewInternal("count verses", err)
	}
	verseCounts := make(map[string]int64, len(counts))
	for _, c := range counts {
		verseCounts[c.ChapterID] = c.Total
	}

	views := make([]models.ChapterView, 0, len(chapters))
	for _, c := range chapters {
		views = append(views, models.ChapterView{
			Chapter:    c,
			BookName:   names[c.BookID],
			VerseCount: verseCounts[c.ID],
		})
	}
	return views, nil
}

// GetChapter returns a chapter with its book name.
func (s *CorpusService) GetChapter(id string) (*models.ChapterView, error) {
	chapter, err := s.findChapter(s.db, id)
	if err != nil {
		return nil, err
	}
	views, err := s.chapterViews([]models.Chapter{*chapter})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *CorpusService) findChapter(tx *gorm.DB, id string) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := tx.Where("id = ?", id).First(&chapter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("Chapter", id)
		}
		return nil, NewInternal("fetch chapter", err)
	}
	return &chapter, nil
}

// findChapterByNumber returns nil when the book has no such chapter.
func (s *CorpusService) findChapterByNumber(tx *gorm.DB, bookID string, number int) (*models.Chapter, error) {
	var chapters []models.Chapter
	if err := tx.Where("book_id = ? AND number = ?", bookID, number).Limit(1).Find(&chapters).Error; err != nil {
		return nil, NewInternal("fetch chapter", err)
	}
	if len(chapters) == 0 {
		return nil, nil
	}
	return &chapters[0], nil
}

// CreateChapter adds a chapter; the book must exist and the number must be free.
func (s *CorpusService) CreateChapter(in ChapterInput) (*models.Chapter, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var chapter *models.Chapter
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.findBook(tx, in.BookID); err != nil {
			if IsNotFound(err) {
				return NewInvalidRequest("Selected book does not exist")
			}
			return err
		}
		var err error
		chapter, err = s.createChapter(tx, in.BookID, in.Number)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return chapter, nil
}

func (s *CorpusService) createChapter(tx *gorm.DB, bookID string, number int) (*models.Chapter, error) {
	existing, err := s.findChapterByNumber(tx, bookID, number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflict("This chapter number already exists in the selected book")
	}

	chapter := &models.Chapter{Number: number, BookID: bookID}
	if err := tx.Create(chapter).Error; err != nil {
		return nil, NewInternal("create chapter", err)
	}
	return chapter, nil
}

// UpdateChapter changes a chapter's number or moves it to another book.
func (s *CorpusService) UpdateChapter(id string, in ChapterInput) (*models.Chapter, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	chapter, err := s.findChapter(s.db, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.findBook(s.db, in.BookID); err != nil {
		if IsNotFound(err) {
			return nil, NewInvalidRequest("Selected book does not exist")
		}
		return nil, err
	}
	other, err := s.findChapterByNumber(s.db, in.BookID, in.Number)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != chapter.ID {
		return nil, NewConflict("This chapter number already exists in the selected book")
	}

	chapter.Number = in.Number
	chapter.BookID = in.BookID
	if err := s.db.Save(chapter).Error; err != nil {
		return nil, NewInternal("update chapter", err)
	}
	s.invalidate()
	return chapter, nil
}

// DeleteChapter removes the chapter and its verses.
func (s *CorpusService) DeleteChapter(id string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.findChapter(tx, id); err != nil {
			return err
		}
		if err := tx.Where("chapter_id = ?", id).Delete(&models.Verse{}).Error; err != nil {
			return NewInternal("delete verses", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Chapter{}).Error; err != nil {
			return NewInternal("delete chapter", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// ================== VERSES ==================

// VerseInput is the create/update payload for a verse.
type VerseInput struct {
	Number    int    `json:"number"`
	Text      string `json:"text"`
	ChapterID string `json:"chapterId"`
}

func (in VerseInput) validate() (string, error) {
	if in.Number < 1 {
		return "", NewInvalidRequest("Verse number must be a positive number")
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return "", NewInvalidRequest("Verse text is required")
	}
	if len([]rune(text)) < verseparser.MinTextLength {
		return "", NewInvalidRequest("Verse text must be at least 3 characters long")
	}
	if strings.TrimSpace(in.ChapterID) == "" {
		return "", NewInvalidRequest("Chapter selection is required")
	}
	return text, nil
}

// ListVerses pages through verses in reading order. Search matches verse
// text, book name or verse number.
func (s *CorpusService) ListVerses(p ListParams) (*Page[models.VerseView], error) {
	p.normalize()

	query := s.db.Model(&models.Verse{}).
		Joins("JOIN chapters ON chapters.id = verses.chapter_id").
		Joins("JOIN books ON books.id = chapters.book_id")
	if p.ChapterID != "" {
		query = query.Where("verses.chapter_id = ?", p.ChapterID)
	}
	if p.BookID != "" {
		query = query.Where("chapters.book_id = ?", p.BookID)
	}
	if p.Search != "" {
		query = query.Where(
			"(LOWER(verses.text) LIKE ? OR LOWER(books.name) LIKE ? OR CAST(verses.number AS TEXT) LIKE ?)",
			p.like(), p.like(), "%"+p.Search+"%",
		)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, NewInternal("count verses", err)
	}

	var verses []models.Verse
	if err := query.Select("verses.*").
		Order("books.order_index ASC, books.name ASC, chapters.number ASC, verses.number ASC, verses.id ASC").
		Offset(p.offset()).Limit(p.Limit).Find(&verses).Error; err != nil {
		return nil, NewInternal("fetch verses", err)
	}

	views, err := s.verseViews(verses)
	if err != nil {
		return nil, err
	}
	return newPage(views, total, p), nil
}

func (s *CorpusService) verseViews(verses []models.Verse) ([]models.VerseView, error) {
	if len(verses) == 0 {
		return nil, nil
	}

	chapterIDs := make([]string, 0, len(verses))
	for _, v := range verses {
		chapterIDs = append(chapterIDs, v.ChapterID)
	}
	var chapters []models.Chapter
	if err := s.db.Preload("Book").Where("id IN ?", chapterIDs).Find(&chapters).Error; err != nil {
		return nil, NewInternal("fetch chapters", err)
	}
	byID := make(map[string]models.Chapter, len(chapters))
	for _, c := range chapters {
		byID[c.ID] = c
	}

	views := make([]models.VerseView, 0, len(verses))
	for _, v := range verses {
		view := models.VerseView{Verse: v}
		if c, ok := byID[v.ChapterID]; ok {
			view.ChapterNumber = c.Number
			view.BookID = c.BookID
			if c.Book != nil {
				view.BookName = c.Book.Name
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// GetVerse returns a verse with its chapter number and book name.
func (s *CorpusService) GetVerse(id string) (*models.VerseView, error) {
	verse, err := s.findVerse(s.db, id)
	if err != nil {
		return nil, err
	}
	views, err := s.verseViews([]models.Verse{*verse})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *CorpusService) findVerse(tx *gorm.DB, id string) (*models.Verse, error) {
	var verse models.Verse
	if err := tx.Where("id = ?", id).First(&verse).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("Verse", id)
		}
		return nil, NewInternal("fetch verse", err)
	}
	return &verse, nil
}

func (s *CorpusService) findVerseByNumber(tx *gorm.DB, chapterID string, number int) (*models.Verse, error) {
	var verses []models.Verse
	if err := tx.Where("chapter_id = ? AND number = ?", chapterID, number).Limit(1).Find(&verses).Error; err != nil {
		return nil, NewInternal("fetch verse", err)
	}
	if len(verses) == 0 {
		return nil, nil
	}
	return &verses[0], nil
}

// CreateVerse adds a verse; the chapter must exist and the number must be free.
func (s *CorpusService) CreateVerse(in VerseInput) (*models.Verse, error) {
	text, err := in.validate()
	if err != nil {
		return nil, err
	}

	verse := &models.Verse{Number: in.Number, Text: text, ChapterID: in.ChapterID}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.findChapter(tx, in.ChapterID); err != nil {
			if IsNotFound(err) {
				return NewInvalidRequest("Selected chapter does not exist")
			}
			return err
		}
		existing, err := s.findVerseByNumber(tx, in.ChapterID, in.Number)
		if err != nil {
			return err
		}
		if existing != nil {
			return NewConflict("This verse number already exists in the selected chapter")
		}
		if err := tx.Create(verse).Error; err != nil {
			return NewInternal("create verse", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return verse, nil
}

// UpdateVerse replaces number, text and chapter of a verse.
func (s *CorpusService) UpdateVerse(id string, in VerseInput) (*models.Verse, error) {
	text, err := in.validate()
	if err != nil {
		return nil, err
	}

	verse, err := s.findVerse(s.db, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.findChapter(s.db, in.ChapterID); err != nil {
		if IsNotFound(err) {
			return nil, NewInvalidRequest("Selected chapter does not exist")
		}
		return nil, err
	}
	other, err := s.findVerseByNumber(s.db, in.ChapterID, in.Number)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != verse.ID {
		return nil, NewConflict("This verse number already exists in the selected chapter")
	}

	verse.Number = in.Number
	verse.Text = text
	verse.ChapterID = in.ChapterID
	if err := s.db.Save(verse).Error; err != nil {
		return nil, NewInternal("update verse", err)
	}
	s.invalidate()
	return verse, nil
}

// DeleteVerse removes one verse.
func (s *CorpusService) DeleteVerse(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.Verse{})
	if result.Error != nil {
		return NewInternal("delete verse", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFound("Verse", id)
	}
	s.invalidate()
	return nil
}
