// models/models.go - Corpus Models (Book → Chapter → Verse)
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is a top-level unit of the corpus (Genesis, Matthew, ...)
type Book struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Name       string    `json:"name" gorm:"not null;size:200;index"`
	Testament  Testament `json:"testament" gorm:"not null;size:10;index"`
	OrderIndex int       `json:"orderIndex" gorm:"default:0;index"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Chapter belongs to a Book; (BookID, Number) is unique
type Chapter struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Number    int       `json:"number" gorm:"not null;uniqueIndex:idx_chapters_book_number"`
	BookID    string    `json:"bookId" gorm:"not null;size:36;uniqueIndex:idx_chapters_book_number"`
	Book      *Book     `json:"book,omitempty" gorm:"foreignKey:BookID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Verse belongs to a Chapter; (ChapterID, Number) is unique
type Verse struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Number    int       `json:"number" gorm:"not null;uniqueIndex:idx_verses_chapter_number"`
	Text      string    `json:"text" gorm:"not null;type:text"`
	ChapterID string    `json:"chapterId" gorm:"not null;size:36;uniqueIndex:idx_verses_chapter_number"`
	Chapter   *Chapter  `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VerseView is a verse enriched with its location, as the verse list screen shows it
type VerseView struct {
	Verse
	ChapterNumber int    `json:"chapterNumber"`
	BookID        string `json:"bookId"`
	BookName      string `json:"bookName"`
}

// ChapterView is a chapter enriched with its book name
type ChapterView struct {
	Chapter
	BookName   string `json:"bookName"`
	VerseCount int64  `json:"verseCount"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (c *Chapter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (v *Verse) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

func (Book) TableName() string {
	return "books"
}

func (Chapter) TableName() string {
	return "chapters"
}

func (Verse) TableName() string {
	return "verses"
}
