// Package export turns flat book, chapter and verse collections into the
// nested scripture export document.
package export

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
	"time"

	"scripturedash/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Version is written into every document.
const Version = "1.0"

// Document is the nested export: books, then chapters, then verses.
type Document struct {
	Version string `json:"version"`
	Books   []Book `json:"books"`
}

// Book is one book of the document with its chapters in number order.
type Book struct {
	Name      string    `json:"name"`
	Testament string    `json:"testament"`
	Chapters  []Chapter `json:"chapters"`
}

// Chapter holds its verses in number order.
type Chapter struct {
	Number int     `json:"number"`
	Verses []Verse `json:"verses"`
}

// Verse is a verse number and its text.
type Verse struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Orphans lists records dropped because their parent was not supplied.
type Orphans struct {
	ChapterIDs []string `json:"chapterIds,omitempty"`
	VerseIDs   []string `json:"verseIds,omitempty"`
}

func (o Orphans) Empty() bool {
	return len(o.ChapterIDs) == 0 && len(o.VerseIDs) == 0
}

// Stats counts what went into a document.
type Stats struct {
	Books    int `json:"books"`
	Chapters int `json:"chapters"`
	Verses   int `json:"verses"`
}

// Structure builds the export document. Chapters and verses whose parent is
// missing are left out.
func Structure(books []models.Book, chapters []models.Chapter, verses []models.Verse) Document {
	doc, _ := Build(books, chapters, verses)
	return doc
}

// Build is Structure that also reports the orphans it dropped.
//
// Output order does not depend on input order: verses sort by number, chapters
// by number, books by testament rank then collated name. Remaining ties fall
// back to entity id.
func Build(books []models.Book, chapters []models.Chapter, verses []models.Verse) (Document, Orphans) {
	var orphans Orphans

	chapterIDs := make(map[string]bool, len(chapters))
	for _, c := range chapters {
		chapterIDs[c.ID] = true
	}
	versesByChapter := make(map[string][]models.Verse)
	for _, v := range verses {
		if !chapterIDs[v.ChapterID] {
			orphans.VerseIDs = append(orphans.VerseIDs, v.ID)
			continue
		}
		versesByChapter[v.ChapterID] = append(versesByChapter[v.ChapterID], v)
	}

	bookIDs := make(map[string]bool, len(books))
	for _, b := range books {
		bookIDs[b.ID] = true
	}
	chaptersByBook := make(map[string][]models.Chapter)
	for _, c := range chapters {
		if !bookIDs[c.BookID] {
			orphans.ChapterIDs = append(orphans.ChapterIDs, c.ID)
			// its verses never reach the output either
			for _, v := range versesByChapter[c.ID] {
				orphans.VerseIDs = append(orphans.VerseIDs, v.ID)
			}
			continue
		}
		chaptersByBook[c.BookID] = append(chaptersByBook[c.BookID], c)
	}

	sorted := make([]models.Book, len(books))
	copy(sorted, books)
	sortBooks(sorted)

	out := make([]Book, 0, len(sorted))
	for _, b := range sorted {
		bookChapters := chaptersByBook[b.ID]
		sort.Slice(bookChapters, func(i, j int) bool {
			if bookChapters[i].Number != bookChapters[j].Number {
				return bookChapters[i].Number < bookChapters[j].Number
			}
			return bookChapters[i].ID < bookChapters[j].ID
		})

		structured := make([]Chapter, 0, len(bookChapters))
		for _, c := range bookChapters {
			structured = append(structured, Chapter{
				Number: c.Number,
				Verses: structureVerses(versesByChapter[c.ID]),
			})
		}

		out = append(out, Book{
			Name:      b.Name,
			Testament: string(b.Testament),
			Chapters:  structured,
		})
	}

	sort.Strings(orphans.ChapterIDs)
	sort.Strings(orphans.VerseIDs)

	return Document{Version: Version, Books: out}, orphans
}

func structureVerses(verses []models.Verse) []Verse {
	sort.Slice(verses, func(i, j int) bool {
		if verses[i].Number != verses[j].Number {
			return verses[i].Number < verses[j].Number
		}
		return verses[i].ID < verses[j].ID
	})
	out := make([]Verse, 0, len(verses))
	for _, v := range verses {
		out = append(out, Verse{Number: v.Number, Text: v.Text})
	}
	return out
}

// sortBooks orders by testament rank, then name as a reader would sort it.
// A collator is not safe for concurrent use, so each call gets its own.
func sortBooks(books []models.Book) {
	col := collate.New(language.English)
	sort.Slice(books, func(i, j int) bool {
		a, b := books[i], books[j]
		if ra, rb := a.Testament.Rank(), b.Testament.Rank(); ra != rb {
			return ra < rb
		}
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c < 0
		}
		if a.Testament != b.Testament {
			return a.Testament < b.Testament
		}
		return a.ID < b.ID
	})
}

// Count returns how many books, chapters and verses doc holds.
func Count(doc Document) Stats {
	s := Stats{Books: len(doc.Books)}
	for _, b := range doc.Books {
		s.Chapters += len(b.Chapters)
		for _, c := range b.Chapters {
			s.Verses += len(c.Verses)
		}
	}
	return s
}

// Filename is the dated download name, e.g. scripture-export-2024-03-01.json.
func Filename(t time.Time) string {
	return "scripture-export-" + t.UTC().Format("2006-01-02") + ".json"
}

// Encode writes doc as UTF-8 JSON indented by two spaces.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// Decode reads a document written by Encode.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, err
	}
	if doc.Books == nil {
		doc.Books = []Book{}
	}
	return doc, nil
}
