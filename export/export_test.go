package export

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"scripturedash/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() ([]models.Book, []models.Chapter, []models.Verse) {
	books := []models.Book{
		{ID: "b-mat", Name: "Matthew", Testament: models.TestamentNew, OrderIndex: 40},
		{ID: "b-gen", Name: "Genesis", Testament: models.TestamentOld, OrderIndex: 1},
		{ID: "b-psa", Name: "Custom Psalm", Testament: models.TestamentCustom, OrderIndex: 99},
		{ID: "b-exo", Name: "exodus", Testament: models.TestamentOld, OrderIndex: 2},
	}
	chapters := []models.Chapter{
		{ID: "c-gen-2", Number: 2, BookID: "b-gen"},
		{ID: "c-gen-1", Number: 1, BookID: "b-gen"},
		{ID: "c-mat-1", Number: 1, BookID: "b-mat"},
		{ID: "c-exo-1", Number: 1, BookID: "b-exo"},
	}
	verses := []models.Verse{
		{ID: "v3", Number: 3, Text: "And Elohim said, Let light come to be", ChapterID: "c-gen-1"},
		{ID: "v1", Number: 1, Text: "In the beginning Elohim created", ChapterID: "c-gen-1"},
		{ID: "v2", Number: 2, Text: "And the earth came to be formless", ChapterID: "c-gen-1"},
		{ID: "v4", Number: 1, Text: "Thus the heavens and the earth were completed", ChapterID: "c-gen-2"},
		{ID: "v5", Number: 1, Text: "The book of the genealogy", ChapterID: "c-mat-1"},
	}
	return books, chapters, verses
}

func encode(t *testing.T, doc Document) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))
	return buf.String()
}

func TestStructure_BookOrder(t *testing.T) {
	doc := Structure(fixture())

	var names []string
	for _, b := range doc.Books {
		names = append(names, b.Name)
	}
	// collation compares letters before case, so "exodus" precedes "Genesis"
	assert.Equal(t, []string{"exodus", "Genesis", "Matthew", "Custom Psalm"}, names)
}

func TestStructure_TestamentThenName(t *testing.T) {
	books := []models.Book{
		{ID: "1", Name: "Matthew", Testament: models.TestamentNew},
		{ID: "2", Name: "Genesis", Testament: models.TestamentOld},
		{ID: "3", Name: "Custom Psalm", Testament: models.TestamentCustom},
		{ID: "4", Name: "Apocalypse of Baruch", Testament: models.Testament("APOCRYPHA")},
	}
	doc := Structure(books, nil, nil)
	require.Len(t, doc.Books, 4)
	assert.Equal(t, "Genesis", doc.Books[0].Name)
	assert.Equal(t, "Matthew", doc.Books[1].Name)
	assert.Equal(t, "Custom Psalm", doc.Books[2].Name)
	assert.Equal(t, "Apocalypse of Baruch", doc.Books[3].Name)
	assert.Equal(t, "APOCRYPHA", doc.Books[3].Testament)
}

func TestStructure_NestedOrdering(t *testing.T) {
	doc := Structure(fixture())

	gen := doc.Books[1]
	require.Equal(t, "Genesis", gen.Name)
	require.Len(t, gen.Chapters, 2)
	assert.Equal(t, 1, gen.Chapters[0].Number)
	assert.Equal(t, 2, gen.Chapters[1].Number)

	verses := gen.Chapters[0].Verses
	require.Len(t, verses, 3)
	for i, v := range verses {
		assert.Equal(t, i+1, v.Number)
	}
	assert.Equal(t, "In the beginning Elohim created", verses[0].Text)

	exo := doc.Books[0]
	require.Len(t, exo.Chapters, 1)
	assert.NotNil(t, exo.Chapters[0].Verses)
	assert.Empty(t, exo.Chapters[0].Verses)

	psalm := doc.Books[3]
	assert.NotNil(t, psalm.Chapters)
	assert.Empty(t, psalm.Chapters)
}

func TestStructure_PermutationInvariant(t *testing.T) {
	books, chapters, verses := fixture()
	want := encode(t, Structure(books, chapters, verses))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 25; i++ {
		b := append([]models.Book(nil), books...)
		c := append([]models.Chapter(nil), chapters...)
		v := append([]models.Verse(nil), verses...)
		rng.Shuffle(len(b), func(i, j int) { b[i], b[j] = b[j], b[i] })
		rng.Shuffle(len(c), func(i, j int) { c[i], c[j] = c[j], c[i] })
		rng.Shuffle(len(v), func(i, j int) { v[i], v[j] = v[j], v[i] })

		assert.Equal(t, want, encode(t, Structure(b, c, v)))
	}
}

func TestStructure_DuplicateNamesStayDeterministic(t *testing.T) {
	books := []models.Book{
		{ID: "b2", Name: "Psalms", Testament: models.TestamentOld},
		{ID: "b1", Name: "Psalms", Testament: models.TestamentOld},
	}
	chapters := []models.Chapter{
		{ID: "c1", Number: 1, BookID: "b1"},
		{ID: "c2", Number: 2, BookID: "b2"},
	}
	a := encode(t, Structure(books, chapters, nil))
	b := encode(t, Structure([]models.Book{books[1], books[0]}, []models.Chapter{chapters[1], chapters[0]}, nil))
	assert.Equal(t, a, b)
}

func TestStructure_DoesNotMutateInput(t *testing.T) {
	books, chapters, verses := fixture()
	firstBook, firstVerse := books[0].ID, verses[0].ID
	Structure(books, chapters, verses)
	assert.Equal(t, firstBook, books[0].ID)
	assert.Equal(t, firstVerse, verses[0].ID)
}

func TestBuild_Orphans(t *testing.T) {
	books, chapters, verses := fixture()
	chapters = append(chapters, models.Chapter{ID: "c-ghost", Number: 7, BookID: "b-missing"})
	verses = append(verses,
		models.Verse{ID: "v-ghost", Number: 1, Text: "lost verse", ChapterID: "c-ghost"},
		models.Verse{ID: "v-nowhere", Number: 1, Text: "no chapter", ChapterID: "c-missing"},
	)

	doc, orphans := Build(books, chapters, verses)

	assert.Equal(t, []string{"c-ghost"}, orphans.ChapterIDs)
	assert.Equal(t, []string{"v-ghost", "v-nowhere"}, orphans.VerseIDs)
	assert.False(t, orphans.Empty())

	out := encode(t, doc)
	assert.NotContains(t, out, "lost verse")
	assert.NotContains(t, out, "no chapter")
	assert.NotContains(t, out, `"number": 7`)

	assert.Equal(t, Stats{Books: 4, Chapters: 4, Verses: 5}, Count(doc))
}

func TestStructure_EmptyCorpus(t *testing.T) {
	doc := Structure(nil, nil, nil)
	assert.Equal(t, "{\n  \"version\": \"1.0\",\n  \"books\": []\n}\n", encode(t, doc))

	doc = Structure([]models.Book{}, []models.Chapter{}, []models.Verse{})
	assert.Equal(t, Version, doc.Version)
	assert.Empty(t, doc.Books)
}

func TestFilename(t *testing.T) {
	ts := time.Date(2024, time.March, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "scripture-export-2024-03-01.json", Filename(ts))
}

func TestEncodeDecode(t *testing.T) {
	doc := Structure(fixture())
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestEncode_KeepsPunctuation(t *testing.T) {
	doc := Document{Version: Version, Books: []Book{{
		Name:      "Proverbs",
		Testament: "OLD",
		Chapters: []Chapter{{Number: 1, Verses: []Verse{{Number: 7, Text: "Fear & knowledge <wisdom>"}}}},
	}}}
	assert.Contains(t, encode(t, doc), "Fear & knowledge <wisdom>")
}
