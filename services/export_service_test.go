package services

import (
	"context"
	"testing"

	"scripturedash/export"
	"scripturedash/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCorpus(t *testing.T, s *CorpusService) {
	t.Helper()
	matthew := mustBook(t, s, "Matthew", models.TestamentNew)
	genesis := mustBook(t, s, "Genesis", models.TestamentOld)
	odes := mustBook(t, s, "Odes", models.TestamentCustom)

	g2 := mustChapter(t, s, genesis.ID, 2)
	g1 := mustChapter(t, s, genesis.ID, 1)
	m1 := mustChapter(t, s, matthew.ID, 1)
	mustChapter(t, s, odes.ID, 1)

	mustVerse(t, s, g1.ID, 2, "And the earth was without form")
	mustVerse(t, s, g1.ID, 1, "In the beginning")
	mustVerse(t, s, g2.ID, 1, "Thus the heavens")
	mustVerse(t, s, m1.ID, 1, "The book of the generation")
}

func TestExport_StructuresCorpus(t *testing.T) {
	s := newTestService(t)
	seedCorpus(t, s)

	var stages []string
	var percents []int
	result, err := s.Export(context.Background(), func(stage string, pct int) {
		stages = append(stages, stage)
		percents = append(percents, pct)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{10, 30, 50, 70, 80, 90, 100}, percents)
	assert.Equal(t, StageDone, stages[len(stages)-1])

	doc := result.Document
	assert.Equal(t, export.Version, doc.Version)
	require.Len(t, doc.Books, 3)
	assert.Equal(t, "Genesis", doc.Books[0].Name)
	assert.Equal(t, "OLD", doc.Books[0].Testament)
	assert.Equal(t, "Matthew", doc.Books[1].Name)
	assert.Equal(t, "Odes", doc.Books[2].Name)

	genesis := doc.Books[0]
	require.Len(t, genesis.Chapters, 2)
	assert.Equal(t, 1, genesis.Chapters[0].Number)
	require.Len(t, genesis.Chapters[0].Verses, 2)
	assert.Equal(t, "In the beginning", genesis.Chapters[0].Verses[0].Text)

	assert.NotNil(t, doc.Books[2].Chapters[0].Verses)
	assert.Empty(t, doc.Books[2].Chapters[0].Verses)

	assert.Equal(t, export.Stats{Books: 3, Chapters: 4, Verses: 4}, result.Exported)
	assert.Equal(t, result.Fetched, result.Exported)
	assert.True(t, result.Orphans.Empty())
}

func TestExport_NilProgressAndEmptyCorpus(t *testing.T) {
	s := newTestService(t)

	result, err := s.Export(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, result.Document.Books)
	assert.Empty(t, result.Document.Books)
}

func TestExport_ReportsOrphans(t *testing.T) {
	s := newTestService(t)
	seedCorpus(t, s)

	// a verse whose chapter row no longer exists
	require.NoError(t, s.db.Create(&models.Verse{Number: 1, Text: "Lost verse", ChapterID: "gone"}).Error)

	result, err := s.Export(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Fetched.Verses)
	assert.Equal(t, 4, result.Exported.Verses)
	assert.Len(t, result.Orphans.VerseIDs, 1)
}
