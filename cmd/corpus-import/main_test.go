package main

import (
	"os"
	"path/filepath"
	"testing"

	"scripturedash/database"
	"scripturedash/export"
	"scripturedash/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExport(t *testing.T, doc export.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, export.Encode(f, doc))
	require.NoError(t, f.Close())
	return path
}

func TestImportFile(t *testing.T) {
	conn, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	svc := services.NewCorpusService(conn)

	path := writeExport(t, export.Document{Version: export.Version, Books: []export.Book{{
		Name:      "Jonah",
		Testament: "OLD",
		Chapters: []export.Chapter{{Number: 1, Verses: []export.Verse{
			{Number: 1, Text: "Now the word of the LORD came unto Jonah"},
			{Number: 2, Text: "Arise, go to Nineveh, that great city"},
		}}},
	}}})

	result, err := importFile(svc, path, true)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.VersesCreated)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Verses)

	result, err = importFile(svc, path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BooksCreated)
	assert.Equal(t, 2, result.VersesCreated)

	// importing the same file again changes nothing
	result, err = importFile(svc, path, false)
	require.NoError(t, err)
	assert.Zero(t, result.BooksCreated)
	assert.Equal(t, 2, result.VersesUnchanged)
}

func TestImportFile_BadInput(t *testing.T) {
	conn, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	svc := services.NewCorpusService(conn)

	_, err = importFile(svc, filepath.Join(t.TempDir(), "missing.json"), false)
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("{not json"), 0o644))
	_, err = importFile(svc, garbage, false)
	assert.ErrorContains(t, err, "parse")

	invalid := writeExport(t, export.Document{Version: export.Version, Books: []export.Book{{Name: "Ob", Testament: "OLD"}}})
	_, err = importFile(svc, invalid, false)
	var svcErr *services.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, services.ErrInvalidRequest, svcErr.Code)
}
