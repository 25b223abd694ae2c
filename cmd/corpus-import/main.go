// corpus-import loads an export document into the database named by the
// environment. Books are matched by name, chapters and verses by number.
package main

import (
	"fmt"
	"log"
	"os"

	"scripturedash/database"
	"scripturedash/export"
	"scripturedash/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	file   string
	dryRun bool
)

var rootCmd = &cobra.Command{
	Use:   "corpus-import",
	Short: "Import a scripture-export JSON document into the database",
	Long: `Reads a document written by the export endpoint or corpus-export and
merges it into the corpus in a single transaction. Existing verse text is
overwritten; nothing is deleted.

Example:
  corpus-import --file scripture-export-2024-03-01.json --dry-run
  DATABASE_DRIVER=sqlite corpus-import --file backup.json`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runImport,
}

func init() {
	rootCmd.Flags().StringVarP(&file, "file", "f", "", "export document to import")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and count without writing")
	_ = rootCmd.MarkFlagRequired("file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	database.InitDB()
	defer database.CloseDB()

	result, err := importFile(services.NewCorpusService(database.GetDB()), file, dryRun)
	if err != nil {
		return err
	}

	if result.DryRun {
		log.Println("🔍 Dry run, nothing was written")
	}
	log.Printf("✅ Books created: %d, chapters created: %d", result.BooksCreated, result.ChaptersCreated)
	log.Printf("✅ Verses created: %d, updated: %d, unchanged: %d",
		result.VersesCreated, result.VersesUpdated, result.VersesUnchanged)
	return nil
}

func importFile(svc *services.CorpusService, path string, dryRun bool) (*services.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := export.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Version != export.Version {
		log.Printf("Warning: %s has version %q, expected %q", path, doc.Version, export.Version)
	}
	return svc.ImportDocument(doc, dryRun)
}
