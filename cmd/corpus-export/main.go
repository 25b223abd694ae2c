// corpus-export downloads a remote corpus through the REST API and writes it
// as a dated export document.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"scripturedash/apiclient"
	"scripturedash/export"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	apiURL   string
	username string
	password string
	outDir   string
	pageSize int
	stream   bool
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "corpus-export",
	Short: "Export the scripture corpus to scripture-export-YYYY-MM-DD.json",
	Long: `Logs in as an admin, pages through every book, chapter and verse,
and writes the structured export document.

With --stream the server builds the document and reports progress over
the /ws/export websocket instead.

Example:
  corpus-export --api-url http://localhost:3000 --username keeper --password ...
  corpus-export --stream --out ./backups`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runExport,
}

func init() {
	// flag defaults come from the environment
	_ = godotenv.Load()

	rootCmd.Flags().StringVar(&apiURL, "api-url", getEnv("SCRIPTURE_API_URL", "http://localhost:3000"), "base URL of the dashboard API")
	rootCmd.Flags().StringVar(&username, "username", os.Getenv("ADMIN_USERNAME"), "admin username")
	rootCmd.Flags().StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	rootCmd.Flags().StringVar(&outDir, "out", ".", "directory to write the export into")
	rootCmd.Flags().IntVar(&pageSize, "page-size", 1000, "records per list request")
	rootCmd.Flags().BoolVar(&stream, "stream", false, "let the server build the export and stream progress")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "total timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	if username == "" || password == "" {
		return fmt.Errorf("--username and --password are required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := apiclient.New(apiURL)
	if err := client.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer func() {
		if err := client.Logout(context.Background()); err != nil {
			log.Printf("Warning: logout failed: %v", err)
		}
	}()

	var doc export.Document
	if stream {
		event, err := client.WatchExport(ctx, func(stage string, percent int) {
			log.Printf("⏳ %-9s %3d%%", stage, percent)
		})
		if err != nil {
			return err
		}
		doc = *event.Document
	} else {
		corpus, err := client.FetchCorpus(ctx, pageSize)
		if err != nil {
			return err
		}
		var orphans export.Orphans
		doc, orphans = export.Build(corpus.Books, corpus.Chapters, corpus.Verses)
		if !orphans.Empty() {
			log.Printf("⚠️  Skipped %d orphan chapters and %d orphan verses", len(orphans.ChapterIDs), len(orphans.VerseIDs))
		}
	}

	path, err := writeDocument(outDir, doc, time.Now())
	if err != nil {
		return err
	}

	stats := export.Count(doc)
	log.Printf("✅ Exported %d books, %d chapters, %d verses to %s", stats.Books, stats.Chapters, stats.Verses, path)
	return nil
}

// writeDocument writes doc under dir with the dated export filename
func writeDocument(dir string, doc export.Document, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, export.Filename(now))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := export.Encode(f, doc); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
