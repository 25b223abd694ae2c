// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"
	"log"
	"scripturedash/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	log.Println("🔄 Running database migrations...")

	if err := Migrate(GetDB()); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	log.Println("✅ All migrations completed successfully")
}

// Migrate creates or updates the corpus and user tables on conn
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.Chapter{},
		&models.Verse{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return createCoreIndexes(conn)
}

// createCoreIndexes creates indexes the list screens and dashboard rely on
func createCoreIndexes(conn *gorm.DB) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_books_updated_at ON books(updated_at)",
		"CREATE INDEX IF NOT EXISTS idx_chapters_book ON chapters(book_id)",
		"CREATE INDEX IF NOT EXISTS idx_chapters_updated_at ON chapters(updated_at)",
		"CREATE INDEX IF NOT EXISTS idx_verses_chapter ON verses(chapter_id)",
		"CREATE INDEX IF NOT EXISTS idx_verses_updated_at ON verses(updated_at)",
	}
	for _, stmt := range statements {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
