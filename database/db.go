// database/db.go - Database Connection (PostgreSQL, or SQLite for local use)
package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens the database named by the environment and runs migrations
func InitDB() {
	var err error
	db, err = Open(Dialector(), logLevel())
	if err != nil {
		log.Fatalf("Failed to connect to %s database: %v", driverName(), err)
	}

	log.Printf("✅ %s database connected successfully", driverName())

	RunMigrations()
	SeedAdmin()
}

// Dialector builds the GORM dialector from DATABASE_DRIVER and friends
func Dialector() gorm.Dialector {
	if driverName() == "sqlite" {
		return sqlite.Open(getEnvOrDefault("SQLITE_PATH", "./data/scripture.db"))
	}

	// Get PostgreSQL connection string from environment
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback to individual parameters
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "scripture")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}
	return postgres.Open(dsn)
}

// Open connects with the given dialector and configures the pool
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if dialector.Name() == "sqlite" {
		// one writer at a time; also keeps in-memory databases alive
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return conn, nil
}

// OpenMemory opens a private in-memory SQLite database with migrations applied
func OpenMemory(name string) (*gorm.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_", "?", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := Open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func driverName() string {
	if getEnvOrDefault("DATABASE_DRIVER", "postgres") == "sqlite" {
		return "sqlite"
	}
	return "postgres"
}

func logLevel() logger.LogLevel {
	if os.Getenv("APP_ENV") == "production" {
		return logger.Warn
	}
	return logger.Info
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	if db == nil {
		log.Fatal("Database not initialized. Call InitDB() first.")
	}
	return db
}

// CloseDB closes the database connection
func CloseDB() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %v", err)
	}

	log.Println("Database connection closed")
	return nil
}
