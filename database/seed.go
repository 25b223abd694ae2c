// database/seed.go - Admin account bootstrap
package database

import (
	"errors"
	"log"
	"os"
	"scripturedash/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the ADMIN_USERNAME account on first start
func SeedAdmin() {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Println("Warning: ADMIN_USERNAME/ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	created, err := EnsureAdmin(GetDB(), username, password)
	if err != nil {
		log.Fatalf("❌ Failed to seed admin user: %v", err)
	}
	if created {
		log.Printf("👤 Admin user %q created", username)
	}
}

// EnsureAdmin creates an admin with the given credentials unless the username
// already exists. Existing accounts are left untouched.
func EnsureAdmin(conn *gorm.DB, username, password string) (bool, error) {
	var existing models.User
	err := conn.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	user := models.User{
		Username: username,
		Password: string(hash),
		IsAdmin:  true,
	}
	if err := conn.Create(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}
