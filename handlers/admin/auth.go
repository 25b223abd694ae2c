package admin

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"scripturedash/middleware"
	"scripturedash/models"
	"scripturedash/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	refreshCookie     = "refreshToken"
	minUsernameLength = 3
	minPasswordLength = 8
)

var db *gorm.DB

// InitAuthHandlers sets the database used by the auth endpoints
func InitAuthHandlers(conn *gorm.DB) {
	if conn == nil {
		panic("Database not initialized before InitAuthHandlers")
	}
	db = conn
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func setRefreshCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/api/auth",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   os.Getenv("APP_ENV") == "production",
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// Login authenticates an admin user
// POST /api/auth/login
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	// Validate input
	if req.Username == "" || req.Password == "" {
		return utils.JSONError(c, 400, "Username and password are required")
	}

	// Find admin user
	var user models.User
	if err := db.Where("username = ? AND is_admin = ?", req.Username, true).First(&user).Error; err != nil {
		return utils.JSONError(c, 401, "Invalid credentials")
	}
	if user.IsBanned {
		return utils.JSONError(c, 403, "Account disabled")
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return utils.JSONError(c, 401, "Invalid credentials")
	}

	// Update last login
	if err := db.Model(&user).Update("last_login", time.Now()).Error; err != nil {
		log.Printf("Warning: could not record login for %s: %v", user.Username, err)
	}

	tokens, err := middleware.IssueTokens(&user)
	if err != nil {
		log.Printf("❌ Token generation failed: %v", err)
		return utils.JSONError(c, 500, "Failed to generate token")
	}
	setRefreshCookie(c, tokens.RefreshToken, time.Unix(tokens.RefreshExpiresAt, 0))

	log.Printf("👤 Admin %s logged in", user.Username)
	return utils.Success(c, fiber.Map{
		"accessToken":     tokens.AccessToken,
		"refreshToken":    tokens.RefreshToken,
		"accessExpiresAt": tokens.AccessExpiresAt,
		"username":        user.Username,
	})
}

// Signup creates another admin account when ALLOW_SIGNUP=true
// POST /api/auth/signup
func Signup(c *fiber.Ctx) error {
	if os.Getenv("ALLOW_SIGNUP") != "true" {
		return utils.JSONError(c, 403, "Signup is disabled")
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}
	username := strings.TrimSpace(req.Username)
	if len(username) < minUsernameLength {
		return utils.JSONError(c, 400, "Username must be at least 3 characters long")
	}
	if len(req.Password) < minPasswordLength {
		return utils.JSONError(c, 400, "Password must be at least 8 characters long")
	}

	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return utils.JSONError(c, 409, "Username already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("❌ Signup lookup failed: %v", err)
		return utils.JSONError(c, 500, "Failed to create account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.JSONError(c, 500, "Failed to create account")
	}

	user := models.User{Username: username, Password: string(hash), IsAdmin: true}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("❌ Signup failed: %v", err)
		return utils.JSONError(c, 500, "Failed to create account")
	}

	log.Printf("👤 Admin %s signed up", user.Username)
	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"id": user.ID, "username": user.Username},
	})
}

// Refresh trades a refresh token (cookie or body) for a new access token
// POST /api/auth/refresh
func Refresh(c *fiber.Ctx) error {
	tokenString := c.Cookies(refreshCookie)
	if tokenString == "" {
		var req RefreshRequest
		_ = c.BodyParser(&req)
		tokenString = req.RefreshToken
	}
	if tokenString == "" {
		return utils.JSONError(c, 401, "Missing refresh token")
	}

	claims, err := middleware.ParseToken(tokenString, middleware.TokenRefresh)
	if err != nil {
		return utils.JSONError(c, 401, "Invalid or expired refresh token")
	}

	// the account may have been disabled since the token was issued
	userID, _ := claims["user_id"].(float64)
	var user models.User
	if err := db.First(&user, uint(userID)).Error; err != nil || !user.IsAdmin || user.IsBanned {
		return utils.JSONError(c, 401, "Invalid or expired refresh token")
	}

	access, expiresAt, err := middleware.IssueToken(&user, middleware.TokenAccess)
	if err != nil {
		return utils.JSONError(c, 500, "Failed to generate token")
	}

	return utils.Success(c, fiber.Map{
		"accessToken":     access,
		"accessExpiresAt": expiresAt.Unix(),
	})
}

// VerifyToken echoes the caller's claims
// GET /api/auth/verify
func VerifyToken(c *fiber.Ctx) error {
	// Token is already validated by middleware
	return utils.Success(c, fiber.Map{
		"valid":    true,
		"userId":   c.Locals("userId"),
		"username": c.Locals("username"),
		"isAdmin":  c.Locals("isAdmin"),
	})
}

// Logout clears the refresh cookie; access tokens expire on their own
// POST /api/auth/logout
func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/api/auth",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return utils.Message(c, "Logged out successfully")
}
