package admin

import (
	"scripturedash/middleware"
	"scripturedash/models"
	"scripturedash/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// GetUsers returns dashboard accounts with pagination
// GET /api/admin/users?page=&limit=&search=
func GetUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	search := c.Query("search", "")
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var users []models.User
	var total int64

	query := db.Model(&models.User{})

	// Apply search filter if provided
	if search != "" {
		query = query.Where("LOWER(username) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return utils.JSONError(c, 500, "Failed to count users")
	}

	if err := query.Order("username ASC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return utils.JSONError(c, 500, "Failed to fetch users")
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	if users == nil {
		users = []models.User{}
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       users,
		"totalCount": total,
		"totalPages": totalPages,
		"page":       page,
		"limit":      limit,
	})
}

// findUser loads the :id user or answers 404
func findUser(c *fiber.Ctx) (*models.User, error) {
	var user models.User
	if err := db.First(&user, c.Params("id")).Error; err != nil {
		return nil, utils.JSONError(c, 404, "User not found")
	}
	return &user, nil
}

func isSelf(c *fiber.Ctx, user *models.User) bool {
	id, err := middleware.GetUserID(c)
	return err == nil && id == user.ID
}

// DeleteUser deletes an account other than the caller's
// DELETE /api/admin/users/:id
func DeleteUser(c *fiber.Ctx) error {
	user, err := findUser(c)
	if user == nil {
		return err
	}

	if isSelf(c, user) {
		return utils.JSONError(c, 403, "Cannot delete your own account")
	}

	if err := db.Delete(user).Error; err != nil {
		return utils.JSONError(c, 500, "Failed to delete user")
	}

	return utils.Message(c, "User deleted successfully")
}

// BanUser disables or re-enables an account
// POST /api/admin/users/:id/ban
func BanUser(c *fiber.Ctx) error {
	user, err := findUser(c)
	if user == nil {
		return err
	}

	var banData struct {
		IsBanned bool `json:"is_banned"`
	}

	if err := c.BodyParser(&banData); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	if banData.IsBanned && isSelf(c, user) {
		return utils.JSONError(c, 403, "Cannot disable your own account")
	}

	if err := db.Model(user).Update("is_banned", banData.IsBanned).Error; err != nil {
		return utils.JSONError(c, 500, "Failed to update ban status")
	}

	return utils.Success(c, user)
}

// ResetUserPassword sets a new password for an account
// POST /api/admin/users/:id/reset-password
func ResetUserPassword(c *fiber.Ctx) error {
	user, err := findUser(c)
	if user == nil {
		return err
	}

	var passwordData struct {
		NewPassword string `json:"new_password"`
	}

	if err := c.BodyParser(&passwordData); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	if len(passwordData.NewPassword) < minPasswordLength {
		return utils.JSONError(c, 400, "Password must be at least 8 characters long")
	}

	// Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(passwordData.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.JSONError(c, 500, "Failed to hash password")
	}

	if err := db.Model(user).Update("password", string(hashedPassword)).Error; err != nil {
		return utils.JSONError(c, 500, "Failed to reset password")
	}

	return utils.Message(c, "Password reset successfully")
}
