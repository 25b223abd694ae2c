// handlers/routes.go - Route table
package handlers

import (
	"scripturedash/handlers/admin"
	"scripturedash/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SetupRoutes registers every API and websocket route on app.
// InitCorpusHandlers and admin.InitAuthHandlers must run first.
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/login", admin.Login)
	authGroup.Post("/signup", admin.Signup)
	authGroup.Post("/refresh", admin.Refresh)
	authGroup.Post("/logout", admin.Logout)
	authGroup.Get("/verify", middleware.AdminAuthMiddleware, admin.VerifyToken)

	// Book routes
	books := api.Group("/book", middleware.AdminAuthMiddleware)
	books.Get("/", GetBooks)
	books.Post("/", CreateBook)
	books.Get("/last-updated", GetLastUpdated)
	books.Get("/:id", GetBook)
	books.Put("/:id", UpdateBook)
	books.Delete("/:id", DeleteBook)

	// Chapter routes
	chapters := api.Group("/chapter", middleware.AdminAuthMiddleware)
	chapters.Get("/", GetChapters)
	chapters.Post("/", CreateChapter)
	chapters.Get("/:id", GetChapter)
	chapters.Put("/:id", UpdateChapter)
	chapters.Delete("/:id", DeleteChapter)

	// Verse routes
	verses := api.Group("/verse", middleware.AdminAuthMiddleware)
	verses.Get("/", GetVerses)
	verses.Post("/", CreateVerse)
	verses.Post("/bulk", BulkUploadVerses)
	verses.Post("/parse", ParseVerses)
	verses.Get("/:id", GetVerse)
	verses.Put("/:id", UpdateVerse)
	verses.Delete("/:id", DeleteVerse)

	api.Get("/stats", middleware.AdminAuthMiddleware, GetStats)
	api.Get("/export", middleware.AdminAuthMiddleware, ExportCorpus)

	// Account management
	adminGroup := api.Group("/admin", middleware.AdminAuthMiddleware)
	adminGroup.Get("/users", admin.GetUsers)
	adminGroup.Delete("/users/:id", admin.DeleteUser)
	adminGroup.Post("/users/:id/ban", admin.BanUser)
	adminGroup.Post("/users/:id/reset-password", admin.ResetUserPassword)
	adminGroup.Get("/cleanup/stats", GetCleanupStats)
	adminGroup.Post("/cleanup/manual", ManualCleanup)

	app.Get("/ws/export", middleware.WebSocketAdminAuth, websocket.New(ExportWebSocket))
}
