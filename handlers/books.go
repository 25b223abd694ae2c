// handlers/books.go - Book HTTP Handlers
package handlers

import (
	"log"

	"scripturedash/services"
	"scripturedash/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var corpusService *services.CorpusService

// InitCorpusHandlers initializes the corpus service and returns it so
// background jobs can share its stats cache
func InitCorpusHandlers(db *gorm.DB) *services.CorpusService {
	if db == nil {
		panic("Database not initialized before InitCorpusHandlers")
	}
	corpusService = services.NewCorpusService(db)
	return corpusService
}

// ================== BOOK ENDPOINTS ==================

// GetBooks lists books
// GET /api/book?page=&limit=&search=&testament=
func GetBooks(c *fiber.Ctx) error {
	page, err := corpusService.ListBooks(utils.ListParams(c))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.List(c, page)
}

// GetBook returns one book
// GET /api/book/:id
func GetBook(c *fiber.Ctx) error {
	book, err := corpusService.GetBook(c.Params("id"))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, book)
}

// GetLastUpdated returns the most recent change anywhere in the corpus
// GET /api/book/last-updated
func GetLastUpdated(c *fiber.Ctx) error {
	last, err := corpusService.LastUpdated()
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"lastUpdated": last})
}

// CreateBook adds a book
// POST /api/book
func CreateBook(c *fiber.Ctx) error {
	var req services.BookInput
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	book, err := corpusService.CreateBook(req)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	log.Printf("📘 Book created: %s (%s)", book.Name, book.Testament)
	return utils.Created(c, book)
}

// UpdateBook edits a book
// PUT /api/book/:id
func UpdateBook(c *fiber.Ctx) error {
	var req services.BookInput
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	book, err := corpusService.UpdateBook(c.Params("id"), req)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, book)
}

// DeleteBook removes a book with its chapters and verses
// DELETE /api/book/:id
func DeleteBook(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := corpusService.DeleteBook(id); err != nil {
		return utils.ServiceError(c, err)
	}
	log.Printf("🗑️  Book deleted: %s", id)
	return utils.Message(c, "Book deleted successfully")
}
