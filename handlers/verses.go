// handlers/verses.go - Verse HTTP Handlers, including bulk upload
package handlers

import (
	"scripturedash/services"
	"scripturedash/utils"

	"github.com/gofiber/fiber/v2"
)

// GetVerses lists verses with their chapter number and book name
// GET /api/verse?chapterId=&bookId=&page=&limit=&search=
func GetVerses(c *fiber.Ctx) error {
	page, err := corpusService.ListVerses(utils.ListParams(c))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.List(c, page)
}

// GET /api/verse/:id
func GetVerse(c *fiber.Ctx) error {
	verse, err := corpusService.GetVerse(c.Params("id"))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, verse)
}

// POST /api/verse
func CreateVerse(c *fiber.Ctx) error {
	var req services.VerseInput
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	verse, err := corpusService.CreateVerse(req)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Created(c, verse)
}

// PUT /api/verse/:id
func UpdateVerse(c *fiber.Ctx) error {
	var req services.VerseInput
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	verse, err := corpusService.UpdateVerse(c.Params("id"), req)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, verse)
}

// DELETE /api/verse/:id
func DeleteVerse(c *fiber.Ctx) error {
	if err := corpusService.DeleteVerse(c.Params("id")); err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Message(c, "Verse deleted successfully")
}

// BulkUploadVerses parses a pasted block and upserts it into one chapter
// POST /api/verse/bulk
func BulkUploadVerses(c *fiber.Ctx) error {
	var req services.BulkUploadInput
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	result, err := corpusService.BulkUpload(req)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Created(c, result)
}

// ParseVerses previews how a block would be split without saving anything
// POST /api/verse/parse
func ParseVerses(c *fiber.Ctx) error {
	var req struct {
		VersesText string `json:"versesText"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	preview, err := services.PreviewVerses(req.VersesText)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, preview)
}
