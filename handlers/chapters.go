// handlers/chapters.go - Chapter HTTP Handlers
package handlers

import (
	"scripturedash/services"
	"scripturedash/utils"

	"github.com/gofiber/fiber/v2"
)

// GetChapters lists chapters
// GET /api/chapter?bookId=&page=&limit=&search=
func GetChapters(c *fiber.Ctx) error {
	page, err := corpusService.ListChapters(utils.ListParams(c))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.List(c, page)
}

// GET /api/chapter/:id
func GetChapter(c *fiber.Ctx) error {
	chapter, err := corpusService.GetChapter(c.Params("id"))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, chapter)
}

// POST /api/chapter
func CreateChapter(c *fiber.Ctx) error {
	var req services.ChapterInput
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	chapter, err := corpusService.CreateChapter(req)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Created(c, chapter)
}

// PUT /api/chapter/:id
func UpdateChapter(c *fiber.Ctx) error {
	var req services.ChapterInput
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	chapter, err := corpusService.UpdateChapter(c.Params("id"), req)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, chapter)
}

// DELETE /api/chapter/:id
func DeleteChapter(c *fiber.Ctx) error {
	if err := corpusService.DeleteChapter(c.Params("id")); err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Message(c, "Chapter deleted successfully")
}
