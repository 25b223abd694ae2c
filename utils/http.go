// utils/http.go - Response envelope and query helpers for Fiber
package utils

import (
	"log"
	"os"
	"strconv"

	"scripturedash/services"

	"github.com/gofiber/fiber/v2"
)

// Success sends {"success": true, "data": data}
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// Created is Success with a 201 status
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// Message sends a success envelope with only a message
func Message(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// List sends one page of a collection with its totals next to the data
func List[T any](c *fiber.Ctx, page *services.Page[T]) error {
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       page.Data,
		"page":       page.Page,
		"limit":      page.Limit,
		"totalCount": page.TotalCount,
		"totalPages": page.TotalPages,
	})
}

// JSONError sends a failure envelope with the given status
func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"message": message,
	})
}

// ServiceError maps a service failure onto its HTTP status. Internal errors
// are logged and their cause is hidden in production.
func ServiceError(c *fiber.Ctx, err error) error {
	se := services.AsServiceError(err)

	message := se.Message
	if se.Status >= 500 {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		if os.Getenv("APP_ENV") == "production" {
			message = "An error occurred. Please try again later."
		}
	}

	body := fiber.Map{
		"success": false,
		"error":   message,
		"message": message,
		"code":    se.Code,
	}
	if len(se.Details) > 0 {
		body["details"] = se.Details
	}
	return c.Status(se.Status).JSON(body)
}

// ListParams reads page, limit, search and the filter keys from the query string
func ListParams(c *fiber.Ctx) services.ListParams {
	return services.ListParams{
		Page:      QueryInt(c, "page", 1),
		Limit:     QueryInt(c, "limit", services.DefaultPageSize),
		Search:    c.Query("search"),
		Testament: c.Query("testament"),
		BookID:    c.Query("bookId"),
		ChapterID: c.Query("chapterId"),
	}
}

// QueryInt reads an integer query parameter, falling back on absent or bad input
func QueryInt(c *fiber.Ctx, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}
