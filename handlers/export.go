// handlers/export.go - Corpus export as a download or a progress stream
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"scripturedash/export"
	"scripturedash/services"
	"scripturedash/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const exportTimeout = 60 * time.Second

// ExportCorpus sends the whole corpus as a dated JSON attachment
// GET /api/export
func ExportCorpus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), exportTimeout)
	defer cancel()

	result, err := corpusService.Export(ctx, nil)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, result.Document); err != nil {
		return utils.ServiceError(c, services.NewInternal("encode export", err))
	}

	filename := export.Filename(time.Now())
	log.Printf("📤 Export %s: %d books, %d chapters, %d verses",
		filename, result.Exported.Books, result.Exported.Chapters, result.Exported.Verses)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}

// ExportEvent is one message on the export websocket
type ExportEvent struct {
	Stage    string           `json:"stage"`
	Progress int              `json:"progress"`
	Filename string           `json:"filename,omitempty"`
	Stats    *export.Stats    `json:"stats,omitempty"`
	Document *export.Document `json:"document,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// ExportWebSocket streams export progress and finishes with the document
// WS /ws/export
func ExportWebSocket(conn *websocket.Conn) {
	defer conn.Close()

	username, _ := conn.Locals("username").(string)
	log.Printf("🔄 Export stream opened by %s", username)

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	var writeErr error
	send := func(event ExportEvent) {
		if writeErr != nil {
			return
		}
		if writeErr = conn.WriteJSON(event); writeErr != nil {
			log.Printf("❌ Export stream write failed: %v", writeErr)
			cancel()
		}
	}

	result, err := corpusService.Export(ctx, func(stage string, pct int) {
		if stage != services.StageDone {
			send(ExportEvent{Stage: stage, Progress: pct})
		}
	})
	if err != nil {
		send(ExportEvent{Stage: "error", Error: services.AsServiceError(err).Message})
		return
	}

	send(ExportEvent{
		Stage:    services.StageDone,
		Progress: 100,
		Filename: export.Filename(time.Now()),
		Stats:    &result.Exported,
		Document: &result.Document,
	})
}
