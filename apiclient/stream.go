package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"scripturedash/export"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// maxExportMessage bounds the final websocket message, which carries the
// whole document.
const maxExportMessage = 256 << 20

// ExportEvent is one message from /ws/export.
type ExportEvent struct {
	Stage    string           `json:"stage"`
	Progress int              `json:"progress"`
	Filename string           `json:"filename,omitempty"`
	Stats    *export.Stats    `json:"stats,omitempty"`
	Document *export.Document `json:"document,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func (c *Client) wsURL(path string) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	return u.String(), nil
}

// WatchExport runs a server-side export over the websocket, calling
// onProgress for every intermediate stage, and returns the final event.
func (c *Client) WatchExport(ctx context.Context, onProgress func(stage string, percent int)) (*ExportEvent, error) {
	target, err := c.wsURL("/ws/export")
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.AccessToken())
	header.Set("User-Agent", c.userAgent)

	conn, resp, err := websocket.Dial(ctx, target, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, &APIError{Status: resp.StatusCode, Message: "export stream refused"}
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(maxExportMessage)

	for {
		var event ExportEvent
		if err := wsjson.Read(ctx, conn, &event); err != nil {
			return nil, fmt.Errorf("read export stream: %w", err)
		}

		switch {
		case event.Stage == "error":
			return nil, errors.New(strings.TrimSpace("export failed: " + event.Error))
		case event.Document != nil:
			return &event, nil
		case onProgress != nil:
			onProgress(event.Stage, event.Progress)
		}
	}
}
