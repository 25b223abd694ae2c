package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"scripturedash/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// fakeServer answers the auth endpoints and pages through n books.
type fakeServer struct {
	mu          sync.Mutex
	authHeaders map[string]string
	validToken  string
	books       int
}

func newFakeServer(t *testing.T, books int) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{authHeaders: map[string]string{}, validToken: "access-1", books: books}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		fs.record(r)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			writeJSON(w, 401, map[string]any{"success": false, "error": "Invalid credentials"})
			return
		}
		writeJSON(w, 200, map[string]any{"success": true, "data": map[string]string{
			"accessToken": "access-1", "refreshToken": "refresh-1",
		}})
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		fs.record(r)
		fs.mu.Lock()
		fs.validToken = "access-2"
		fs.mu.Unlock()
		writeJSON(w, 200, map[string]any{"success": true, "data": map[string]string{"accessToken": "access-2"}})
	})
	mux.HandleFunc("/api/book", func(w http.ResponseWriter, r *http.Request) {
		fs.record(r)
		fs.mu.Lock()
		valid := "Bearer " + fs.validToken
		fs.mu.Unlock()
		if r.Header.Get("Authorization") != valid {
			writeJSON(w, 401, map[string]any{"success": false, "error": "Invalid or expired token"})
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 20
		}
		var data []models.Book
		for i := (page - 1) * limit; i < page*limit && i < fs.books; i++ {
			data = append(data, models.Book{ID: strconv.Itoa(i), Name: "Book " + strconv.Itoa(i), Testament: models.TestamentCustom})
		}
		if data == nil {
			data = []models.Book{}
		}
		totalPages := (fs.books + limit - 1) / limit
		if totalPages < 1 {
			totalPages = 1
		}
		writeJSON(w, 200, map[string]any{
			"success": true, "data": data,
			"page": page, "limit": limit, "totalCount": fs.books, "totalPages": totalPages,
		})
	})
	mux.HandleFunc("/api/verse/bulk", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, map[string]any{
			"success": false, "error": "line 1: text before the first verse number", "message": "line 1: text before the first verse number",
			"code": "INVALID_REQUEST",
		})
	})
	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeServer) record(r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.authHeaders[r.URL.Path] = r.Header.Get("Authorization")
}

func TestLogin_StoresTokensAndSkipsAuthHeader(t *testing.T) {
	fs, srv := newFakeServer(t, 3)
	c := New(srv.URL, WithRateLimit(0, 0))
	ctx := context.Background()

	err := c.Login(ctx, "keeper", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	require.NoError(t, c.Login(ctx, "keeper", "secret"))
	assert.Equal(t, "access-1", c.AccessToken())

	// a second login carries a token but must not send it to /api/auth/
	require.NoError(t, c.Login(ctx, "keeper", "secret"))
	assert.Empty(t, fs.authHeaders["/api/auth/login"])

	page, err := c.ListBooks(ctx, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-1", fs.authHeaders["/api/book"])
	assert.Len(t, page.Data, 2)
	assert.EqualValues(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
}

func TestRefreshOnUnauthorized(t *testing.T) {
	fs, srv := newFakeServer(t, 1)
	c := New(srv.URL, WithRateLimit(0, 0))
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "keeper", "secret"))

	// server rotates the token; the client should refresh and retry once
	fs.mu.Lock()
	fs.validToken = "rotated"
	fs.mu.Unlock()

	_, err := c.ListBooks(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "access-2", c.AccessToken())
	assert.Empty(t, fs.authHeaders["/api/auth/refresh"])
}

func TestAPIErrorMessages(t *testing.T) {
	_, srv := newFakeServer(t, 0)
	c := New(srv.URL, WithRateLimit(0, 0))
	ctx := context.Background()

	_, err := c.BulkUpload(ctx, BulkUploadRequest{BookName: "Odes", ChapterNumber: 1, VersesText: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "INVALID_REQUEST", apiErr.Code)
	assert.Contains(t, apiErr.Message, "before the first verse")

	_, err = c.Stats(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "HTTP error! status: 502", apiErr.Message)
}

func TestFetchCorpus_PagesUntilDone(t *testing.T) {
	_, srv := newFakeServer(t, 7)
	c := New(srv.URL, WithRateLimit(0, 0))
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "keeper", "secret"))

	books, err := fetchAll[models.Book](ctx, c, "/api/book", 3)
	require.NoError(t, err)
	require.Len(t, books, 7)
	assert.Equal(t, "Book 6", books[6].Name)
}

func TestFetchCorpus_FailureCancels(t *testing.T) {
	// the fake server has no chapter or verse endpoints
	_, srv := newFakeServer(t, 2)
	c := New(srv.URL, WithRateLimit(0, 0))
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "keeper", "secret"))

	_, err := c.FetchCorpus(ctx, 10)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestWithRateLimit_Throttles(t *testing.T) {
	_, srv := newFakeServer(t, 1)
	c := New(srv.URL, WithRateLimit(1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Login(ctx, "keeper", "secret"))
	cancel()

	// the bucket is empty and the context is gone, so Wait fails fast
	_, err := c.ListBooks(ctx, ListOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWSURL(t *testing.T) {
	c := New("https://example.org/")
	u, err := c.wsURL("/ws/export")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.org/ws/export", u)

	c = New("http://localhost:3000")
	u, err = c.wsURL("/ws/export")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:3000/ws/export", u)
}
