package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"scripturedash/export"
	"scripturedash/models"
	"scripturedash/verseparser"

	"golang.org/x/sync/errgroup"
)

// Page is one page of a list endpoint.
type Page[T any] struct {
	Data       []T
	Page       int
	Limit      int
	TotalCount int64
	TotalPages int
}

// ListOptions are the query parameters shared by the list endpoints.
type ListOptions struct {
	Page      int
	Limit     int
	Search    string
	Testament string
	BookID    string
	ChapterID string
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.Testament != "" {
		q.Set("testament", o.Testament)
	}
	if o.BookID != "" {
		q.Set("bookId", o.BookID)
	}
	if o.ChapterID != "" {
		q.Set("chapterId", o.ChapterID)
	}
	return q
}

func list[T any](ctx context.Context, c *Client, path string, opts ListOptions) (*Page[T], error) {
	var data []T
	env, err := c.do(ctx, http.MethodGet, path, opts.values(), nil, &data)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Data:       data,
		Page:       env.Page,
		Limit:      env.Limit,
		TotalCount: env.TotalCount,
		TotalPages: env.TotalPages,
	}, nil
}

func (c *Client) ListBooks(ctx context.Context, opts ListOptions) (*Page[models.Book], error) {
	return list[models.Book](ctx, c, "/api/book", opts)
}

func (c *Client) ListChapters(ctx context.Context, opts ListOptions) (*Page[models.ChapterView], error) {
	return list[models.ChapterView](ctx, c, "/api/chapter", opts)
}

func (c *Client) ListVerses(ctx context.Context, opts ListOptions) (*Page[models.VerseView], error) {
	return list[models.VerseView](ctx, c, "/api/verse", opts)
}

func (c *Client) CreateBook(ctx context.Context, name string, testament models.Testament) (*models.Book, error) {
	var book models.Book
	body := map[string]any{"name": name, "testament": testament}
	if _, err := c.do(ctx, http.MethodPost, "/api/book", nil, body, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) CreateChapter(ctx context.Context, bookID string, number int) (*models.Chapter, error) {
	var chapter models.Chapter
	body := map[string]any{"number": number, "bookId": bookID}
	if _, err := c.do(ctx, http.MethodPost, "/api/chapter", nil, body, &chapter); err != nil {
		return nil, err
	}
	return &chapter, nil
}

// CreateVerse stores one parsed line in a chapter
func (c *Client) CreateVerse(ctx context.Context, chapterID string, line verseparser.Line) (*models.Verse, error) {
	var verse models.Verse
	body := map[string]any{"number": line.Number, "text": line.Text, "chapterId": chapterID}
	if _, err := c.do(ctx, http.MethodPost, "/api/verse", nil, body, &verse); err != nil {
		return nil, err
	}
	return &verse, nil
}

// UpdateVerse replaces a verse with a parsed line
func (c *Client) UpdateVerse(ctx context.Context, id, chapterID string, line verseparser.Line) (*models.Verse, error) {
	var verse models.Verse
	body := map[string]any{"number": line.Number, "text": line.Text, "chapterId": chapterID}
	if _, err := c.do(ctx, http.MethodPut, "/api/verse/"+url.PathEscape(id), nil, body, &verse); err != nil {
		return nil, err
	}
	return &verse, nil
}

func (c *Client) DeleteVerse(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/verse/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// BulkUploadRequest mirrors the bulk upload dialog.
type BulkUploadRequest struct {
	BookID        string `json:"bookId,omitempty"`
	BookName      string `json:"bookName,omitempty"`
	Testament     string `json:"testament,omitempty"`
	ChapterID     string `json:"chapterId,omitempty"`
	ChapterNumber int    `json:"chapterNumber,omitempty"`
	VersesText    string `json:"versesText"`
}

type BulkUploadResult struct {
	Book           models.Book         `json:"book"`
	Chapter        models.Chapter      `json:"chapter"`
	BookCreated    bool                `json:"bookCreated"`
	ChapterCreated bool                `json:"chapterCreated"`
	Created        int                 `json:"created"`
	Updated        int                 `json:"updated"`
	Unchanged      int                 `json:"unchanged"`
	Warnings       []verseparser.Issue `json:"warnings"`
}

func (c *Client) BulkUpload(ctx context.Context, req BulkUploadRequest) (*BulkUploadResult, error) {
	var result BulkUploadResult
	if _, err := c.do(ctx, http.MethodPost, "/api/verse/bulk", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats is the dashboard summary.
type Stats struct {
	Books    int64  `json:"books"`
	Chapters int64  `json:"chapters"`
	Verses   int64  `json:"verses"`
	Updated  string `json:"lastUpdated"`
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if _, err := c.do(ctx, http.MethodGet, "/api/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Corpus is every book, chapter and verse on the server.
type Corpus struct {
	Books    []models.Book
	Chapters []models.Chapter
	Verses   []models.Verse
}

func fetchAll[T any](ctx context.Context, c *Client, path string, pageSize int) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		p, err := list[T](ctx, c, path, ListOptions{Page: page, Limit: pageSize})
		if err != nil {
			return nil, fmt.Errorf("fetch %s page %d: %w", path, page, err)
		}
		all = append(all, p.Data...)
		if page >= p.TotalPages || len(p.Data) == 0 {
			return all, nil
		}
	}
}

// FetchCorpus pages through books, chapters and verses concurrently. The
// first failure cancels the other fetches.
func (c *Client) FetchCorpus(ctx context.Context, pageSize int) (*Corpus, error) {
	if pageSize < 1 {
		pageSize = 1000
	}

	var corpus Corpus
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		books, err := fetchAll[models.Book](ctx, c, "/api/book", pageSize)
		corpus.Books = books
		return err
	})
	g.Go(func() error {
		views, err := fetchAll[models.ChapterView](ctx, c, "/api/chapter", pageSize)
		for _, v := range views {
			corpus.Chapters = append(corpus.Chapters, v.Chapter)
		}
		return err
	})
	g.Go(func() error {
		views, err := fetchAll[models.VerseView](ctx, c, "/api/verse", pageSize)
		for _, v := range views {
			corpus.Verses = append(corpus.Verses, v.Verse)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &corpus, nil
}

// Export downloads the server-built export document
func (c *Client) Export(ctx context.Context) (export.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return export.Document{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/export", nil)
	if err != nil {
		return export.Document{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken())
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return export.Document{}, fmt.Errorf("GET /api/export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return export.Document{}, &APIError{Status: resp.StatusCode, Message: "export failed"}
	}
	return export.Decode(resp.Body)
}
