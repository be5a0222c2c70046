package routes

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"taskdesk/taskdesk/models"

	"github.com/gin-gonic/gin"
)

// Paginator reads page/page_size query parameters and builds the list
// envelope with absolute next/previous links.
type Paginator struct {
	PageSize    int
	MaxPageSize int
}

func (p Paginator) defaultSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// Request parses the page parameters. A page that is not a positive
// integer, or whose offset cannot be represented, writes 404 and returns false.
func (p Paginator) Request(c *gin.Context) (models.PageRequest, bool) {
	req := models.PageRequest{Page: 1, PageSize: p.defaultSize()}

	if raw := c.Query("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			req.PageSize = size
		}
	}
	if p.MaxPageSize > 0 && req.PageSize > p.MaxPageSize {
		req.PageSize = p.MaxPageSize
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page."})
			return req, false
		}
		req.Page = page
	}
	if !req.Addressable() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page."})
		return req, false
	}

	return req, true
}

// OutOfRange reports whether a page past the first holds no results.
func OutOfRange(req models.PageRequest, count int64) bool {
	return req.Page > 1 && int64(req.Offset()) >= count
}

// NewPage wraps results in the paginated envelope.
func NewPage[T any](c *gin.Context, req models.PageRequest, count int64, results []T) models.Page[T] {
	if results == nil {
		results = []T{}
	}
	page := models.Page[T]{Count: count, Results: results}

	if count-int64(req.Offset()) > int64(req.PageSize) {
		next := pageURL(c, req.Page+1)
		page.Next = &next
	}
	if req.Page > 1 {
		previous := pageURL(c, req.Page-1)
		page.Previous = &previous
	}
	return page
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := c.Request.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func parseBoolQuery(c *gin.Context, key string, fields map[string][]string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		fields[key] = append(fields[key], "Must be a valid boolean.")
		return nil
	}
	return &value
}

// parseCreatedRange reads created_after and created_before. Both accept an
// RFC 3339 timestamp or a YYYY-MM-DD date (midnight UTC).
func parseCreatedRange(c *gin.Context, fields map[string][]string) models.CreatedRange {
	return models.CreatedRange{
		After:  parseTimeQuery(c, "created_after", fields),
		Before: parseTimeQuery(c, "created_before", fields),
	}
}

func parseTimeQuery(c *gin.Context, key string, fields map[string][]string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if value, err := time.Parse(layout, raw); err == nil {
			return &value
		}
	}
	fields[key] = append(fields[key], "Enter a valid date/time.")
	return nil
}
