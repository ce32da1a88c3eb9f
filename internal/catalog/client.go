package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/ordersheet/internal/models"
	"github.com/lehigh-university-libraries/ordersheet/internal/ratelimit"
)

const (
	// DefaultBaseURL is the swisscovery network zone SRU endpoint
	DefaultBaseURL    = "https://swisscovery.slsp.ch/view/sru/41SLSP_NETWORK"
	DefaultTimeout    = 10 * time.Second
	DefaultInterval   = 300 * time.Millisecond
	DefaultMaxRecords = 10

	sruVersion     = "1.2"
	titleMaxLength = 50
)

// Client represents an SRU search client for the union catalog
type Client struct {
	BaseURL    string
	MaxRecords int
	httpClient *http.Client
	pacer      *ratelimit.Pacer
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithInterval sets the minimum interval between requests
func WithInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.pacer = ratelimit.NewPacer("sru", interval)
	}
}

// WithMaxRecords caps the number of records returned per query
func WithMaxRecords(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.MaxRecords = n
		}
	}
}

// WithHTTPClient replaces the HTTP client. Apply WithTimeout after it to override its timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new SRU client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    baseURL,
		MaxRecords: DefaultMaxRecords,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		pacer: ratelimit.NewPacer("sru", DefaultInterval),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchResponse is the parsed result of one SRU query
type SearchResponse struct {
	Count   int
	Matches []models.CatalogMatch
}

// Detect checks whether a title is already held in the catalog. The ISBN is
// searched first; a title search runs only when the ISBN search found nothing.
// Failures are reported in the result, never returned.
func (c *Client) Detect(ctx context.Context, isbn, title string) models.SearchResult {
	isbn = NormalizeISBN(isbn)
	title = strings.TrimSpace(title)

	var isbnErr error
	if isbn != "" {
		resp, err := c.SearchISBN(ctx, isbn)
		switch {
		case err != nil:
			slog.Warn("ISBN search failed", "isbn", isbn, "error", err)
			isbnErr = err
		case resp.Count > 0:
			return newResult(resp, models.SearchISBN)
		}
	}

	if title != "" {
		resp, err := c.SearchTitle(ctx, title)
		if err != nil {
			slog.Warn("Title search failed", "title", title, "error", err)
			return models.SearchResult{Status: models.Error, SearchType: models.SearchTitle, Err: err}
		}
		return newResult(resp, models.SearchTitle)
	}

	if isbnErr != nil {
		return models.SearchResult{Status: models.Error, SearchType: models.SearchISBN, Err: isbnErr}
	}
	if isbn != "" {
		return models.SearchResult{Status: models.NotFound, SearchType: models.SearchISBN}
	}
	return models.SearchResult{Status: models.NotFound, SearchType: models.SearchNone}
}

func newResult(resp *SearchResponse, searchType models.SearchType) models.SearchResult {
	status := models.NotFound
	if resp.Count > 0 {
		status = models.Found
	}
	return models.SearchResult{
		Status:     status,
		HitCount:   resp.Count,
		Matches:    resp.Matches,
		SearchType: searchType,
	}
}

// SearchISBN searches the catalog by ISBN
func (c *Client) SearchISBN(ctx context.Context, isbn string) (*SearchResponse, error) {
	return c.search(ctx, "alma.isbn="+NormalizeISBN(isbn))
}

// SearchTitle searches the catalog by the first 50 characters of a title
func (c *Client) SearchTitle(ctx context.Context, title string) (*SearchResponse, error) {
	return c.search(ctx, "alma.title="+TruncateTitle(strings.TrimSpace(title)))
}

func (c *Client) search(ctx context.Context, query string) (*SearchResponse, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("version", sruVersion)
	params.Set("operation", "searchRetrieve")
	params.Set("query", query)
	params.Set("maximumRecords", strconv.Itoa(c.MaxRecords))
	params.Set("recordSchema", "marcxml")

	searchURL := c.BaseURL + "?" + params.Encode()
	slog.Debug("SRU request", "query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create SRU request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query SRU: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("SRU returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	result, err := ParseResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	slog.Debug("SRU response", "query", query, "hits", result.Count, "records", len(result.Matches))
	return result, nil
}

// NormalizeISBN strips hyphens and spaces
func NormalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	return strings.TrimSpace(isbn)
}

// TruncateTitle returns the first 50 characters of a title
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= titleMaxLength {
		return title
	}
	return string(runes[:titleMaxLength])
}
