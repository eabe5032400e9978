// Package scrape fetches external websites for competitor and design
// analysis and translates the responses into the application's normalized
// shape.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"sitecanvas-backend/application/ports"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

const maxContentBytes = 256 << 10

// HTTPScraper calls a scraping API that renders a page and returns its
// extracted text. The raw response is translated here so the rest of the
// system never sees the external service's field names.
type HTTPScraper struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// Config configures the scraper client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewHTTPScraper creates a scraper against the configured scraping API.
func NewHTTPScraper(cfg Config, logger *zap.Logger) *HTTPScraper {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "scraper",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &HTTPScraper{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		breaker:    breaker,
		logger:     logger,
	}
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	} `json:"data"`
	Error string `json:"error"`
}

// Scrape fetches one URL. Content is truncated to a fixed cap so one huge
// page cannot dominate the generated prompt.
func (s *HTTPScraper) Scrape(ctx context.Context, url string) (*ports.ScrapedSite, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, pkgerrors.NewValidationError("scrape URL must be absolute: " + url)
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetch(ctx, url)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, pkgerrors.NewExternalError("scrape API temporarily unavailable", err)
		}
		return nil, err
	}
	return result.(*ports.ScrapedSite), nil
}

func (s *HTTPScraper) fetch(ctx context.Context, url string) (*ports.ScrapedSite, error) {
	body, err := json.Marshal(scrapeRequest{URL: url, Formats: []string{"markdown"}})
	if err != nil {
		return nil, pkgerrors.NewInternalError("marshaling scrape request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.NewInternalError("building scrape request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.NewExternalError("scrape request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, pkgerrors.NewExternalError("reading scrape response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.NewExternalError(
			fmt.Sprintf("scrape API returned status %d", resp.StatusCode), nil)
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, pkgerrors.NewExternalError("decoding scrape response", err)
	}
	if !parsed.Success {
		return nil, pkgerrors.NewExternalError("scrape failed: "+parsed.Error, nil)
	}

	content := parsed.Data.Markdown
	if len(content) > maxContentBytes {
		content = content[:maxContentBytes]
	}

	s.logger.Debug("scrape finished",
		zap.String("url", url),
		zap.Int("content_bytes", len(content)),
		zap.Duration("elapsed", time.Since(start)))

	return &ports.ScrapedSite{
		URL:     url,
		Title:   parsed.Data.Metadata.Title,
		Content: content,
	}, nil
}

// MockScraper returns canned pages for development and testing.
type MockScraper struct {
	mu    sync.Mutex
	pages map[string]*ports.ScrapedSite
	err   error
	urls  []string
}

// NewMockScraper creates an empty mock scraper.
func NewMockScraper() *MockScraper {
	return &MockScraper{pages: make(map[string]*ports.ScrapedSite)}
}

// SetPage registers a canned result for a URL.
func (m *MockScraper) SetPage(url string, site *ports.ScrapedSite) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[url] = site
}

// SetError forces every Scrape call to fail (for testing).
func (m *MockScraper) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// URLs returns every URL requested so far.
func (m *MockScraper) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.urls...)
}

// Scrape returns the canned page for a URL, or a minimal placeholder when
// none was registered.
func (m *MockScraper) Scrape(ctx context.Context, url string) (*ports.ScrapedSite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.urls = append(m.urls, url)
	if site, ok := m.pages[url]; ok {
		return site, nil
	}
	return &ports.ScrapedSite{URL: url, Title: url, Content: "placeholder content for " + url}, nil
}
