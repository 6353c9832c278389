package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultMaxContentLen = 5000
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds scraper settings
type Config struct {
	Timeout       time.Duration
	MaxContentLen int
	UserAgent     string
}

// Page is the readable text extracted from a single URL
type Page struct {
	URL     string
	Title   string
	Content string
}

// Scraper fetches web pages and extracts their readable text
type Scraper struct {
	httpClient    *http.Client
	maxContentLen int
	userAgent     string
}

// New creates a scraper
func New(cfg *Config) *Scraper {
	if cfg == nil {
		cfg = &Config{}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxLen := cfg.MaxContentLen
	if maxLen == 0 {
		maxLen = defaultMaxContentLen
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Scraper{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxContentLen: maxLen,
		userAgent:     ua,
	}
}

// Fetch downloads a page and returns its title and readable text.
// Content is truncated to the configured maximum length.
func (s *Scraper) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	// Cap the read at 2MB to avoid unbounded pages
	limited := io.LimitReader(resp.Body, 2<<20)

	doc, err := html.Parse(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html from %s: %w", url, err)
	}

	title, content := extractText(doc)
	if content == "" {
		return nil, fmt.Errorf("no readable content at %s", url)
	}

	if len(content) > s.maxContentLen {
		// Cut on a rune boundary so the cap never produces invalid UTF-8
		cut := s.maxContentLen
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}

	return &Page{
		URL:     url,
		Title:   title,
		Content: content,
	}, nil
}

// extractText walks the DOM collecting visible text, skipping script
// and style subtrees
func extractText(doc *html.Node) (title string, content string) {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title, strings.Join(strings.Fields(sb.String()), " ")
}
