package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/scanner"
)

const (
	defaultUserAgent = "NewsAnalyzer/1.0"
	noContentError   = "не удалось извлечь текст статьи"
)

// NewHTTPClient builds the client used for page downloads, routed through
// proxyURL when it is set.
func NewHTTPClient(timeout time.Duration, proxyURL string) (*http.Client, error) {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		proxy, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}
	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

// HTMLStrategy downloads a page over plain HTTP and extracts the article with
// the site's CSS selectors.
type HTMLStrategy struct {
	client    *http.Client
	userAgent string
}

var _ scanner.Scanner = (*HTMLStrategy)(nil)

// NewHTMLStrategy wires an HTTP client; a nil client gets a 20s timeout.
func NewHTMLStrategy(client *http.Client, userAgent string) *HTMLStrategy {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTMLStrategy{client: client, userAgent: userAgent}
}

// Name identifies the strategy inside the registry.
func (h *HTMLStrategy) Name() string {
	return "html"
}

// Scan fetches req.URL. Transport failures are errors; a page that answers
// but is not an article comes back with RawArticle.Error set.
func (h *HTMLStrategy) Scan(ctx context.Context, req scanner.Request) (domain.RawArticle, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return domain.RawArticle{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", h.userAgent)
	httpReq.Header.Set("Accept-Language", "ru,en;q=0.8")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return domain.RawArticle{}, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return failed(req.URL, h.Name(), fmt.Sprintf("страница вернула статус %s", resp.Status)), nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.RawArticle{}, fmt.Errorf("parse document: %w", err)
	}

	return Extract(doc, req, h.Name()), nil
}

// Extract reads the article fields from doc, falling back to common meta tags
// when a selector is empty or matches nothing.
func Extract(doc *goquery.Document, req scanner.Request, parserType string) domain.RawArticle {
	sel := req.Selectors

	title := firstText(doc, sel.Title)
	if title == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	author := firstText(doc, sel.Author)
	if author == "" {
		author = metaContent(doc, `meta[name="author"]`)
	}

	date := dateValue(doc, sel.Date)
	if date == "" {
		date = metaContent(doc, `meta[property="article:published_time"]`)
	}

	text := joinedText(doc, sel.Content)
	if text == "" {
		text = joinedText(doc, "article p")
	}

	article := domain.RawArticle{
		Title:      domain.StringPtr(title),
		Author:     domain.StringPtr(author),
		Date:       domain.StringPtr(date),
		Text:       domain.StringPtr(text),
		URL:        req.URL,
		ParserType: parserType,
	}
	if text == "" {
		article.Error = domain.StringPtr(noContentError)
	}
	return article
}

func failed(pageURL, parserType, msg string) domain.RawArticle {
	return domain.RawArticle{URL: pageURL, ParserType: parserType, Error: domain.StringPtr(msg)}
}

func firstText(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	return collapse(doc.Find(selector).First().Text())
}

func metaContent(doc *goquery.Document, selector string) string {
	value, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(value)
}

// dateValue prefers machine-readable attributes over the visible text.
func dateValue(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	node := doc.Find(selector).First()
	for _, attr := range []string{"datetime", "content"} {
		if value, ok := node.Attr(attr); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return collapse(node.Text())
}

func joinedText(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	var parts []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := collapse(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
