package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/scanner"
)

// BrowserStrategy renders the page in headless Chrome before extraction, for
// sites that build the article body with JavaScript.
type BrowserStrategy struct {
	execPath  string
	waitFor   string
	timeout   time.Duration
	userAgent string
	proxyURL  string
}

var _ scanner.Scanner = (*BrowserStrategy)(nil)

// BrowserOptions configure BrowserStrategy.
type BrowserOptions struct {
	ExecPath  string
	WaitFor   string
	Timeout   time.Duration
	UserAgent string
	ProxyURL  string
}

func NewBrowserStrategy(opts BrowserOptions) *BrowserStrategy {
	if opts.WaitFor == "" {
		opts.WaitFor = "body"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &BrowserStrategy{
		execPath:  opts.ExecPath,
		waitFor:   opts.WaitFor,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		proxyURL:  opts.ProxyURL,
	}
}

// Name identifies the strategy inside the registry.
func (b *BrowserStrategy) Name() string {
	return "browser"
}

// Scan navigates to req.URL, waits for the configured selector and extracts
// the article from the rendered DOM. Options["waitFor"] overrides the selector per site.
func (b *BrowserStrategy) Scan(ctx context.Context, req scanner.Request) (domain.RawArticle, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(b.userAgent),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}
	if b.proxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(b.proxyURL))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	waitFor := b.waitFor
	if custom := req.Options["waitFor"]; custom != "" {
		waitFor = custom
	}

	var html string
	if err := chromedp.Run(runCtx,
		chromedp.Navigate(req.URL),
		chromedp.WaitReady(waitFor, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return domain.RawArticle{}, fmt.Errorf("render page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.RawArticle{}, fmt.Errorf("parse rendered document: %w", err)
	}
	return Extract(doc, req, b.Name()), nil
}
