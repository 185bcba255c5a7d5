package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"NewsAnalyzer/internal/config"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
	"NewsAnalyzer/internal/scanner"
)

const (
	defaultSiteName = "default"

	// sharedScanTimeout bounds a scan that outlives the caller who started it.
	sharedScanTimeout = 2 * time.Minute
)

// Service implements ports.ArticleFetcher via registered scanner strategies.
// Sites are matched by host; concurrent fetches of one URL share a single scan.
type Service struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	cache    ports.ArticleCache
	group    singleflight.Group
	logger   *slog.Logger
}

var _ ports.ArticleFetcher = (*Service)(nil)

// NewService wires scanner registry with config-defined sites. cache may be nil.
func NewService(reg *scanner.Registry, sites []config.SiteConfig, cache ports.ArticleCache, log *slog.Logger) *Service {
	return &Service{
		registry: reg,
		sites:    sites,
		cache:    cache,
		logger:   log,
	}
}

// Fetch returns the parsed article. Only transport and configuration problems
// are errors; an unusable page is reported through RawArticle.Error.
func (s *Service) Fetch(ctx context.Context, rawURL string) (domain.RawArticle, error) {
	if s.registry == nil {
		return domain.RawArticle{}, fmt.Errorf("scanner registry is not configured")
	}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return failed(rawURL, "", fmt.Sprintf("некорректный URL: %q", rawURL)), nil
	}
	pageURL := parsed.String()

	if cached, ok := s.fromCache(ctx, pageURL); ok {
		return cached, nil
	}

	// The scan is shared by every caller of pageURL, so it must not die with
	// the first caller's context. Each caller still stops waiting on its own.
	ch := s.group.DoChan(pageURL, func() (any, error) {
		scanCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedScanTimeout)
		defer cancel()

		article, err := s.scan(scanCtx, pageURL, parsed.Hostname())
		if err == nil && article.Error == nil {
			s.toCache(scanCtx, pageURL, article)
		}
		return article, err
	})

	select {
	case <-ctx.Done():
		return domain.RawArticle{}, fmt.Errorf("fetch %s: %w", pageURL, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.RawArticle{}, res.Err
		}
		article := res.Val.(domain.RawArticle)
		s.debug("article fetched", "url", pageURL, "parser", article.ParserType, "shared", res.Shared)
		return article, nil
	}
}

func (s *Service) scan(ctx context.Context, pageURL, host string) (domain.RawArticle, error) {
	site, err := s.siteFor(host)
	if err != nil {
		return domain.RawArticle{}, err
	}

	strategy, err := s.registry.Resolve(site.Scanner)
	if err != nil {
		return domain.RawArticle{}, fmt.Errorf("site %s: %w", site.Name, err)
	}

	s.debug("scan page", "site", site.Name, "scanner", site.Scanner, "url", pageURL)
	article, err := strategy.Scan(ctx, scanner.Request{
		URL:      pageURL,
		SiteName: site.Name,
		Options:  site.Options,
		Selectors: scanner.Selectors{
			Title:   site.Selectors.Title,
			Author:  site.Selectors.Author,
			Date:    site.Selectors.Date,
			Content: site.Selectors.Content,
		},
	})
	if err != nil {
		return domain.RawArticle{}, fmt.Errorf("scan site %s: %w", site.Name, err)
	}
	return article, nil
}

// siteFor matches host against site hosts, subdomains included, and falls
// back to the site named "default" or the first site without hosts.
func (s *Service) siteFor(host string) (config.SiteConfig, error) {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")

	var fallback *config.SiteConfig
	for i := range s.sites {
		site := &s.sites[i]
		for _, h := range site.Hosts {
			h = strings.TrimPrefix(strings.ToLower(h), "www.")
			if host == h || strings.HasSuffix(host, "."+h) {
				return *site, nil
			}
		}
		if fallback == nil && (site.Name == defaultSiteName || len(site.Hosts) == 0) {
			fallback = site
		}
	}
	if fallback == nil {
		return config.SiteConfig{}, fmt.Errorf("no site configured for host %s", host)
	}
	return *fallback, nil
}

func (s *Service) fromCache(ctx context.Context, pageURL string) (domain.RawArticle, bool) {
	if s.cache == nil {
		return domain.RawArticle{}, false
	}
	article, ok, err := s.cache.Get(ctx, pageURL)
	if err != nil {
		s.warn("article cache read failed", "url", pageURL, "error", err)
		return domain.RawArticle{}, false
	}
	if ok {
		s.debug("article cache hit", "url", pageURL)
	}
	return article, ok
}

func (s *Service) toCache(ctx context.Context, pageURL string, article domain.RawArticle) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, pageURL, article); err != nil {
		s.warn("article cache write failed", "url", pageURL, "error", err)
	}
}

func (s *Service) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Service) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
