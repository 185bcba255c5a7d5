package scanner

import (
	"context"
	"fmt"

	"NewsAnalyzer/internal/domain"
)

// Selectors are the CSS selectors of article fields provided by config.
type Selectors struct {
	Title   string
	Author  string
	Date    string
	Content string
}

// Request carries all parameters required to scan one article page.
type Request struct {
	URL       string
	SiteName  string
	Selectors Selectors
	Options   map[string]string
}

// Scanner captures a single strategy implementation (plain HTML, headless browser).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) (domain.RawArticle, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}
