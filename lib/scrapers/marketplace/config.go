package marketplace

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	RenderHttp    = "http"
	RenderBrowser = "browser"
)

// Selectors holds one fallback list per extracted field. Field selectors
// may end in "@attr" to read an attribute instead of text.
type Selectors struct {
	Card        []string `json:"card"`
	Title       []string `json:"title"`
	Price       []string `json:"price"`
	Link        []string `json:"link"`
	Image       []string `json:"image"`
	Seller      []string `json:"seller"`
	Location    []string `json:"location"`
	Description []string `json:"description"`
	// markers of a legitimate "no results" page
	Empty []string `json:"empty"`
}

type PlatformConfig struct {
	Name    string `json:"name"`
	BaseUrl string `json:"base_url"`
	// path and query of a search page, {query} is replaced by the
	// escaped keyword, {page} by the 1-based page number and {offset}
	// by (page-1)*PageSize.
	SearchPath string `json:"search_path"`
	Pages      int    `json:"pages"`
	PageSize   int    `json:"page_size"`
	// "http" (default) or "browser"
	Render    string    `json:"render"`
	DelayMs   int       `json:"delay_ms"`
	Disabled  bool      `json:"disabled"`
	Selectors Selectors `json:"selectors"`
}

func (c PlatformConfig) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if _, err := url.ParseRequestURI(c.BaseUrl); err != nil {
		errs = append(errs, fmt.Errorf("base_url: %w", err))
	}
	if !strings.Contains(c.SearchPath, "{query}") {
		errs = append(errs, errors.New("search_path must contain {query}"))
	}
	if c.Render != "" && c.Render != RenderHttp && c.Render != RenderBrowser {
		errs = append(errs, fmt.Errorf("unknown render mode %q", c.Render))
	}
	if len(c.Selectors.Card) == 0 {
		errs = append(errs, errors.New("at least one card selector is required"))
	}
	if len(c.Selectors.Title) == 0 || len(c.Selectors.Link) == 0 {
		errs = append(errs, errors.New("title and link selectors are required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("platform %q: %w", c.Name, errors.Join(errs...))
	}
	return nil
}

func (c PlatformConfig) PageCount() int {
	if c.Pages <= 0 {
		return 1
	}
	return c.Pages
}

func (c PlatformConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

// SearchUrl builds the url of a page of search results, pages start at 1.
func (c PlatformConfig) SearchUrl(keyword string, page int) (string, error) {
	base, err := url.Parse(c.BaseUrl)
	if err != nil {
		return "", err
	}
	offset := 0
	if c.PageSize > 0 {
		offset = (page - 1) * c.PageSize
	}
	path := strings.NewReplacer(
		"{query}", url.QueryEscape(strings.TrimSpace(keyword)),
		"{page}", strconv.Itoa(page),
		"{offset}", strconv.Itoa(offset),
	).Replace(c.SearchPath)

	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// Find returns the platform with the given name.
func Find(platforms []PlatformConfig, name string) (PlatformConfig, bool) {
	for _, p := range platforms {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return PlatformConfig{}, false
}
