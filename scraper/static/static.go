// Package static implements the scraper contract for server-rendered
// trail reports: a plain HTTP GET through resty and CSS queries over
// the response with goquery. No browser involved.
package static

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"opentrail/scraper"
	"opentrail/utils"
)

const requestTimeout = 30 * time.Second

// Fetcher builds pages backed by a shared resty client.
type Fetcher struct {
	client *resty.Client
	logger *utils.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(logger *utils.Logger) *Fetcher {
	client := resty.New().
		SetTimeout(requestTimeout).
		SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	return &Fetcher{client: client, logger: logger}
}

// NewPage returns an empty page; Navigate loads a document into it.
func (f *Fetcher) NewPage() (scraper.PageFetcher, error) {
	return &Page{client: f.client}, nil
}

// Page is one fetched document implementing scraper.PageFetcher.
type Page struct {
	client *resty.Client
	doc    *goquery.Document
}

func (p *Page) Navigate(url string) error {
	resp, err := p.client.R().Get(url)
	if err != nil {
		return fmt.Errorf("static: get %s: %w", url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("static: get %s: status %d", url, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return fmt.Errorf("static: parse %s: %w", url, err)
	}
	p.doc = doc
	return nil
}

func (p *Page) FindElements(selector string) ([]scraper.Element, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("static: find %q: page not navigated", selector)
	}
	return wrap(p.doc.Find(selector)), nil
}

func (p *Page) FindElement(selector string) (scraper.Element, error) {
	elements, err := p.FindElements(selector)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %q", scraper.ErrNoElement, selector)
	}
	return elements[0], nil
}

func (p *Page) Close() error { return nil }

func wrap(sel *goquery.Selection) []scraper.Element {
	elements := make([]scraper.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &element{sel: s})
	})
	return elements
}

type element struct {
	sel *goquery.Selection
}

func (e *element) Text(selector string) (string, error) {
	match := e.sel.Find(selector).First()
	if match.Length() == 0 {
		return "", fmt.Errorf("%w: %q", scraper.ErrNoElement, selector)
	}
	return strings.TrimSpace(match.Text()), nil
}

func (e *element) Attr(selector, attr string) (string, error) {
	match := e.sel.Find(selector).First()
	if match.Length() == 0 {
		return "", fmt.Errorf("%w: %q", scraper.ErrNoElement, selector)
	}
	value, _ := match.Attr(attr)
	return value, nil
}

func (e *element) Has(selector string) bool {
	return e.sel.Find(selector).Length() > 0
}

func (e *element) Elements(selector string) ([]scraper.Element, error) {
	return wrap(e.sel.Find(selector)), nil
}
