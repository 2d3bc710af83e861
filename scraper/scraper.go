// Package scraper defines the page-fetching contract consumed by
// extraction strategies. Two implementations exist: a headless-Chrome
// fetcher (scraper/browser) for client-rendered trail reports and a
// plain-HTTP fetcher (scraper/static) for server-rendered ones.
package scraper

import "errors"

// ErrNoElement is returned when a selector matches nothing within the
// bounded wait.
var ErrNoElement = errors.New("scraper: no matching element")

// Element is one DOM node handle. All queries are scoped to the node's
// subtree.
type Element interface {
	// Text returns the trimmed text content of the first descendant
	// matching selector.
	Text(selector string) (string, error)
	// Attr returns the named attribute of the first descendant matching
	// selector, or "" when the attribute is absent.
	Attr(selector, attr string) (string, error)
	// Has reports whether any descendant matches selector, without
	// waiting.
	Has(selector string) bool
	// Elements returns all descendants matching selector, without
	// waiting.
	Elements(selector string) ([]Element, error)
}

// PageFetcher is the minimal capability set extraction strategies need:
// navigate and find. Cookies, script execution and screenshots are
// deliberately not part of the contract.
type PageFetcher interface {
	Navigate(url string) error
	// FindElements waits up to the fetcher's element timeout for at
	// least one match.
	FindElements(selector string) ([]Element, error)
	// FindElement waits for and returns the first match.
	FindElement(selector string) (Element, error)
	Close() error
}

// PageFactory hands out one page per concurrent scrape. Pages are never
// shared across resorts.
type PageFactory interface {
	NewPage() (PageFetcher, error)
}
