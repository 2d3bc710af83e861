// Package browser implements the scraper contract on top of a headless
// Chrome driven through chromedp.
package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"opentrail/config"
	"opentrail/scraper"
	"opentrail/utils"
)

const navigateTimeout = 90 * time.Second

// Fetcher owns one Chrome process and hands out tabs as pages.
type Fetcher struct {
	allocCtx    context.Context
	cancelFns   []context.CancelFunc
	waitTimeout time.Duration
	logger      *utils.Logger
}

// NewFetcher starts a headless Chrome allocator. Close must be called
// to shut the browser down.
func NewFetcher(cfg *config.Config, logger *utils.Logger) *Fetcher {
	chromeBin := findChromeBinary(cfg.ChromeBin)
	logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	return &Fetcher{
		allocCtx:    silentCtx,
		cancelFns:   []context.CancelFunc{cancelSilent, cancelAlloc},
		waitTimeout: time.Duration(cfg.ElementWaitSeconds) * time.Second,
		logger:      logger,
	}
}

// NewPage opens a fresh tab. One page per resort scrape; the caller
// closes it when the resort is done.
func (f *Fetcher) NewPage() (scraper.PageFetcher, error) {
	ctx, cancel := chromedp.NewContext(f.allocCtx)
	return &Page{ctx: ctx, cancel: cancel, waitTimeout: f.waitTimeout}, nil
}

// Close shuts down the browser process.
func (f *Fetcher) Close() {
	for _, cancel := range f.cancelFns {
		cancel()
	}
}

// Page is one Chrome tab implementing scraper.PageFetcher.
type Page struct {
	ctx         context.Context
	cancel      context.CancelFunc
	waitTimeout time.Duration
}

func (p *Page) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(p.ctx, navigateTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	return nil
}

// FindElements waits up to the element timeout for at least one match,
// the same bounded-wait semantics a trail report rendered client-side
// needs.
func (p *Page) FindElements(selector string) ([]scraper.Element, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.waitTimeout)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll)); err != nil {
		return nil, fmt.Errorf("browser: find %q: %w", selector, err)
	}
	return p.wrap(nodes), nil
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

func (p *Page) Close() error {
	p.cancel()
	return nil
}

func (p *Page) wrap(nodes []*cdp.Node) []scraper.Element {
	elements := make([]scraper.Element, 0, len(nodes))
	for _, node := range nodes {
		elements = append(elements, &element{page: p, node: node})
	}
	return elements
}

// element scopes queries to one DOM node via chromedp.FromNode.
type element struct {
	page *Page
	node *cdp.Node
}

func (e *element) Text(selector string) (string, error) {
	ctx, cancel := context.WithTimeout(e.page.ctx, e.page.waitTimeout)
	defer cancel()

	var text string
	err := chromedp.Run(ctx, chromedp.Text(selector, &text,
		chromedp.ByQuery, chromedp.FromNode(e.node)))
	if err != nil {
		return "", fmt.Errorf("browser: text %q: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

func (e *element) Attr(selector, attr string) (string, error) {
	ctx, cancel := context.WithTimeout(e.page.ctx, e.page.waitTimeout)
	defer cancel()

	var value string
	var ok bool
	err := chromedp.Run(ctx, chromedp.AttributeValue(selector, attr, &value, &ok,
		chromedp.ByQuery, chromedp.FromNode(e.node)))
	if err != nil {
		return "", fmt.Errorf("browser: attr %q[%s]: %w", selector, attr, err)
	}
	if !ok {
		return "", nil
	}
	return value, nil
}

func (e *element) Has(selector string) bool {
	children, err := e.Elements(selector)
	return err == nil && len(children) > 0
}

// Elements does not wait: an absent child is an answer, not a timeout.
func (e *element) Elements(selector string) ([]scraper.Element, error) {
	ctx, cancel := context.WithTimeout(e.page.ctx, e.page.waitTimeout)
	defer cancel()

	var nodes []*cdp.Node
	err := chromedp.Run(ctx, chromedp.Nodes(selector, &nodes,
		chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("browser: elements %q: %w", selector, err)
	}
	return e.page.wrap(nodes), nil
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
