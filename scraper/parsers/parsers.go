// Package parsers holds the per-resort extraction strategies and the
// registry that resolves a resort's stored parser name to a strategy.
// Each strategy turns a fetched trail-report page into uniform observed
// lift/trail records; the CSS specifics per site are incidental and
// live entirely inside the strategy.
package parsers

import (
	"errors"
	"fmt"
	"sort"

	"opentrail/models"
	"opentrail/scraper"
	"opentrail/utils"
)

// ErrUnknownParser is returned when a resort names a parser that was
// never registered. Resolution fails closed.
var ErrUnknownParser = errors.New("parsers: unknown parser")

// Strategy is the extraction contract. Lifts and Trails re-read the
// page on every call. SnowReport returns (nil, nil) when the site has
// no snow report to parse.
type Strategy interface {
	Lifts() ([]models.ObservedLift, error)
	Trails() ([]models.ObservedTrail, error)
	SnowReport() (*models.SnowReport, error)
}

// Factory builds a strategy bound to an already-navigated page.
type Factory func(page scraper.PageFetcher, logger *utils.Logger) Strategy

type entry struct {
	factory Factory
	static  bool
}

var registry = map[string]entry{}

// Register adds a strategy under the name resorts store in parser_name.
// static marks strategies whose pages are server-rendered and should be
// fetched over plain HTTP instead of a browser.
func Register(name string, static bool, factory Factory) {
	registry[name] = entry{factory: factory, static: static}
}

// New resolves name to a strategy bound to page.
func New(name string, page scraper.PageFetcher, logger *utils.Logger) (Strategy, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParser, name)
	}
	return e.factory(page, logger), nil
}

// IsStatic reports whether the named strategy wants the static fetcher.
func IsStatic(name string) (bool, error) {
	e, ok := registry[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownParser, name)
	}
	return e.static, nil
}

// Names returns all registered parser names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// observeLift builds an ObservedLift, deriving is_open with the fixed
// lowercase-equality rule.
func observeLift(name, status string) models.ObservedLift {
	return models.ObservedLift{
		Name:   name,
		Status: status,
		IsOpen: models.IsOpenStatus(status),
	}
}

// observeTrail builds an ObservedTrail, deriving is_open and the
// normalized rating from the strategy's trail-type mapping.
func observeTrail(name, trailType, status string, groomed *bool, nightSkiing bool, ratings map[string]models.Rating) models.ObservedTrail {
	return models.ObservedTrail{
		Name:        name,
		TrailType:   trailType,
		Status:      status,
		IsOpen:      models.IsOpenStatus(status),
		Rating:      models.RatingFor(ratings, trailType),
		Groomed:     groomed,
		NightSkiing: nightSkiing,
	}
}

func boolPtr(b bool) *bool { return &b }
