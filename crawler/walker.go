package crawler

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"catalogcrawl/catalog"
	"catalogcrawl/config"
	"catalogcrawl/oops"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type StopReason string

const (
	StopReasonEndOfCatalog StopReason = "end_of_catalog"
	StopReasonReachedKnown StopReason = "reached_known"
	StopReasonNoNextPage   StopReason = "no_next_page"
	StopReasonPageLimit    StopReason = "page_limit"
	StopReasonInconclusive StopReason = "inconclusive"
	StopReasonCancelled    StopReason = "cancelled"
)

type WalkResult struct {
	Records      []catalog.Record
	NewIds       []string
	PagesVisited int
	LastPage     int
	StopReason   StopReason
}

// Truncated means the walk stopped on a page that never rendered, so the catalog may continue past it.
func (r *WalkResult) Truncated() bool {
	return r.StopReason == StopReasonInconclusive
}

func PageUrl(baseUrl string, pageNumber int, pageSize int, startParam string) (string, error) {
	if pageNumber <= 1 {
		return baseUrl, nil
	}
	uri, err := url.Parse(baseUrl)
	if err != nil {
		return "", oops.Wrapf(err, "base url")
	}
	query := uri.Query()
	query.Set(startParam, strconv.Itoa((pageNumber-1)*pageSize))
	uri.RawQuery = query.Encode()
	return uri.String(), nil
}

type Walker struct {
	Scraper          *PageScraper
	BaseUrl          string
	PageSize         int
	StartParam       string
	MaxPages         int
	SettleDelay      time.Duration
	NextPageSelector string
	Clock            Clock
	Logger           Logger
}

func NewWalker(scraper *PageScraper, cfg config.Config, clock Clock, logger Logger) *Walker {
	return &Walker{
		Scraper:          scraper,
		BaseUrl:          cfg.Catalog.BaseUrl,
		PageSize:         cfg.Catalog.PageSize,
		StartParam:       cfg.Catalog.StartParam,
		MaxPages:         cfg.Catalog.MaxPages,
		SettleDelay:      cfg.Crawl.SettleDelay,
		NextPageSelector: cfg.Selectors.NextPage,
		Clock:            clock,
		Logger:           logger,
	}
}

// Walk visits pages in order until one of the stop conditions holds. knownIds are the identifiers
// already persisted. The only error is cancellation or a malformed base url.
func (w *Walker) Walk(ctx context.Context, knownIds []string) (*WalkResult, error) {
	// id -> page it was first seen on, 0 for persisted ids
	known := orderedmap.New[string, int]()
	for _, id := range knownIds {
		known.Set(id, 0)
	}

	result := &WalkResult{
		Records:      nil,
		NewIds:       nil,
		PagesVisited: 0,
		LastPage:     0,
		StopReason:   "",
	}
	defer func() {
		for pair := known.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value > 0 {
				result.NewIds = append(result.NewIds, pair.Key)
			}
		}
	}()

	for pageNumber := 1; ; pageNumber++ {
		pageUrl, err := PageUrl(w.BaseUrl, pageNumber, w.PageSize, w.StartParam)
		if err != nil {
			return nil, err
		}
		w.Logger.Info("Page %d: %s", pageNumber, pageUrl)
		pageResult := w.Scraper.ScrapePage(ctx, pageUrl, pageNumber)
		result.PagesVisited++

		switch pageResult.Status {
		case PageStatusCancelled:
			result.StopReason = StopReasonCancelled
			return result, oops.Wrapf(pageResult.Err, "page %d", pageNumber)
		case PageStatusExhausted:
			w.Logger.Error("Page %d never rendered, stopping with a possibly incomplete catalog", pageNumber)
			result.StopReason = StopReasonInconclusive
			return result, nil
		case PageStatusOk:
		}

		if len(pageResult.Records) == 0 {
			w.Logger.Info("Page %d is empty, end of catalog", pageNumber)
			result.StopReason = StopReasonEndOfCatalog
			return result, nil
		}

		allKnown := true
		for _, record := range pageResult.Records {
			id, ok := record.Id()
			if !ok {
				allKnown = false
				break
			}
			if _, ok := known.Get(id); !ok {
				allKnown = false
				break
			}
		}
		if allKnown {
			w.Logger.Info("Page %d only has known records, stopping", pageNumber)
			result.StopReason = StopReasonReachedKnown
			return result, nil
		}

		for _, record := range pageResult.Records {
			if id, ok := record.Id(); ok {
				if _, ok := known.Get(id); !ok {
					known.Set(id, pageNumber)
				}
			}
		}
		result.Records = append(result.Records, pageResult.Records...)
		result.LastPage = pageNumber

		if w.MaxPages > 0 && pageNumber >= w.MaxPages {
			w.Logger.Info("Reached page limit %d", w.MaxPages)
			result.StopReason = StopReasonPageLimit
			return result, nil
		}
		if !w.hasNextPage() {
			w.Logger.Info("Page %d has no usable next page control", pageNumber)
			result.StopReason = StopReasonNoNextPage
			return result, nil
		}

		if err := w.Clock.Sleep(ctx, w.SettleDelay); err != nil {
			result.StopReason = StopReasonCancelled
			return result, oops.Wrap(err)
		}
	}
}

func (w *Walker) hasNextPage() bool {
	controls, err := w.Scraper.Renderer.FindAll(w.NextPageSelector)
	if err != nil {
		w.Logger.Warn("Next page lookup error: %v", err)
		return false
	}
	if len(controls) == 0 {
		return false
	}
	isVisible, err := controls[0].IsVisible()
	if err != nil {
		w.Logger.Warn("Next page visibility error: %v", err)
		return false
	}
	isEnabled, err := controls[0].IsEnabled()
	if err != nil {
		w.Logger.Warn("Next page enablement error: %v", err)
		return false
	}
	return isVisible && isEnabled
}
