package crawler

import (
	"context"
	"time"

	"catalogcrawl/catalog"
	"catalogcrawl/config"
	"catalogcrawl/oops"
)

type PageStatus int

const (
	PageStatusOk PageStatus = iota
	PageStatusExhausted
	PageStatusCancelled
)

func (s PageStatus) String() string {
	switch s {
	case PageStatusOk:
		return "ok"
	case PageStatusExhausted:
		return "exhausted"
	case PageStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type PageResult struct {
	Records     []catalog.Record
	Status      PageStatus
	Attempts    int
	SkippedRows int
	Err         error
}

type PageScraper struct {
	Renderer             Renderer
	Selectors            config.Selectors
	Origin               string
	Retry                RetryPolicy
	WaitTimeout          time.Duration
	DismissInterstitials bool
	InterstitialDelay    time.Duration
	Clock                Clock
	Logger               Logger
}

func NewPageScraper(renderer Renderer, cfg config.Config, clock Clock, logger Logger) *PageScraper {
	return &PageScraper{
		Renderer:  renderer,
		Selectors: cfg.Selectors,
		Origin:    cfg.Catalog.Origin,
		Retry: RetryPolicy{
			MaxAttempts: cfg.Crawl.Attempts,
			Backoff:     cfg.Crawl.RetryBackoff,
		},
		WaitTimeout:          cfg.Crawl.WaitTimeout,
		DismissInterstitials: cfg.Crawl.DismissInterstitials,
		InterstitialDelay:    cfg.Crawl.InterstitialDelay,
		Clock:                clock,
		Logger:               logger,
	}
}

// ScrapePage never returns a fault: exhausted retries and cancellation are reported through Status.
func (s *PageScraper) ScrapePage(ctx context.Context, url string, pageNumber int) PageResult {
	maxAttempts := s.Retry.attempts()
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := s.Retry.GetRetryDelay(attempt - 1)
			s.Logger.Info("Page %d: retrying in %v (attempt %d/%d)", pageNumber, delay, attempt, maxAttempts)
			if err := s.Clock.Sleep(ctx, delay); err != nil {
				return cancelledPage(attempt-1, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return cancelledPage(attempt-1, err)
		}

		records, skippedRows, err := s.scrapeAttempt(ctx, url, pageNumber)
		if err == nil {
			s.Logger.Info("Page %d: %d records (%d rows skipped)", pageNumber, len(records), skippedRows)
			return PageResult{
				Records:     records,
				Status:      PageStatusOk,
				Attempts:    attempt,
				SkippedRows: skippedRows,
				Err:         nil,
			}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cancelledPage(attempt, ctxErr)
		}
		lastErr = err
		s.Logger.Warn("Page %d attempt %d/%d failed: %v", pageNumber, attempt, maxAttempts, err)
	}

	s.Logger.Error("Page %d: giving up after %d attempts: %v", pageNumber, maxAttempts, lastErr)
	return PageResult{
		Records:     nil,
		Status:      PageStatusExhausted,
		Attempts:    maxAttempts,
		SkippedRows: 0,
		Err:         lastErr,
	}
}

func cancelledPage(attempts int, err error) PageResult {
	return PageResult{
		Records:     nil,
		Status:      PageStatusCancelled,
		Attempts:    attempts,
		SkippedRows: 0,
		Err:         err,
	}
}

func (s *PageScraper) scrapeAttempt(
	ctx context.Context, url string, pageNumber int,
) (records []catalog.Record, skippedRows int, err error) {
	if err := s.Renderer.Navigate(url); err != nil {
		return nil, 0, err
	}
	if s.DismissInterstitials {
		if err := s.dismissCookieBanner(ctx); err != nil {
			return nil, 0, err
		}
	}
	if _, err := s.Renderer.WaitForSelector(s.Selectors.Table, s.WaitTimeout); err != nil {
		return nil, 0, err
	}
	tables, err := s.Renderer.FindAll(s.Selectors.Table)
	if err != nil {
		return nil, 0, oops.Wrapf(err, "enumerate tables")
	}

	records = []catalog.Record{}
	for _, table := range tables {
		rows, err := table.FindAll(s.Selectors.Row)
		if err != nil {
			return nil, 0, oops.Wrapf(err, "enumerate rows")
		}
		for rowIndex, row := range rows {
			record, err := ExtractRecord(row, pageNumber, s.Selectors, s.Origin, s.Logger)
			if err != nil {
				s.Logger.Warn("Page %d row %d skipped: %v", pageNumber, rowIndex+1, err)
				skippedRows++
				continue
			}
			records = append(records, record)
		}
	}
	return records, skippedRows, nil
}

// Only cancellation is returned, a banner that can't be dismissed is not a page fault.
func (s *PageScraper) dismissCookieBanner(ctx context.Context) error {
	buttons, err := s.Renderer.FindAll(s.Selectors.CookieAccept)
	if err != nil {
		s.Logger.Warn("Cookie banner lookup error: %v", err)
		return nil
	}
	if len(buttons) == 0 {
		s.Logger.Info("No cookie banner")
		return nil
	}
	button := buttons[0]
	isVisible, err := button.IsVisible()
	if err != nil || !isVisible {
		s.Logger.Info("Cookie banner not visible")
		return nil
	}
	isEnabled, err := button.IsEnabled()
	if err != nil || !isEnabled {
		s.Logger.Info("Cookie banner not enabled")
		return nil
	}
	if err := button.Click(); err != nil {
		s.Logger.Warn("Cookie banner click error: %v", err)
		return nil
	}
	s.Logger.Info("Dismissed cookie banner")
	return s.Clock.Sleep(ctx, s.InterstitialDelay)
}
