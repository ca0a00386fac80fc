package crawler

import (
	"context"
	"fmt"
	"time"
)

// Renderer drives one page for a whole walk. Selectors are XPath; page-level lookups are absolute.
type Renderer interface {
	Navigate(url string) error
	WaitForSelector(selector string, timeout time.Duration) (Element, error)
	FindAll(selector string) ([]Element, error)
	HTML() (string, error)
	Close() error
}

// Element lookups that find nothing are not errors: FindAll returns an empty slice and Attribute
// returns nil.
type Element interface {
	Text() (string, error)
	Attribute(name string) (*string, error)
	IsVisible() (bool, error)
	IsEnabled() (bool, error)
	FindAll(selector string) ([]Element, error)
	Click() error
}

type WaitTimeoutError struct {
	Selector string
	Timeout  time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v waiting for %s", e.Timeout, e.Selector)
}

type NavigationError struct {
	Url string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.Url, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type RealClock struct{}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
