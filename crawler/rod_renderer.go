package crawler

import (
	"context"
	"errors"
	"sync"
	"time"

	"catalogcrawl/config"
	"catalogcrawl/oops"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodRenderer owns one browser and one tab for the whole walk.
type RodRenderer struct {
	launcher          *launcher.Launcher
	browser           *rod.Browser
	page              *rod.Page
	navigationTimeout time.Duration
	logger            Logger
	closeOnce         sync.Once
	closeErr          error
}

func NewRodRenderer(
	browserConfig config.BrowserConfig, navigationTimeout time.Duration, logger Logger,
) (_ *RodRenderer, retErr error) {
	l := launcher.New().
		Headless(browserConfig.Headless).
		NoSandbox(browserConfig.NoSandbox).
		Set("window-size", "1920,1080")
	if browserConfig.Bin != "" {
		l = l.Bin(browserConfig.Bin)
	}
	defer func() {
		if retErr != nil {
			l.Kill()
		}
	}()
	browserUrl, err := l.Launch()
	if err != nil {
		return nil, oops.Wrapf(err, "launch browser")
	}
	browser := rod.New().ControlURL(browserUrl)
	if err := browser.Connect(); err != nil {
		return nil, oops.Wrapf(err, "connect to browser")
	}
	logger.Info("Connected to the browser")
	page, err := browser.Page(proto.TargetCreateTarget{}) //nolint:exhaustruct
	if err != nil {
		_ = browser.Close()
		return nil, oops.Wrapf(err, "open tab")
	}

	return &RodRenderer{ //nolint:exhaustruct
		launcher:          l,
		browser:           browser,
		page:              page,
		navigationTimeout: navigationTimeout,
		logger:            logger,
	}, nil
}

func (r *RodRenderer) Navigate(url string) error {
	page := r.page.Timeout(r.navigationTimeout)
	defer page.CancelTimeout()
	if err := page.Navigate(url); err != nil {
		return &NavigationError{Url: url, Err: err}
	}
	if err := page.WaitLoad(); err != nil {
		return &NavigationError{Url: url, Err: err}
	}
	return nil
}

func (r *RodRenderer) WaitForSelector(selector string, timeout time.Duration) (Element, error) {
	page := r.page.Timeout(timeout)
	element, err := page.ElementX(selector)
	if err != nil {
		page.CancelTimeout()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &WaitTimeoutError{Selector: selector, Timeout: timeout}
		}
		return nil, oops.Wrapf(err, "wait for %s", selector)
	}
	return &rodElement{element: element.CancelTimeout()}, nil
}

func (r *RodRenderer) FindAll(selector string) ([]Element, error) {
	elements, err := r.page.ElementsX(selector)
	if err != nil {
		return nil, oops.Wrapf(err, "find %s", selector)
	}
	return wrapRodElements(elements), nil
}

func (r *RodRenderer) HTML() (string, error) {
	content, err := r.page.HTML()
	if err != nil {
		return "", oops.Wrap(err)
	}
	return content, nil
}

// Close is safe to call more than once, only the first call releases anything.
func (r *RodRenderer) Close() error {
	r.closeOnce.Do(func() {
		if err := r.page.Close(); err != nil {
			r.logger.Warn("Tab close error: %v", err)
		}
		if err := r.browser.Close(); err != nil {
			r.closeErr = oops.Wrapf(err, "close browser")
		}
		r.launcher.Kill()
		r.logger.Info("Browser released")
	})
	return r.closeErr
}

type rodElement struct {
	element *rod.Element
}

func wrapRodElements(elements rod.Elements) []Element {
	result := make([]Element, 0, len(elements))
	for _, element := range elements {
		result = append(result, &rodElement{element: element})
	}
	return result
}

func (e *rodElement) Text() (string, error) {
	text, err := e.element.Text()
	if err != nil {
		return "", oops.Wrap(err)
	}
	return text, nil
}

func (e *rodElement) Attribute(name string) (*string, error) {
	maybeValue, err := e.element.Attribute(name)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return maybeValue, nil
}

func (e *rodElement) IsVisible() (bool, error) {
	visible, err := e.element.Visible()
	if err != nil {
		return false, oops.Wrap(err)
	}
	return visible, nil
}

func (e *rodElement) IsEnabled() (bool, error) {
	disabled, err := e.element.Property("disabled")
	if err != nil {
		return false, oops.Wrap(err)
	}
	if disabled.Bool() {
		return false, nil
	}
	maybeAriaDisabled, err := e.element.Attribute("aria-disabled")
	if err != nil {
		return false, oops.Wrap(err)
	}
	return maybeAriaDisabled == nil || *maybeAriaDisabled != "true", nil
}

func (e *rodElement) FindAll(selector string) ([]Element, error) {
	elements, err := e.element.ElementsX(selector)
	if err != nil {
		return nil, oops.Wrapf(err, "find %s", selector)
	}
	return wrapRodElements(elements), nil
}

func (e *rodElement) Click() error {
	if err := e.element.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return oops.Wrap(err)
	}
	return nil
}
