package crawler

import "time"

type SnapshotSink interface {
	PutSnapshot(url string, html string) error
}

// CachingRenderer saves every page whose table rendered, so a later run can replay it without a browser.
type CachingRenderer struct {
	Renderer
	Sink       SnapshotSink
	Logger     Logger
	currentUrl string
}

func NewCachingRenderer(renderer Renderer, sink SnapshotSink, logger Logger) *CachingRenderer {
	return &CachingRenderer{
		Renderer:   renderer,
		Sink:       sink,
		Logger:     logger,
		currentUrl: "",
	}
}

func (r *CachingRenderer) Navigate(url string) error {
	r.currentUrl = ""
	if err := r.Renderer.Navigate(url); err != nil {
		return err
	}
	r.currentUrl = url
	return nil
}

func (r *CachingRenderer) WaitForSelector(selector string, timeout time.Duration) (Element, error) {
	element, err := r.Renderer.WaitForSelector(selector, timeout)
	if err != nil || r.currentUrl == "" {
		return element, err
	}

	content, htmlErr := r.Renderer.HTML()
	if htmlErr != nil {
		r.Logger.Warn("Couldn't capture %s: %v", r.currentUrl, htmlErr)
		return element, nil
	}
	if putErr := r.Sink.PutSnapshot(r.currentUrl, content); putErr != nil {
		r.Logger.Warn("Couldn't save snapshot of %s: %v", r.currentUrl, putErr)
		return element, nil
	}
	r.currentUrl = ""
	return element, nil
}
