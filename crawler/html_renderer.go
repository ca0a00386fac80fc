package crawler

import (
	"errors"
	"strings"
	"time"

	"catalogcrawl/oops"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

var ErrNoSnapshot = errors.New("no snapshot for url")

type SnapshotSource interface {
	Snapshot(url string) (*string, error)
}

type MapSource map[string]string

func (s MapSource) Snapshot(url string) (*string, error) {
	if content, ok := s[url]; ok {
		return &content, nil
	}
	return nil, nil
}

// HtmlRenderer serves static documents, so a wait either finds the selector right away or times out.
type HtmlRenderer struct {
	Source     SnapshotSource
	document   *html.Node
	currentUrl string
	clicks     int
}

func NewHtmlRenderer(source SnapshotSource) *HtmlRenderer {
	return &HtmlRenderer{
		Source:     source,
		document:   nil,
		currentUrl: "",
		clicks:     0,
	}
}

func (r *HtmlRenderer) Navigate(url string) error {
	r.document = nil
	r.currentUrl = url
	maybeContent, err := r.Source.Snapshot(url)
	if err != nil {
		return &NavigationError{Url: url, Err: err}
	}
	if maybeContent == nil {
		return &NavigationError{Url: url, Err: ErrNoSnapshot}
	}
	document, err := htmlquery.Parse(strings.NewReader(*maybeContent))
	if err != nil {
		return &NavigationError{Url: url, Err: err}
	}
	r.document = document
	return nil
}

func (r *HtmlRenderer) CurrentUrl() string {
	return r.currentUrl
}

func (r *HtmlRenderer) Clicks() int {
	return r.clicks
}

func (r *HtmlRenderer) WaitForSelector(selector string, timeout time.Duration) (Element, error) {
	elements, err := r.FindAll(selector)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, &WaitTimeoutError{Selector: selector, Timeout: timeout}
	}
	return elements[0], nil
}

func (r *HtmlRenderer) FindAll(selector string) ([]Element, error) {
	if r.document == nil {
		return nil, oops.New("no document loaded")
	}
	return r.queryAll(r.document, selector)
}

func (r *HtmlRenderer) HTML() (string, error) {
	if r.document == nil {
		return "", oops.New("no document loaded")
	}
	return htmlquery.OutputHTML(r.document, true), nil
}

func (r *HtmlRenderer) Close() error {
	r.document = nil
	return nil
}

func (r *HtmlRenderer) queryAll(node *html.Node, selector string) ([]Element, error) {
	expr, err := xpath.Compile(selector)
	if err != nil {
		return nil, oops.Wrapf(err, "selector %q", selector)
	}
	nodes := htmlquery.QuerySelectorAll(node, expr)
	elements := make([]Element, 0, len(nodes))
	for _, node := range nodes {
		elements = append(elements, &htmlElement{
			renderer: r,
			node:     node,
		})
	}
	return elements, nil
}

type htmlElement struct {
	renderer *HtmlRenderer
	node     *html.Node
}

// Text approximates the browser's innerText: br and block boundaries become line breaks.
func (e *htmlElement) Text() (string, error) {
	var sb strings.Builder
	writeInnerText(&sb, e.node)
	return sb.String(), nil
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "dd": true, "div": true,
	"dl": true, "dt": true, "footer": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true, "tbody": true, "td": true,
	"tfoot": true, "th": true, "thead": true, "tr": true, "ul": true,
}

func writeInnerText(sb *strings.Builder, node *html.Node) {
	switch node.Type {
	case html.TextNode:
		sb.WriteString(node.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch node.Data {
		case "br":
			sb.WriteString("\n")
			return
		case "script", "style", "template":
			return
		}
	}

	isBlock := node.Type == html.ElementNode && blockElements[node.Data]
	if isBlock {
		sb.WriteString("\n")
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeInnerText(sb, child)
	}
	if isBlock {
		sb.WriteString("\n")
	}
}

func (e *htmlElement) Attribute(name string) (*string, error) {
	for _, attr := range e.node.Attr {
		if attr.Key == name {
			value := attr.Val
			return &value, nil
		}
	}
	return nil, nil
}

func (e *htmlElement) IsVisible() (bool, error) {
	for node := e.node; node != nil; node = node.Parent {
		if node.Type != html.ElementNode {
			continue
		}
		if htmlquery.ExistsAttr(node, "hidden") {
			return false, nil
		}
		if strings.EqualFold(htmlquery.SelectAttr(node, "aria-hidden"), "true") {
			return false, nil
		}
		style := strings.ReplaceAll(strings.ToLower(htmlquery.SelectAttr(node, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false, nil
		}
	}
	return true, nil
}

func (e *htmlElement) IsEnabled() (bool, error) {
	for node := e.node; node != nil; node = node.Parent {
		if node.Type != html.ElementNode {
			continue
		}
		if htmlquery.ExistsAttr(node, "disabled") {
			return false, nil
		}
		if strings.EqualFold(htmlquery.SelectAttr(node, "aria-disabled"), "true") {
			return false, nil
		}
		for _, class := range strings.Fields(htmlquery.SelectAttr(node, "class")) {
			if class == "disabled" || class == "-disabled" {
				return false, nil
			}
		}
	}
	return true, nil
}

func (e *htmlElement) FindAll(selector string) ([]Element, error) {
	return e.renderer.queryAll(e.node, selector)
}

func (e *htmlElement) Click() error {
	e.renderer.clicks++
	return nil
}
