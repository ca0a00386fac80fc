package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalogcrawl/config"
)

const testOrigin = "https://www.shl.com"
const testBaseUrl = "https://www.shl.com/solutions/products/product-catalog/"

type fixtureRow struct {
	idAttr   string
	id       string
	name     string
	href     string
	remote   bool
	adaptive bool
	badges   []string
	keysText string
}

func namedRow(id string, name string) fixtureRow {
	return fixtureRow{
		idAttr:   "data-course-id",
		id:       id,
		name:     name,
		href:     "/solutions/products/product-catalog/view/" + strings.ToLower(id) + "/",
		remote:   true,
		adaptive: false,
		badges:   []string{"K"},
		keysText: "",
	}
}

func numberedRows(prefix string, from int, count int) []fixtureRow {
	var rows []fixtureRow
	for i := from; i < from+count; i++ {
		rows = append(rows, namedRow(fmt.Sprintf("%s%d", prefix, i), fmt.Sprintf("%s Assessment %02d", prefix, i)))
	}
	return rows
}

type nextControl int

const (
	nextEnabled nextControl = iota
	nextDisabled
	nextHidden
	nextAbsent
)

func renderRow(row fixtureRow) string {
	var sb strings.Builder
	if row.idAttr == "" {
		sb.WriteString("<tr>")
	} else {
		fmt.Fprintf(&sb, `<tr %s="%s">`, row.idAttr, row.id)
	}
	if row.name == "" {
		sb.WriteString(`<td class="custom__table-heading__title"></td>`)
	} else if row.href == "" {
		fmt.Fprintf(&sb, `<td class="custom__table-heading__title"><a>%s</a></td>`, row.name)
	} else {
		fmt.Fprintf(&sb, `<td class="custom__table-heading__title"><a href="%s">%s</a></td>`, row.href, row.name)
	}
	for _, flag := range []bool{row.remote, row.adaptive} {
		if flag {
			sb.WriteString(`<td class="custom__table-heading__general"><span class="catalogue__circle -yes"></span></td>`)
		} else {
			sb.WriteString(`<td class="custom__table-heading__general"></td>`)
		}
	}
	sb.WriteString(`<td class="custom__table-heading__general product-catalogue__keys">`)
	for _, badge := range row.badges {
		fmt.Fprintf(&sb, `<span class="product-catalogue__key">%s</span>`, badge)
	}
	sb.WriteString(row.keysText)
	sb.WriteString("</td></tr>\n")
	return sb.String()
}

func catalogPage(rows []fixtureRow, next nextControl) string {
	var sb strings.Builder
	sb.WriteString("<html><body>\n")
	sb.WriteString(`<div class="custom__table-wrapper"><table>`)
	sb.WriteString("<tr><th>Pre-packaged Job Solutions</th><th>Remote Testing</th>")
	sb.WriteString("<th>Adaptive/IRT</th><th>Test Type</th></tr>\n")
	for _, row := range rows {
		sb.WriteString(renderRow(row))
	}
	sb.WriteString("</table></div>\n")
	sb.WriteString(`<ul class="pagination">`)
	switch next {
	case nextEnabled:
		sb.WriteString(`<li class="pagination__item -arrow -next"><a class="pagination__arrow" href="#">Next</a></li>`)
	case nextDisabled:
		sb.WriteString(`<li class="pagination__item -arrow -next -disabled"><a class="pagination__arrow">Next</a></li>`)
	case nextHidden:
		sb.WriteString(`<li class="pagination__item -arrow -next" style="display: none"><a href="#">Next</a></li>`)
	case nextAbsent:
	}
	sb.WriteString("</ul>\n</body></html>")
	return sb.String()
}

func pageUrl(pageNumber int) string {
	url, err := PageUrl(testBaseUrl, pageNumber, 12, "start")
	if err != nil {
		panic(err)
	}
	return url
}

type fakeClock struct {
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	return ctx.Err()
}

// flakyRenderer times out waiting for the table on a url as many times as configured.
type flakyRenderer struct {
	*HtmlRenderer
	timeoutsLeft map[string]int
	navigations  []string
}

func newFlakyRenderer(source MapSource, timeouts map[string]int) *flakyRenderer {
	return &flakyRenderer{
		HtmlRenderer: NewHtmlRenderer(source),
		timeoutsLeft: timeouts,
		navigations:  nil,
	}
}

func (r *flakyRenderer) Navigate(url string) error {
	r.navigations = append(r.navigations, url)
	return r.HtmlRenderer.Navigate(url)
}

func (r *flakyRenderer) WaitForSelector(selector string, timeout time.Duration) (Element, error) {
	url := r.CurrentUrl()
	if r.timeoutsLeft[url] > 0 {
		r.timeoutsLeft[url]--
		return nil, &WaitTimeoutError{Selector: selector, Timeout: timeout}
	}
	return r.HtmlRenderer.WaitForSelector(selector, timeout)
}

func newTestScraper(renderer Renderer, clock Clock, logger Logger) *PageScraper {
	return &PageScraper{
		Renderer:  renderer,
		Selectors: config.DefaultSelectors(),
		Origin:    testOrigin,
		Retry: RetryPolicy{
			MaxAttempts: 3,
			Backoff:     2 * time.Second,
		},
		WaitTimeout:          20 * time.Second,
		DismissInterstitials: true,
		InterstitialDelay:    2 * time.Second,
		Clock:                clock,
		Logger:               logger,
	}
}

func newTestWalker(scraper *PageScraper, clock Clock, logger Logger) *Walker {
	return &Walker{
		Scraper:          scraper,
		BaseUrl:          testBaseUrl,
		PageSize:         12,
		StartParam:       "start",
		MaxPages:         0,
		SettleDelay:      2 * time.Second,
		NextPageSelector: config.DefaultSelectors().NextPage,
		Clock:            clock,
		Logger:           logger,
	}
}

func countContaining(messages []string, substr string) int {
	count := 0
	for _, message := range messages {
		if strings.Contains(message, substr) {
			count++
		}
	}
	return count
}
