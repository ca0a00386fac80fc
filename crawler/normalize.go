package crawler

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

func NormalizeText(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// NormalizeTestTypes returns "" when no code survives normalization.
func NormalizeTestTypes(candidates []string) string {
	var codes []string
	for _, candidate := range candidates {
		code := NormalizeText(candidate)
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	slices.Sort(codes)
	codes = slices.Compact(codes)
	return strings.Join(codes, ", ")
}

func splitLines(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
}

// AbsoluteUrl leaves urls with a scheme untouched and resolves the rest against origin.
func AbsoluteUrl(href string, origin string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if parsed, err := url.Parse(href); err == nil && parsed.Scheme != "" {
		return href
	}
	if strings.HasPrefix(href, "//") {
		scheme := "https"
		if originUrl, err := url.Parse(origin); err == nil && originUrl.Scheme != "" {
			scheme = originUrl.Scheme
		}
		return scheme + ":" + href
	}
	return strings.TrimSuffix(origin, "/") + "/" + strings.TrimPrefix(href, "/")
}
