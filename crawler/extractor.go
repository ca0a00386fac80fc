package crawler

import (
	"errors"

	"catalogcrawl/catalog"
	"catalogcrawl/config"
	"catalogcrawl/oops"
)

var ErrMissingName = errors.New("row has no name")

// ExtractRecord only fails when the name can't be read. Every other field degrades to a fallback with
// a warning.
func ExtractRecord(
	row Element, pageNumber int, selectors config.Selectors, origin string, logger Logger,
) (catalog.Record, error) {
	maybeId := extractId(row, selectors.IdAttributes, logger)

	nameElements, err := row.FindAll(selectors.Name)
	if err != nil {
		return catalog.Record{}, oops.Wrapf(ErrMissingName, "lookup: %v", err)
	}
	if len(nameElements) == 0 {
		return catalog.Record{}, oops.Wrap(ErrMissingName)
	}
	nameElement := nameElements[0]
	rawName, err := nameElement.Text()
	if err != nil {
		return catalog.Record{}, oops.Wrapf(ErrMissingName, "text: %v", err)
	}
	name := NormalizeText(rawName)
	if name == "" {
		return catalog.Record{}, oops.Wrapf(ErrMissingName, "empty text")
	}

	var recordUrl string
	maybeHref, err := nameElement.Attribute("href")
	if err != nil {
		logger.Warn("%q: couldn't read href: %v", name, err)
	} else if maybeHref == nil {
		logger.Warn("%q: no href", name)
	} else {
		recordUrl = AbsoluteUrl(*maybeHref, origin)
	}

	return catalog.Record{
		MaybeId:            maybeId,
		Page:               pageNumber,
		AssessmentName:     name,
		Url:                recordUrl,
		RemoteTesting:      hasMarker(row, selectors.RemoteMarker, name, "remote testing", logger),
		AdaptiveIrtSupport: hasMarker(row, selectors.AdaptiveMarker, name, "adaptive/irt", logger),
		TestType:           extractTestType(row, selectors, name, logger),
	}, nil
}

func extractId(row Element, attributes []string, logger Logger) *string {
	for _, attribute := range attributes {
		maybeValue, err := row.Attribute(attribute)
		if err != nil {
			logger.Warn("Couldn't read %s: %v", attribute, err)
			continue
		}
		if maybeValue == nil {
			continue
		}
		id := NormalizeText(*maybeValue)
		if id == "" {
			return nil
		}
		return &id
	}
	return nil
}

func hasMarker(row Element, selector string, name string, field string, logger Logger) bool {
	markers, err := row.FindAll(selector)
	if err != nil {
		logger.Warn("%q: couldn't look up %s marker: %v", name, field, err)
		return false
	}
	return len(markers) > 0
}

func extractTestType(row Element, selectors config.Selectors, name string, logger Logger) string {
	var candidates []string
	badges, err := row.FindAll(selectors.TestTypeBadges)
	if err != nil {
		logger.Warn("%q: couldn't look up test type badges: %v", name, err)
	}
	for _, badge := range badges {
		text, err := badge.Text()
		if err != nil {
			logger.Warn("%q: couldn't read test type badge: %v", name, err)
			continue
		}
		candidates = append(candidates, text)
	}

	if len(candidates) == 0 {
		cells, err := row.FindAll(selectors.TestTypeCell)
		if err != nil {
			logger.Warn("%q: couldn't look up test type cell: %v", name, err)
		} else if len(cells) > 0 {
			text, err := cells[0].Text()
			if err != nil {
				logger.Warn("%q: couldn't read test type cell: %v", name, err)
			} else {
				candidates = splitLines(text)
			}
		}
	}

	if testType := NormalizeTestTypes(candidates); testType != "" {
		return testType
	}
	return catalog.TestTypeNotAvailable
}
