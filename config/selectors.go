package config

// Selectors are XPath expressions. Row-relative ones start with "./".
type Selectors struct {
	Table          string   `yaml:"table"`
	Row            string   `yaml:"row"`
	IdAttributes   []string `yaml:"id_attributes"`
	Name           string   `yaml:"name"`
	RemoteMarker   string   `yaml:"remote_marker"`
	AdaptiveMarker string   `yaml:"adaptive_marker"`
	TestTypeCell   string   `yaml:"test_type_cell"`
	TestTypeBadges string   `yaml:"test_type_badges"`
	NextPage       string   `yaml:"next_page"`
	CookieAccept   string   `yaml:"cookie_accept"`
}

const yesMarker = `//*[contains(concat(' ', normalize-space(@class), ' '), ' -yes ')]`

func DefaultSelectors() Selectors {
	return Selectors{
		Table:          `//div[contains(@class, 'custom__table-wrapper')]//table`,
		Row:            `.//tr[@data-course-id or @data-entity-id]`,
		IdAttributes:   []string{"data-course-id", "data-entity-id"},
		Name:           `./td[1]//a`,
		RemoteMarker:   `./td[2]` + yesMarker,
		AdaptiveMarker: `./td[3]` + yesMarker,
		TestTypeCell:   `./td[4]`,
		TestTypeBadges: `./td[4]//span[contains(@class, 'product-catalogue__key')]`,
		NextPage:       `//li[contains(@class, 'pagination__item') and contains(@class, '-next')]//a`,
		CookieAccept:   `//button[contains(@class, 'accept-cookies')]`,
	}
}
