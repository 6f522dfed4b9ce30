package gmail

import "strings"

// BaseQuery is the relevance prefilter applied to every scan. It biases
// the id listing towards bulk mail but is not a correctness filter;
// missing a newsletter here only means a false negative.
const BaseQuery = "category:promotions OR category:updates OR unsubscribe"

// Filters enumerates every recognized Gmail search filter. Zero values
// mean "not set".
type Filters struct {
	// OlderThan is a relative age like "7d", "30d" or "365d". Ignored
	// when AfterDate or BeforeDate is set.
	OlderThan string `toml:"older_than"`
	// AfterDate and BeforeDate bound a custom range, "YYYY/MM/DD".
	AfterDate  string `toml:"after_date"`
	BeforeDate string `toml:"before_date"`
	// LargerThan is a minimum size like "1M" or "10M".
	LargerThan string `toml:"larger_than"`
	// Category is a Gmail tab: promotions, social, updates, forums, primary.
	Category string `toml:"category"`
	// Sender restricts to one sender address or domain.
	Sender string `toml:"sender"`
	// Label restricts to a Gmail label.
	Label string `toml:"label"`
}

// Query renders the filters as a Gmail search query, empty when no filter
// is set. A custom date range takes precedence over OlderThan.
func (f Filters) Query() string {
	var parts []string

	if f.AfterDate != "" {
		parts = append(parts, "after:"+f.AfterDate)
	}
	if f.BeforeDate != "" {
		parts = append(parts, "before:"+f.BeforeDate)
	}
	if f.AfterDate == "" && f.BeforeDate == "" && f.OlderThan != "" {
		parts = append(parts, "older_than:"+f.OlderThan)
	}
	if f.LargerThan != "" {
		parts = append(parts, "larger:"+f.LargerThan)
	}
	if f.Category != "" {
		parts = append(parts, "category:"+f.Category)
	}
	if f.Sender != "" {
		parts = append(parts, "from:"+f.Sender)
	}
	if f.Label != "" {
		parts = append(parts, "label:"+f.Label)
	}

	return strings.Join(parts, " ")
}

// ScanQuery combines the relevance prefilter with the configured filters.
func ScanQuery(f Filters) string {
	q := f.Query()
	if q == "" {
		return BaseQuery
	}
	return "(" + BaseQuery + ") " + q
}
