package lint

import "strings"

// DefaultDocsBaseURL is where rule pages are published.
const DefaultDocsBaseURL = "https://claudelint.dev/rules"

// docsBaseURL prefixes every documentation link.
var docsBaseURL = DefaultDocsBaseURL

// BuildDocURL returns the documentation link of a rule. Rule pages are
// named after the lower-cased id.
func BuildDocURL(ruleID string) string {
	return docsBaseURL + "/" + strings.ToLower(ruleID)
}

// SetDocsBaseURL points documentation links at a self-hosted copy of the
// rule pages. An empty base restores the default.
func SetDocsBaseURL(base string) {
	base = strings.TrimRight(base, "/")
	if base == "" {
		base = DefaultDocsBaseURL
	}
	docsBaseURL = base
}
