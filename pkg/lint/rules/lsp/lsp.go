// Package lsp provides rules for .lsp.json language server definitions.
package lsp

import (
	"context"
	"strings"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/internal/ruleutil"
)

// Rules returns the package's rules in registration order.
func Rules() []lint.RuleDef {
	return []lint.RuleDef{ExtensionFormat}
}

// ExtensionFormat requires extension keys like ".go".
var ExtensionFormat = lint.RuleDef{
	ID:          "lsp-extension-format",
	Name:        "lsp.extension_format",
	Category:    core.CategoryLSP,
	Description: "extensionToLanguage keys must be file extensions starting with a dot.",
	Severity:    core.SeverityError,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		all := ruleutil.Map(rc.Data)
		for _, server := range ruleutil.SortedKeys(all) {
			exts := ruleutil.Map(ruleutil.Map(all[server])["extensionToLanguage"])
			for _, ext := range ruleutil.SortedKeys(exts) {
				if !strings.HasPrefix(ext, ".") || len(ext) < 2 || strings.ContainsAny(ext, "*/ ") {
					rc.Reportf(rc.KeyLine(ext), "server %q: %q is not a file extension like \".go\"", server, ext)
				}
			}
		}
		return nil
	},
	BadExample:  `"extensionToLanguage": {"*.go": "go"}`,
	GoodExample: `"extensionToLanguage": {".go": "go"}`,
}
