// Package claudemd provides rules for CLAUDE.md memory files.
package claudemd

import "github.com/leapstack-labs/claudelint/pkg/lint"

// Rules returns the package's rules in registration order.
func Rules() []lint.RuleDef {
	return []lint.RuleDef{
		FileSize,
		LegacyMaxLines,
		ImportMissing,
		Empty,
	}
}
