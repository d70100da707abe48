// Package core defines the shared language of claudelint.
//
// This package contains:
//   - Severity and Category, the two closed enums every rule is keyed by
//   - Issue and ValidationResult, the values passed from validators to reporters
//   - RuleInfo, the rule metadata DTO used by tooling
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
