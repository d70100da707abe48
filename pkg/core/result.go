package core

// Issue is one finding surfaced to the user.
type Issue struct {
	Message     string   `json:"message"`
	File        string   `json:"file,omitempty"`
	Line        int      `json:"line,omitempty"` // 1-based, 0 when unknown
	RuleID      string   `json:"ruleId,omitempty"`
	Severity    Severity `json:"severity"`
	Fix         string   `json:"fix,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// ValidationResult holds the issues of one validator run.
// It is valid iff Errors is empty.
type ValidationResult struct {
	Validator string  `json:"name"`
	Errors    []Issue `json:"errors"`
	Warnings  []Issue `json:"warnings"`
}

// NewValidationResult creates an empty result for the named validator.
func NewValidationResult(validator string) ValidationResult {
	return ValidationResult{
		Validator: validator,
		Errors:    []Issue{},
		Warnings:  []Issue{},
	}
}

// Valid reports whether the result has no errors.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Add buckets an issue by its severity. Issues with SeverityOff are dropped.
func (r *ValidationResult) Add(issue Issue) {
	switch issue.Severity {
	case SeverityError:
		r.Errors = append(r.Errors, issue)
	case SeverityWarn:
		r.Warnings = append(r.Warnings, issue)
	}
}

// Merge appends the issues of other, keeping their order.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
