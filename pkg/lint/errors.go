package lint

import (
	"errors"
	"fmt"
)

// DuplicateRuleError is returned when a rule id is registered twice.
type DuplicateRuleError struct {
	ID             string
	Source         string
	ExistingSource string
}

func (e *DuplicateRuleError) Error() string {
	if e.Source != "" && e.ExistingSource != "" {
		return fmt.Sprintf("duplicate rule id %q: %s conflicts with %s", e.ID, e.Source, e.ExistingSource)
	}
	return fmt.Sprintf("duplicate rule id %q", e.ID)
}

// ConfigurationError reports configuration that cannot be used at all.
// It aborts the run before any file is validated.
type ConfigurationError struct {
	Source  string // file or component the problem comes from
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Source != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Source, msg)
	}
	return "configuration error: " + msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must abort the run with the fatal exit code
// rather than being reported as lint findings.
func IsFatal(err error) bool {
	var dup *DuplicateRuleError
	var cfg *ConfigurationError
	return errors.As(err, &dup) || errors.As(err, &cfg)
}
