package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/report"
)

// ColorModes lists the accepted --color values.
var ColorModes = []string{"auto", "always", "never"}

// Validate checks the scalar settings. Rule settings are checked later by
// lint.DecodeConfig and the catalog.
func (c *Config) Validate() error {
	var errs []error

	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, err)
	}
	if !validColor(c.Output.Color) {
		errs = append(errs, fmt.Errorf("invalid color mode %q (expected auto, always or never)", c.Output.Color))
	}
	if c.Output.DocsURL != "" && !validDocsURL(c.Output.DocsURL) {
		errs = append(errs, fmt.Errorf("invalid docs URL %q (expected an http or https URL)", c.Output.DocsURL))
	}
	if c.MaxWarnings < -1 {
		errs = append(errs, fmt.Errorf("maxWarnings must be -1 or greater, got %d", c.MaxWarnings))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	if _, err := lint.ParseOptionErrorPolicy(c.OnInvalidOptions); err != nil {
		errs = append(errs, err)
	}
	if _, err := NewLogger(discard{}, c.Log); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return &lint.ConfigurationError{Source: c.File, Message: "invalid settings", Err: errors.Join(errs...)}
}

func validDocsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func validColor(s string) bool {
	s = strings.ToLower(s)
	for _, m := range ColorModes {
		if s == m {
			return true
		}
	}
	return s == ""
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
