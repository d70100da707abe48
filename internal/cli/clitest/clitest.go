// Package clitest provides renderer helpers for CLI command tests.
package clitest

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leapstack-labs/claudelint/internal/cli/output"
	"github.com/stretchr/testify/assert"
)

// Renderer is an output.Renderer whose streams are captured in buffers.
type Renderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewRenderer returns a capturing renderer in mode. isTTY simulates a
// terminal, which is what ModeAuto resolves against.
func NewRenderer(mode output.OutputMode, isTTY bool) *Renderer {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &Renderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Auto returns a piped auto-mode renderer, which resolves to markdown.
func Auto() *Renderer { return NewRenderer(output.ModeAuto, false) }

// Text returns a text renderer on a simulated terminal.
func Text() *Renderer { return NewRenderer(output.ModeText, true) }

// Markdown returns a markdown renderer.
func Markdown() *Renderer { return NewRenderer(output.ModeMarkdown, false) }

// JSON returns a JSON renderer.
func JSON() *Renderer { return NewRenderer(output.ModeJSON, false) }

// Output returns everything written to stdout.
func (r *Renderer) Output() string { return r.Out.String() }

// ErrorOutput returns everything written to stderr.
func (r *Renderer) ErrorOutput() string { return r.ErrOut.String() }

// Reset clears both buffers.
func (r *Renderer) Reset() {
	r.Out.Reset()
	r.ErrOut.Reset()
}

// AssertNoANSI fails when s carries terminal escape sequences.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	assert.NotRegexp(t, `\x1b\[[0-9;]*[a-zA-Z]`, s, "unexpected ANSI escape codes")
}

// AssertValidMarkdown checks that code fences are balanced and that no
// heading is empty.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()
	assert.Zero(t, strings.Count(md, "```")%2, "unbalanced code fences")
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			assert.NotEmpty(t, strings.TrimLeft(trimmed, "# "), "empty heading at line %d", i+1)
		}
	}
}

// AssertMode checks that what r captured fits its effective mode: JSON
// output must parse, and neither JSON nor markdown may carry ANSI codes.
func AssertMode(t *testing.T, r *Renderer) {
	t.Helper()
	switch r.EffectiveMode() {
	case output.ModeJSON:
		assert.True(t, json.Valid(r.Out.Bytes()), "output is not valid JSON: %s", r.Output())
		AssertNoANSI(t, r.Output()+r.ErrorOutput())
	case output.ModeMarkdown:
		AssertNoANSI(t, r.Output()+r.ErrorOutput())
		AssertValidMarkdown(t, r.Output())
	}
}
