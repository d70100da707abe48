package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
)

// checkContext builds the ctx value passed to a rule's check function.
//
// Fields: file_path, category, content, data, body, body_line, options.
// Methods: report(message, line=0, fix=""), line_of(needle), key_line(key).
func checkContext(rc *lint.RuleContext) (starlark.Value, error) {
	data, err := toStarlark(rc.Data)
	if err != nil {
		return nil, fmt.Errorf("convert data: %w", err)
	}
	options, err := toStarlark(rc.Options)
	if err != nil {
		return nil, fmt.Errorf("convert options: %w", err)
	}
	if options == starlark.None {
		options = starlark.NewDict(0)
	}

	report := starlark.NewBuiltin("report", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var (
			message string
			line    int
			fix     string
		)
		if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "message", &message, "line?", &line, "fix?", &fix); err != nil {
			return nil, err
		}
		rc.Report(core.Issue{Message: message, Line: line, Fix: fix})
		return starlark.None, nil
	})

	lineOf := starlark.NewBuiltin("line_of", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var needle string
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &needle); err != nil {
			return nil, err
		}
		return starlark.MakeInt(rc.LineOf(needle)), nil
	})

	keyLine := starlark.NewBuiltin("key_line", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var key string
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &key); err != nil {
			return nil, err
		}
		return starlark.MakeInt(rc.KeyLine(key)), nil
	})

	return starlarkstruct.FromStringDict(starlark.String("ctx"), starlark.StringDict{
		"file_path": starlark.String(rc.FilePath),
		"category":  starlark.String(string(rc.Category)),
		"content":   starlark.String(rc.Content),
		"data":      data,
		"body":      starlark.String(rc.Body),
		"body_line": starlark.MakeInt(rc.BodyLine),
		"options":   options,
		"report":    report,
		"line_of":   lineOf,
		"key_line":  keyLine,
	}), nil
}
