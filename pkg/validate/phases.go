package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/claudelint/internal/parser"
	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
)

// document is a successfully parsed file.
type document struct {
	content  string
	data     any // JSON value, or the frontmatter map for markdown
	body     string
	bodyLine int
}

func (v *Validator) read(f File, result *core.ValidationResult) (string, bool) {
	data, err := v.readFile(f.Path)
	if err != nil {
		result.Add(core.Issue{
			Message:  fmt.Sprintf("error validating file: %v", err),
			File:     f.Path,
			Severity: core.SeverityError,
		})
		return "", false
	}
	return string(data), true
}

// parse reports exactly one issue on failure.
func parse(f File, content string, result *core.ValidationResult) (*document, bool) {
	if f.Category.IsMarkdown() {
		fm, err := parser.ExtractFrontmatter(content)
		if err != nil {
			issue := core.Issue{
				Message:  "syntax error: " + err.Error(),
				File:     f.Path,
				Severity: core.SeverityError,
				Fix:      "Fix the YAML between the --- fences",
			}
			var fmErr *parser.FrontmatterParseError
			if errors.As(err, &fmErr) {
				issue.Message = "syntax error: " + fmErr.Message
				issue.Line = fmErr.Line
			}
			result.Add(issue)
			return nil, false
		}
		return &document{content: content, data: fm.Data, body: fm.Body, bodyLine: fm.BodyLine}, true
	}

	var data any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		result.Add(core.Issue{
			Message:  "syntax error: " + err.Error(),
			File:     f.Path,
			Line:     jsonErrorLine(content, err),
			Severity: core.SeverityError,
		})
		return nil, false
	}
	return &document{content: content, data: data, body: content, bodyLine: 1}, true
}

func jsonErrorLine(content string, err error) int {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return lint.LineAt(content, int(syntaxErr.Offset))
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return lint.LineAt(content, int(typeErr.Offset))
	}
	return 0
}

// checkSchema reports one issue per violation.
func (v *Validator) checkSchema(f File, doc *document, result *core.ValidationResult) bool {
	s, ok := v.schemas[f.Category]
	if !ok {
		return true
	}

	violations, err := s.Validate(doc.data)
	if err != nil {
		result.Add(core.Issue{
			Message:  fmt.Sprintf("error validating file: %v", err),
			File:     f.Path,
			Severity: core.SeverityError,
		})
		return false
	}
	for _, viol := range violations {
		result.Add(core.Issue{
			Message:  viol.String(),
			File:     f.Path,
			Line:     lint.KeyLine(doc.content, lastKey(viol.Path)),
			Severity: core.SeverityError,
		})
	}
	return len(violations) == 0
}

// lastKey returns the last non-index token of a JSON pointer.
func lastKey(pointer string) string {
	tokens := strings.Split(pointer, "/")
	for i := len(tokens) - 1; i > 0; i-- {
		if _, err := strconv.Atoi(tokens[i]); err == nil {
			continue
		}
		tok := strings.ReplaceAll(tokens[i], "~1", "/")
		return strings.ReplaceAll(tok, "~0", "~")
	}
	return ""
}

// checkSemantics runs catalog rules, then the category's hand-written checks.
func (v *Validator) checkSemantics(ctx context.Context, f File, doc *document, result *core.ValidationResult) {
	issues := v.analyzer.Analyze(ctx, &lint.Target{
		Path:     f.Path,
		Category: f.Category,
		Content:  doc.content,
		Data:     doc.data,
		Body:     doc.body,
		BodyLine: doc.bodyLine,
	})
	for _, issue := range issues {
		result.Add(issue)
	}

	if check, ok := v.checks[f.Category]; ok {
		for _, issue := range check(f.Path, doc.content, doc.data) {
			if issue.File == "" {
				issue.File = f.Path
			}
			result.Add(issue)
		}
	}
}
