package claudemd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
)

// ImportMissing reports @path imports that point at files that do not exist.
var ImportMissing = lint.RuleDef{
	ID:          "claude-md-import-missing",
	Name:        "claude-md.import_missing",
	Category:    core.CategoryClaudeMD,
	Description: "Files imported with @path must exist.",
	Severity:    core.SeverityError,
	Check:       checkImports,

	Rationale:   "A broken import silently drops the instructions it was meant to load.",
	BadExample:  "See @docs/old-guide.md",
	GoodExample: "See @docs/guide.md",
	Fix:         "Correct the path or remove the import.",
}

// importPattern matches "@path" at the start of a line or after whitespace.
// Email addresses do not match because the @ follows a non-space character.
var importPattern = regexp.MustCompile(`(?:^|\s)@([~./\w-][^\s` + "`" + `)\]]*)`)

func checkImports(ctx context.Context, rc *lint.RuleContext) error {
	baseDir := filepath.Dir(rc.FilePath)
	inFence := false

	for i, line := range strings.Split(rc.Content, "\n") {
		if err := ctx.Err(); err != nil {
			return err
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		for _, m := range importPattern.FindAllStringSubmatch(stripInlineCode(line), -1) {
			ref := strings.TrimRight(m[1], ".,;:")
			if !looksLikePath(ref) {
				continue
			}
			target, ok := resolveImport(baseDir, ref)
			if !ok {
				continue
			}
			if _, err := os.Stat(target); err != nil {
				rc.Report(core.Issue{
					Line:    i + 1,
					Message: fmt.Sprintf("imported file %q does not exist", ref),
				})
			}
		}
	}
	return nil
}

var inlineCode = regexp.MustCompile("`[^`]*`")

func stripInlineCode(line string) string {
	return inlineCode.ReplaceAllString(line, "")
}

func looksLikePath(ref string) bool {
	return strings.Contains(ref, "/") || strings.Contains(ref, ".")
}

// resolveImport turns an import reference into a filesystem path. Home
// relative imports resolve against the user's home directory when known.
func resolveImport(baseDir, ref string) (string, bool) {
	if strings.HasPrefix(ref, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		return filepath.Join(home, ref[2:]), true
	}
	if filepath.IsAbs(ref) {
		return ref, true
	}
	return filepath.Join(baseDir, filepath.FromSlash(ref)), true
}
