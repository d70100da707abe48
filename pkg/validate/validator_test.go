package validate_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/claudelint/internal/testutil"
	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules"
	"github.com/leapstack-labs/claudelint/pkg/validate"
)

func newValidator(t *testing.T, cfg *lint.Config, opts ...validate.Option) *validate.Validator {
	t.Helper()
	catalog, err := rules.NewCatalog()
	require.NoError(t, err)
	resolver := lint.NewResolver(catalog, cfg)
	opts = append([]validate.Option{validate.WithLogger(testutil.NewTestLogger(t))}, opts...)
	v, err := validate.New(catalog, resolver, opts...)
	require.NoError(t, err)
	return v
}

func validateOne(t *testing.T, v *validate.Validator, root, rel string, cat core.Category) core.ValidationResult {
	t.Helper()
	results, err := v.Validate(context.Background(), []validate.File{{
		Path:     filepath.Join(root, filepath.FromSlash(rel)),
		Category: cat,
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	return results[0]
}

func messages(issues []core.Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Message
	}
	return out
}

func TestValidProject(t *testing.T) {
	root := testutil.NewProject(t, map[string]string{
		"CLAUDE.md":                          "# Project\n\nRun `make test` before committing.\n",
		".claude/settings.json":              `{"permissions": {"allow": ["Bash(make test)", "Read"], "deny": ["Bash(rm:*)"]}}`,
		".mcp.json":                          `{"mcpServers": {"fs": {"command": "npx", "args": ["-y", "server-fs"], "env": {"API_TOKEN": "${API_TOKEN}"}}}}`,
		".claude/skills/pdf-helper/SKILL.md": "---\nname: pdf-helper\ndescription: Extracts tables and text from PDF files\n---\n\n# PDF\n",
		".claude/agents/reviewer.md":         "---\nname: reviewer\ndescription: Reviews diffs\nmodel: sonnet\n---\nYou review code.\n",
		".claude/commands/commit.md":         "---\nallowed-tools: Bash(git add:*), Bash(git commit:*)\ndescription: Commit staged work\n---\nCommit.\n",
		".claude/output-styles/terse.md":     "---\ndescription: Short answers\n---\nBe brief.\n",
		".claude-plugin/plugin.json":         `{"name": "my-plugin", "version": "1.0.0"}`,
		"hooks/hooks.json":                   `{"hooks": {"PostToolUse": [{"matcher": "Write", "hooks": [{"type": "command", "command": "gofmt -w ."}]}]}}`,
		".lsp.json":                          `{"gopls": {"command": "gopls", "extensionToLanguage": {".go": "go"}}}`,
	})

	files := []validate.File{
		{Path: filepath.Join(root, "CLAUDE.md"), Category: core.CategoryClaudeMD},
		{Path: filepath.Join(root, ".claude", "settings.json"), Category: core.CategorySettings},
		{Path: filepath.Join(root, ".mcp.json"), Category: core.CategoryMCP},
		{Path: filepath.Join(root, ".claude", "skills", "pdf-helper", "SKILL.md"), Category: core.CategorySkills},
		{Path: filepath.Join(root, ".claude", "agents", "reviewer.md"), Category: core.CategoryAgents},
		{Path: filepath.Join(root, ".claude", "commands", "commit.md"), Category: core.CategoryCommands},
		{Path: filepath.Join(root, ".claude", "output-styles", "terse.md"), Category: core.CategoryOutputStyles},
		{Path: filepath.Join(root, ".claude-plugin", "plugin.json"), Category: core.CategoryPlugin},
		{Path: filepath.Join(root, "hooks", "hooks.json"), Category: core.CategoryHooks},
		{Path: filepath.Join(root, ".lsp.json"), Category: core.CategoryLSP},
	}

	results, err := newValidator(t, nil).Validate(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, len(files))
	for _, r := range results {
		assert.True(t, r.Valid(), "%s: %v", r.Validator, messages(r.Errors))
		assert.Empty(t, r.Warnings, "%s: %v", r.Validator, messages(r.Warnings))
	}
}

func TestMalformedJSONReportsOneIssue(t *testing.T) {
	root := testutil.NewProject(t, map[string]string{
		".mcp.json": "{\n  \"mcpServers\": {\n    \"fs\": \n}",
	})

	r := validateOne(t, newValidator(t, nil), root, ".mcp.json", core.CategoryMCP)
	require.Len(t, r.Errors, 1)
	assert.Empty(t, r.Warnings)
	assert.Contains(t, r.Errors[0].Message, "syntax error")
	assert.Equal(t, 4, r.Errors[0].Line)
	assert.Equal(t, "mcp", r.Validator)
}

func TestMalformedFrontmatterReportsOneIssue(t *testing.T) {
	root := testutil.NewProject(t, map[string]string{
		".claude/agents/a.md": "---\nname: a\ndescription: [unclosed\n---\nbody\n",
	})

	r := validateOne(t, newValidator(t, nil), root, ".claude/agents/a.md", core.CategoryAgents)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0].Message, "syntax error")
	assert.Positive(t, r.Errors[0].Line)
}

func TestSchemaViolationsSkipSemanticRules(t *testing.T) {
	root := testutil.NewProject(t, map[string]string{
		// Both a schema violation (version) and a semantic one (name).
		".claude-plugin/plugin.json": "{\n  \"name\": \"BadName\",\n  \"version\": 3\n}",
	})

	r := validateOne(t, newValidator(t, nil), root, ".claude-plugin/plugin.json", core.CategoryPlugin)
	require.Len(t, r.Errors, 1, "errors: %v", messages(r.Errors))
	assert.Contains(t, r.Errors[0].Message, "/version")
	assert.Equal(t, 3, r.Errors[0].Line)
}

func TestSchemaViolationPerField(t *testing.T) {
	root := testutil.NewProject(t, map[string]string{
		".claude/skills/x/SKILL.md": "---\nlicense: MIT\n---\nBody\n",
	})

	r := validateOne(t, newValidator(t, nil), root, ".claude/skills/x/SKILL.md", core.CategorySkills)
	assert.NotEmpty(t, r.Errors)
	for _, is := range r.Errors {
		assert.Equal(t, core.SeverityError, is.Severity)
		assert.Empty(t, is.RuleID)
	}
}

func TestReadFailure(t *testing.T) {
	v := newValidator(t, nil, validate.WithReadFile(func(string) ([]byte, error) {
		return nil, errors.New("permission denied")
	}))

	results, err := v.Validate(context.Background(), []validate.File{
		{Path: "CLAUDE.md", Category: core.CategoryClaudeMD},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Errors, 1)
	assert.Equal(t, "error validating file: permission denied", results[0].Errors[0].Message)
	assert.Equal(t, "CLAUDE.md", results[0].Errors[0].File)
}

func TestIssuesBucketedByResolvedSeverity(t *testing.T) {
	files := map[string]string{
		".claude-plugin/plugin.json":        `{"name": "BadName"}`,
		"vendor/.claude-plugin/plugin.json": `{"name": "BadName"}`,
	}

	tests := []struct {
		name         string
		cfg          *lint.Config
		wantErrors   int
		wantWarnings int
	}{
		{name: "default", cfg: nil, wantErrors: 2},
		{name: "downgraded", cfg: lint.NewConfig().SetSeverity("plugin-name-format", core.SeverityWarn), wantWarnings: 2},
		{name: "disabled", cfg: lint.NewConfig().Disable("plugin-name-format")},
		{
			name: "override for vendor",
			cfg: lint.NewConfig().AddOverride([]string{"vendor/**"}, lint.RuleSettings{
				"plugin-name-format": {Severity: core.SeverityOff},
			}),
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testutil.NewProject(t, files)
			catalog, err := rules.NewCatalog()
			require.NoError(t, err)
			resolver := lint.NewResolver(catalog, tt.cfg, lint.WithBaseDir(root))
			v, err := validate.New(catalog, resolver)
			require.NoError(t, err)

			results, err := v.Validate(context.Background(), []validate.File{
				{Path: filepath.Join(root, ".claude-plugin", "plugin.json"), Category: core.CategoryPlugin},
				{Path: filepath.Join(root, "vendor", ".claude-plugin", "plugin.json"), Category: core.CategoryPlugin},
			})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Len(t, results[0].Errors, tt.wantErrors)
			assert.Len(t, results[0].Warnings, tt.wantWarnings)
			for _, is := range append(results[0].Errors, results[0].Warnings...) {
				assert.Equal(t, "plugin-name-format", is.RuleID)
			}
		})
	}
}

func TestResultsOrderedByCategory(t *testing.T) {
	root := testutil.NewProject(t, map[string]string{
		".mcp.json":                 `{"mcpServers": {}}`,
		"CLAUDE.md":                 "# x\n",
		".claude/skills/a/SKILL.md": "---\nname: a\ndescription: A skill that does something useful\n---\n",
		".claude/skills/b/SKILL.md": "---\nname: wrong\ndescription: A skill that does something useful\n---\n",
	})

	results, err := newValidator(t, nil, validate.WithConcurrency(1)).Validate(context.Background(), []validate.File{
		{Path: filepath.Join(root, ".mcp.json"), Category: core.CategoryMCP},
		{Path: filepath.Join(root, ".claude", "skills", "b", "SKILL.md"), Category: core.CategorySkills},
		{Path: filepath.Join(root, "CLAUDE.md"), Category: core.CategoryClaudeMD},
		{Path: filepath.Join(root, ".claude", "skills", "a", "SKILL.md"), Category: core.CategorySkills},
	})
	require.NoError(t, err)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Validator
	}
	assert.Equal(t, []string{"claude-md", "skills", "mcp"}, names)
	require.Len(t, results[1].Errors, 1)
	assert.Equal(t, "skill-name-matches-directory", results[1].Errors[0].RuleID)
}

func TestExtraChecks(t *testing.T) {
	root := testutil.NewProject(t, map[string]string{
		".claude/settings.json": `{"permissions": {"allow": ["Read", "Bash(curl:*)"], "deny": ["Bash(curl:*)"]}}`,
		"hooks/hooks.json": `{"hooks": {"PreToolUse": [
			{"matcher": "Bash", "hooks": [{"type": "command", "command": "echo one"}]},
			{"matcher": "Bash", "hooks": [{"type": "command", "command": "echo two", "timeout": 900}]}
		]}}`,
		".mcp.json": `{"mcpServers": {"both": {"command": "x", "url": "https://x"}}}`,
	})

	t.Run("settings allow and deny", func(t *testing.T) {
		r := validateOne(t, newValidator(t, nil), root, ".claude/settings.json", core.CategorySettings)
		require.Len(t, r.Errors, 1)
		assert.Contains(t, r.Errors[0].Message, "both allowed and denied")
		assert.Empty(t, r.Errors[0].RuleID)
	})

	t.Run("hooks duplicate matcher and timeout", func(t *testing.T) {
		r := validateOne(t, newValidator(t, nil), root, "hooks/hooks.json", core.CategoryHooks)
		assert.Empty(t, r.Errors)
		require.Len(t, r.Warnings, 2, "%v", messages(r.Warnings))
		assert.Contains(t, r.Warnings[0].Message, "more than one entry")
		assert.Contains(t, r.Warnings[1].Message, "exceeds 600s")
	})

	t.Run("mcp command and url", func(t *testing.T) {
		r := validateOne(t, newValidator(t, nil), root, ".mcp.json", core.CategoryMCP)
		require.Len(t, r.Errors, 1)
		assert.Contains(t, r.Errors[0].Message, "both command and url")
	})

	t.Run("disabled", func(t *testing.T) {
		v := newValidator(t, nil, validate.WithExtraChecks(map[core.Category]validate.ExtraCheck{}))
		r := validateOne(t, v, root, ".mcp.json", core.CategoryMCP)
		assert.True(t, r.Valid())
	})
}

func TestValidateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newValidator(t, nil).Validate(ctx, []validate.File{
		{Path: "CLAUDE.md", Category: core.CategoryClaudeMD},
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestValidateNoFiles(t *testing.T) {
	results, err := newValidator(t, nil).Validate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuiltinSchemasCompile(t *testing.T) {
	schemas, err := validate.BuiltinSchemas()
	require.NoError(t, err)
	assert.Len(t, schemas, len(core.Categories())-1)
	_, ok := schemas[core.CategoryClaudeMD]
	assert.False(t, ok)
}

func TestValidate_CancelledMidRunIsAnError(t *testing.T) {
	root := testutil.NewProject(t, map[string]string{"CLAUDE.md": "# Project\n"})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	catalog := lint.NewCatalog()
	catalog.MustRegister(lint.RuleDef{
		ID:       "a-cancels",
		Category: core.CategoryClaudeMD,
		Severity: core.SeverityError,
		Check: func(context.Context, *lint.RuleContext) error {
			cancel()
			return nil
		},
	})
	catalog.MustRegister(lint.RuleDef{
		ID:       "b-always-fails",
		Category: core.CategoryClaudeMD,
		Severity: core.SeverityError,
		Check: func(_ context.Context, rc *lint.RuleContext) error {
			rc.Reportf(1, "always")
			return nil
		},
	})

	v, err := validate.New(catalog, lint.NewResolver(catalog, nil),
		validate.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)

	results, err := v.Validate(ctx, []validate.File{{
		Path:     filepath.Join(root, "CLAUDE.md"),
		Category: core.CategoryClaudeMD,
	}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results, "a cancelled run must not look clean")
}
