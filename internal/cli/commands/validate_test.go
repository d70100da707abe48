package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/claudelint/internal/cli/clitest"
	"github.com/leapstack-labs/claudelint/internal/testutil"
	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/diagnostics"
	"github.com/leapstack-labs/claudelint/pkg/report"
)

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		format   string
		wantCode int
		wantOut  []string
	}{
		{
			name:     "clean",
			files:    map[string]string{"CLAUDE.md": "# Project\n\nUse make.\n"},
			wantCode: report.ExitOK,
			wantOut:  []string{"No problems found"},
		},
		{
			name:     "malformed settings",
			files:    map[string]string{".claude/settings.json": "{"},
			format:   "compact",
			wantCode: report.ExitFailure,
			wantOut:  []string{".claude/settings.json", "1 problem (1 error, 0 warnings)"},
		},
		{
			name: "mixed",
			files: map[string]string{
				"CLAUDE.md":                  "\n",
				".claude-plugin/plugin.json": `{"name": "BadName"}`,
			},
			format:   "stylish",
			wantCode: report.ExitFailure,
			wantOut:  []string{"CLAUDE.md", "plugin-name-format", "2 problems (1 error, 1 warning)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.NewProject(t, tt.files)
			t.Chdir(dir)

			cfg := projectConfig(dir)
			if tt.format != "" {
				cfg.Output.Format = tt.format
			}

			out, _, err := execute(t, NewValidateCommand(), cfg)
			if tt.wantCode == report.ExitOK {
				require.NoError(t, err)
			} else {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tt.wantCode, exitErr.Code)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestValidateOnce_Policy(t *testing.T) {
	dir := testutil.NewProject(t, map[string]string{"CLAUDE.md": "\n"})
	t.Chdir(dir)

	tests := []struct {
		name        string
		maxWarnings int
		want        int
	}{
		{name: "no threshold", maxWarnings: -1, want: report.ExitFailure},
		{name: "below threshold", maxWarnings: 5, want: report.ExitOK},
		{name: "at threshold", maxWarnings: 1, want: report.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := projectConfig(dir)
			cfg.MaxWarnings = tt.maxWarnings
			cfg.WarningsAsErrors = true

			sess, err := NewSession(cfg, testutil.NewTestLogger(t))
			require.NoError(t, err)

			tr := clitest.Markdown()
			code, err := validateOnce(t.Context(), tr.Renderer, sess, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestValidateOnce_UnknownFormatIsFatal(t *testing.T) {
	cfg := projectConfig(t.TempDir())
	cfg.Output.Format = "xml"

	sess, err := NewSession(cfg, testutil.NewTestLogger(t))
	require.NoError(t, err)

	code, err := validateOnce(t.Context(), clitest.Markdown().Renderer, sess, nil)
	require.Error(t, err)
	assert.Equal(t, report.ExitFatal, code)
}

func TestPrintDiagnostics(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    []string
		notWant []string
	}{
		{
			name:    "warnings only",
			want:    []string{"warning: unknown rule"},
			notWant: []string{"loaded"},
		},
		{
			name:    "verbose includes info",
			verbose: true,
			want:    []string{"warning: unknown rule", "info: loaded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := diagnostics.NewCollector(testutil.NewTestLogger(t))
			diags.Warn("config", "unknown-rule", "unknown rule", nil)
			diags.Info("config", "loaded", "loaded", nil)

			var buf bytes.Buffer
			printDiagnostics(&buf, diags, tt.verbose)

			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, buf.String(), w)
			}
			assert.Zero(t, diags.Len(), "diagnostics are cleared once printed")
		})
	}
}

func TestRelativize(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "repo")
	results := []core.ValidationResult{{
		Validator: "claude-md",
		Errors: []core.Issue{
			{File: filepath.Join(base, "CLAUDE.md")},
			{File: filepath.Join(base, ".claude", "settings.json")},
			{File: filepath.Join(string(filepath.Separator), "elsewhere", "CLAUDE.md")},
			{File: "relative.md"},
		},
	}}

	relativize(results, base)

	got := make([]string, 0, 4)
	for _, is := range results[0].Errors {
		got = append(got, is.File)
	}
	assert.Equal(t, []string{
		"CLAUDE.md",
		filepath.Join(".claude", "settings.json"),
		filepath.Join(string(filepath.Separator), "elsewhere", "CLAUDE.md"),
		"relative.md",
	}, got)
}
