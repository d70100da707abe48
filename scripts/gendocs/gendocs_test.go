package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_All(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, generate("all", "", root))

	for _, name := range []string{
		"cli/index.md",
		"cli/validate.md",
		"cli/rules.md",
		"cli/rules-show.md",
		"configuration/index.md",
		"custom-rules/index.md",
		"rules/index.md",
		"rules/claude-md-size.md",
	} {
		assert.FileExists(t, filepath.Join(root, name))
	}

	validate, err := os.ReadFile(filepath.Join(root, "cli", "validate.md"))
	require.NoError(t, err)
	assert.Contains(t, string(validate), "`maxWarnings`")
	assert.Contains(t, string(validate), "`output.verbose`", "root flags are inherited")

	rules, err := os.ReadFile(filepath.Join(root, "cli", "rules.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(rules), "`output.format`", "rules --format is not configuration")

	page, err := os.ReadFile(filepath.Join(root, "custom-rules", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), generatedHeader)
	assert.Contains(t, string(page), "`ctx.key_line(key)`")
	assert.Contains(t, string(page), "`default_options`")
}

func TestGenerate_SingleWithOutDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "elsewhere")
	require.NoError(t, generate("rules", out, t.TempDir()))
	assert.FileExists(t, filepath.Join(out, "index.md"))
}

func TestGenerate_Unknown(t *testing.T) {
	err := generate("sql", "", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown -gen value")
}

func TestGenerateStarlarkDocs_KeepsHandWrittenIntro(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.md")
	require.NoError(t, os.WriteFile(path, []byte("# Custom Rules\n\nOur house style.\n\n## Reference\n\nstale\n"), 0o600))

	require.NoError(t, generateStarlarkDocs(dir))

	page, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Our house style.")
	assert.NotContains(t, string(page), "stale")
	assert.Contains(t, string(page), "`ctx.report(message, line=0, fix=\"\")`")
}
