package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/claudelint/internal/cli/config"
	"github.com/leapstack-labs/claudelint/internal/cli/output"
	"github.com/leapstack-labs/claudelint/internal/testutil"
)

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestIsConfigEvent(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "repo")
	cfg := config.Default()
	cfg.ProjectRoot = root
	cfg.File = filepath.Join(root, ".claudelint.yaml")

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, ".claudelint.yaml"), true},
		{filepath.Join(root, "sub", ".claudelint.yml"), true},
		{filepath.Join(root, ".env"), true},
		{filepath.Join(root, "sub", ".env"), false},
		{filepath.Join(root, "rules", "owner.star"), true},
		{filepath.Join(root, "CLAUDE.md"), false},
		{filepath.Join(root, ".claude", "settings.json"), false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isConfigEvent(cfg, tt.path))
		})
	}
}

func TestWatchDirs(t *testing.T) {
	dir := testutil.NewProject(t, map[string]string{
		"CLAUDE.md":                   "# x\n",
		".claude/skills/pdf/SKILL.md": "---\nname: pdf\n---\n",
		"rules/owner.star":            "rule = {}\n",
		"docs/readme.txt":             "",
	})
	t.Chdir(dir)

	cfg := projectConfig(dir)
	sess, err := NewSession(cfg, testutil.NewTestLogger(t))
	require.NoError(t, err)
	sess.Cfg.CustomRules = []string{filepath.Join(dir, "rules", "owner.star")}

	dirs, err := watchDirs(sess, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		dir,
		filepath.Join(dir, ".claude", "skills", "pdf"),
		filepath.Join(dir, "rules"),
	}, dirs)

	dirs, err = watchDirs(sess, []string{"CLAUDE.md"})
	require.NoError(t, err)
	assert.Equal(t, []string{dir, filepath.Join(dir, "rules")}, dirs)
}

func TestReloadSession(t *testing.T) {
	dir := t.TempDir()
	logger := testutil.NewTestLogger(t)

	old, err := NewSession(projectConfig(dir), logger)
	require.NoError(t, err)

	t.Run("new configuration", func(t *testing.T) {
		next, err := reloadSession(old, func() (*config.Config, error) {
			cfg := projectConfig(dir)
			cfg.MaxWarnings = 3
			return cfg, nil
		}, logger)
		require.NoError(t, err)
		assert.NotSame(t, old, next)
		assert.Equal(t, 3, next.Cfg.MaxWarnings)
	})

	t.Run("broken configuration keeps the old session", func(t *testing.T) {
		next, err := reloadSession(old, func() (*config.Config, error) {
			return nil, errors.New("cannot read configuration")
		}, logger)
		require.Error(t, err)
		assert.Nil(t, next)
	})
}

func TestWatch_RerunsOnChange(t *testing.T) {
	dir := testutil.NewProject(t, map[string]string{"CLAUDE.md": "# Project\n\nUse make.\n"})
	t.Chdir(dir)

	out, errOut := &syncBuffer{}, &syncBuffer{}
	cmdCtx := &CommandContext{
		Cfg:      projectConfig(dir),
		Logger:   testutil.NewTestLogger(t),
		Renderer: output.NewRendererWithTTY(out, errOut, false, output.ModeAuto),
	}
	sess, err := NewSession(cmdCtx.Cfg, cmdCtx.Logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, cmdCtx, sess, nil, func() (*config.Config, error) {
			return config.LoadFrom(dir, "", nil)
		})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(errOut.String(), "Watching")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "No problems found")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "CLAUDE.md"), []byte("\n"), 0o600))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "claude-md-empty")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".claudelint.yaml"), []byte("rules:\n  claude-md-empty: off\n"), 0o600))
	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "No problems found") >= 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
