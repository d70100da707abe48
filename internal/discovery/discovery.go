// Package discovery finds the configuration files of a project and assigns
// each one its category.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/validate"
)

// ErrUnsupported is returned for an explicitly named file that matches no category.
var ErrUnsupported = errors.New("not a recognised configuration file")

type pattern struct {
	glob     string
	category core.Category
}

// patterns are matched in order against slash-separated paths relative to
// the project root.
var patterns = []pattern{
	{"**/CLAUDE.md", core.CategoryClaudeMD},
	{"**/CLAUDE.local.md", core.CategoryClaudeMD},
	{"**/.claude/skills/*/SKILL.md", core.CategorySkills},
	{"**/.claude/settings.json", core.CategorySettings},
	{"**/.claude/settings.local.json", core.CategorySettings},
	{"**/hooks/hooks.json", core.CategoryHooks},
	{"**/.mcp.json", core.CategoryMCP},
	{"**/.claude-plugin/plugin.json", core.CategoryPlugin},
	{"**/.claude/agents/*.md", core.CategoryAgents},
	{"**/agents/*.md", core.CategoryAgents},
	{"**/.lsp.json", core.CategoryLSP},
	{"**/.claude/output-styles/*.md", core.CategoryOutputStyles},
	{"**/.claude/commands/**/*.md", core.CategoryCommands},
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// Classify returns the category of a path relative to the project root.
func Classify(rel string) (core.Category, bool) {
	rel = path.Clean(filepath.ToSlash(rel))
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p.glob, rel); ok {
			return p.category, true
		}
	}
	return "", false
}

// Matcher reports whether a slash-separated relative path is ignored.
type Matcher struct {
	globs []glob.Glob
}

// NewMatcher compiles ignore patterns.
func NewMatcher(ignore []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range ignore {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether rel or its base name matches an ignore pattern.
func (m *Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	for _, g := range m.globs {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// Discover returns the configuration files under root. Each entry of paths
// is a file or directory, relative to root unless absolute; no paths means
// root itself. Results are sorted by path with duplicates removed.
func Discover(root string, paths []string, ignore []string) ([]validate.File, error) {
	matcher, err := NewMatcher(ignore)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := make(map[string]bool)
	var files []validate.File
	add := func(p string, cat core.Category) {
		if !seen[p] {
			seen[p] = true
			files = append(files, validate.File{Path: p, Category: cat})
		}
	}

	for _, p := range paths {
		target := p
		if !filepath.IsAbs(target) {
			target = filepath.Join(root, p)
		}
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", p, err)
		}

		if !info.IsDir() {
			cat, ok := Classify(relTo(root, target))
			if !ok {
				return nil, fmt.Errorf("%s: %w", p, ErrUnsupported)
			}
			add(target, cat)
			continue
		}

		err = filepath.WalkDir(target, func(fp string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			rel := relTo(root, fp)
			if d.IsDir() {
				if fp != target && (skipDirs[d.Name()] || matcher.Match(rel)) {
					return filepath.SkipDir
				}
				return nil
			}
			if matcher.Match(rel) {
				return nil
			}
			if cat, ok := Classify(rel); ok {
				add(fp, cat)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", p, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Dirs returns the distinct directories containing files, for watching.
func Dirs(files []validate.File) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		d := filepath.Dir(f.Path)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// relTo returns p relative to root in slash form, or p itself when it is
// outside root.
func relTo(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
