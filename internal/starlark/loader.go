package starlark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
)

// Loader loads custom rule files.
type Loader struct {
	baseDir  string
	maxSteps uint64
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithMaxSteps bounds the execution steps of each check call.
func WithMaxSteps(n uint64) LoaderOption {
	return func(l *Loader) { l.maxSteps = n }
}

// WithLogger sets the logger that receives print output and load events.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader resolving relative paths against baseDir.
func NewLoader(baseDir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		baseDir:  baseDir,
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	return l
}

// Load loads every rule file named by paths. A directory contributes all of
// its *.star files in name order.
func (l *Loader) Load(paths []string) ([]lint.RuleDef, error) {
	var files []string
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(l.baseDir, p)
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, &LoadError{File: p, Message: fmt.Sprintf("failed to access rule file: %v", err)}
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.star"))
		if err != nil {
			return nil, &LoadError{File: p, Message: fmt.Sprintf("failed to scan directory: %v", err)}
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}

	defs := make([]lint.RuleDef, 0, len(files))
	for _, file := range files {
		def, err := l.LoadFile(file)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("loaded custom rule", "id", def.ID, "file", file)
		defs = append(defs, def)
	}
	return defs, nil
}

// LoadFile executes one rule file and builds its rule definition.
func (l *Loader) LoadFile(path string) (lint.RuleDef, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the user's configuration
	if err != nil {
		return lint.RuleDef{}, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	thread := newThread("load:"+filepath.Base(path), l.maxSteps, l.logger)
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, path, content, Predeclared())
	if err != nil {
		return lint.RuleDef{}, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}

	meta, err := ruleMeta(globals)
	if err != nil {
		return lint.RuleDef{}, &LoadError{File: path, Message: err.Error()}
	}

	check, ok := globals["check"].(starlark.Callable)
	if !ok {
		return lint.RuleDef{}, &LoadError{File: path, Message: "missing check(ctx) function"}
	}

	meta.Source = path
	meta.Check = l.checkFunc(meta.ID, check)
	return meta, nil
}

// ruleMeta reads the rule dict.
func ruleMeta(globals starlark.StringDict) (lint.RuleDef, error) {
	raw, ok := globals["rule"]
	if !ok {
		return lint.RuleDef{}, fmt.Errorf("missing rule dict")
	}
	goVal, err := fromStarlark(raw)
	if err != nil {
		return lint.RuleDef{}, fmt.Errorf("rule: %w", err)
	}
	m, ok := goVal.(map[string]any)
	if !ok {
		return lint.RuleDef{}, fmt.Errorf("rule must be a dict, got %s", raw.Type())
	}

	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}

	def := lint.RuleDef{
		ID:          str("id"),
		Name:        str("name"),
		Description: str("description"),
		Rationale:   str("rationale"),
		Fix:         str("fix"),
		Severity:    core.SeverityWarn,
	}
	if def.ID == "" {
		return lint.RuleDef{}, fmt.Errorf("rule.id is required")
	}
	if def.Name == "" {
		def.Name = def.ID
	}

	cat, ok := core.ParseCategory(str("category"))
	if !ok {
		return lint.RuleDef{}, fmt.Errorf("rule.category %q is not a known category", str("category"))
	}
	def.Category = cat

	if s := str("severity"); s != "" {
		sev, ok := core.ParseSeverity(s)
		if !ok {
			return lint.RuleDef{}, fmt.Errorf("rule.severity %q must be off, warn or error", s)
		}
		def.Severity = sev
	}

	switch schema := m["options_schema"].(type) {
	case nil:
	case string:
		def.OptionSchema = schema
	case map[string]any:
		b, err := json.Marshal(schema)
		if err != nil {
			return lint.RuleDef{}, fmt.Errorf("rule.options_schema: %w", err)
		}
		def.OptionSchema = string(b)
	default:
		return lint.RuleDef{}, fmt.Errorf("rule.options_schema must be a dict or a JSON string")
	}

	if opts, ok := m["default_options"].(map[string]any); ok {
		def.DefaultOptions = opts
	}
	return def, nil
}

// checkFunc adapts a Starlark check function to lint.CheckFunc. Each call
// gets a fresh thread, cancelled with ctx.
func (l *Loader) checkFunc(id string, check starlark.Callable) lint.CheckFunc {
	return func(ctx context.Context, rc *lint.RuleContext) error {
		sctx, err := checkContext(rc)
		if err != nil {
			return err
		}

		thread := newThread(id+":"+rc.FilePath, l.maxSteps, l.logger)
		stop := cancelOnDone(ctx, thread)
		defer stop()

		if _, err := starlark.Call(thread, check, starlark.Tuple{sctx}, nil); err != nil {
			var evalErr *starlark.EvalError
			if errors.As(err, &evalErr) {
				return fmt.Errorf("%s", evalErr.Backtrace())
			}
			return err
		}
		return nil
	}
}

// LoadError is returned when a custom rule file cannot be loaded. It is a
// fatal configuration error.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("custom rule %s: %s", filepath.Base(e.File), e.Message)
}

// RegisterAll loads paths and registers each rule with catalog. Load
// failures are returned as *lint.ConfigurationError.
func (l *Loader) RegisterAll(catalog *lint.Catalog, paths []string) error {
	defs, err := l.Load(paths)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return &lint.ConfigurationError{Source: loadErr.File, Message: "cannot load custom rule", Err: err}
		}
		return err
	}
	for _, def := range defs {
		if err := catalog.Register(def); err != nil {
			if lint.IsFatal(err) {
				return err
			}
			return &lint.ConfigurationError{Source: def.Source, Message: "invalid custom rule", Err: err}
		}
	}
	return nil
}
