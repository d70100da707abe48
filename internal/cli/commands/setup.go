package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/claudelint/internal/cli/config"
	"github.com/leapstack-labs/claudelint/internal/cli/output"
	"github.com/leapstack-labs/claudelint/internal/discovery"
	"github.com/leapstack-labs/claudelint/internal/starlark"
	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/diagnostics"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules"
	"github.com/leapstack-labs/claudelint/pkg/validate"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext reads the config and logger stored on the command's
// context by the root command and builds a renderer for its output.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeAuto).
		WithColor(output.ParseColor(cfg.Output.Color))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// ExitError carries a non-zero exit code for a run that completed but
// failed, such as a run with lint errors. It has no message of its own.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewCatalog returns the built-in rules plus the configured custom rules.
func NewCatalog(cfg *config.Config, logger *slog.Logger) (*lint.Catalog, error) {
	catalog, err := rules.NewCatalog()
	if err != nil {
		return nil, err
	}
	if len(cfg.CustomRules) == 0 {
		return catalog, nil
	}

	loader := starlark.NewLoader(cfg.ProjectRoot,
		starlark.WithMaxSteps(cfg.CustomRuleMaxSteps),
		starlark.WithLogger(logger),
	)
	if err := loader.RegisterAll(catalog, cfg.CustomRules); err != nil {
		return nil, err
	}
	logger.Debug("custom rules loaded", "paths", cfg.CustomRules, "rules", catalog.Count())
	return catalog, nil
}

// Session is everything one validation run needs. Watch mode keeps a
// session across runs and reloads it when the config changes.
type Session struct {
	Cfg       *config.Config
	Catalog   *lint.Catalog
	Resolver  *lint.Resolver
	Validator *validate.Validator
	Diags     *diagnostics.Collector

	logger *slog.Logger
}

// NewSession builds the catalog, resolver and validator for cfg. Every
// error it returns is fatal.
func NewSession(cfg *config.Config, logger *slog.Logger) (*Session, error) {
	catalog, err := NewCatalog(cfg, logger)
	if err != nil {
		return nil, err
	}

	lintCfg, err := cfg.Lint()
	if err != nil {
		return nil, err
	}
	policy, err := lint.ParseOptionErrorPolicy(cfg.OnInvalidOptions)
	if err != nil {
		return nil, &lint.ConfigurationError{Source: cfg.File, Message: "invalid settings", Err: err}
	}

	diags := diagnostics.NewCollector(logger)
	lint.CheckConfig(lintCfg, catalog, diags)

	resolver := lint.NewResolver(catalog, lintCfg,
		lint.WithBaseDir(cfg.ProjectRoot),
		lint.WithDiagnostics(diags),
		lint.WithOptionErrorPolicy(policy),
		lint.WithLogger(logger),
	)

	v, err := validate.New(catalog, resolver,
		validate.WithLogger(logger),
		validate.WithConcurrency(cfg.Concurrency),
	)
	if err != nil {
		return nil, err
	}

	return &Session{
		Cfg:       cfg,
		Catalog:   catalog,
		Resolver:  resolver,
		Validator: v,
		Diags:     diags,
		logger:    logger,
	}, nil
}

// Discover finds the files to validate. Relative paths are taken from the
// working directory; no paths means the working directory itself.
func (s *Session) Discover(paths []string) ([]validate.File, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		abs = append(abs, p)
	}
	if len(abs) == 0 {
		abs = append(abs, cwd)
	}

	files, err := discovery.Discover(s.Cfg.ProjectRoot, abs, s.Cfg.IgnorePatterns)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("discovered files", "count", len(files))
	return files, nil
}

// Run validates files and returns results with file paths relative to the
// working directory.
func (s *Session) Run(ctx context.Context, files []validate.File) ([]core.ValidationResult, error) {
	results, err := s.Validator.Validate(ctx, files)
	if err != nil {
		return nil, err
	}
	if cwd, err := os.Getwd(); err == nil {
		relativize(results, cwd)
	}
	return results, nil
}

func relativize(results []core.ValidationResult, base string) {
	rel := func(issues []core.Issue) {
		for i := range issues {
			if !filepath.IsAbs(issues[i].File) {
				continue
			}
			if r, err := filepath.Rel(base, issues[i].File); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
				issues[i].File = r
			}
		}
	}
	for i := range results {
		rel(results[i].Errors)
		rel(results[i].Warnings)
	}
}
