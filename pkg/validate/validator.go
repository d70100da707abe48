// Package validate runs the per-file validation pipeline:
//
//	Read -> Parse -> SchemaCheck -> SemanticCheck
//
// Each phase gates the next. A file that cannot be read, parsed or that
// violates its category's schema is reported and skipped; semantic rules only
// ever see well-formed, schema-valid input. Files are validated concurrently
// and merged into one ValidationResult per category.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/schema"
)

// File is one discovered configuration file.
type File struct {
	Path     string
	Category core.Category
}

// Validator validates files against schemas and catalog rules.
type Validator struct {
	analyzer    *lint.Analyzer
	schemas     map[core.Category]*schema.Schema
	checks      map[core.Category]ExtraCheck
	logger      *slog.Logger
	concurrency int
	readFile    func(string) ([]byte, error)
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// WithConcurrency bounds the number of files validated at once.
// Values below 1 mean runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(v *Validator) { v.concurrency = n }
}

// WithSchemas replaces the embedded category schemas.
func WithSchemas(s map[core.Category]*schema.Schema) Option {
	return func(v *Validator) { v.schemas = s }
}

// WithExtraChecks replaces the hand-written per-category checks.
func WithExtraChecks(c map[core.Category]ExtraCheck) Option {
	return func(v *Validator) { v.checks = c }
}

// WithReadFile replaces os.ReadFile. Used by tests to simulate I/O failures.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(v *Validator) { v.readFile = fn }
}

// New creates a validator over a catalog and resolver.
func New(catalog *lint.Catalog, resolver *lint.Resolver, opts ...Option) (*Validator, error) {
	v := &Validator{
		checks:   builtinChecks(),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.New(slog.DiscardHandler)
	}
	if v.concurrency < 1 {
		v.concurrency = runtime.NumCPU()
	}
	if v.schemas == nil {
		s, err := BuiltinSchemas()
		if err != nil {
			return nil, fmt.Errorf("load schemas: %w", err)
		}
		v.schemas = s
	}
	v.analyzer = lint.NewAnalyzer(catalog, resolver, v.logger)
	return v, nil
}

// Validate runs the pipeline for every file and returns one result per
// category present among files, in core.Categories() order. Issues within a
// result keep the order of files. The only error is ctx's.
func (v *Validator) Validate(ctx context.Context, files []File) ([]core.ValidationResult, error) {
	perFile := make([]core.ValidationResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perFile[i] = v.ValidateFile(gctx, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The analyzer stops between rules on cancellation, so results gathered
	// after it may be partial.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byCategory := make(map[core.Category]*core.ValidationResult)
	for i, f := range files {
		r, ok := byCategory[f.Category]
		if !ok {
			res := core.NewValidationResult(f.Category.ValidatorID())
			r = &res
			byCategory[f.Category] = r
		}
		r.Merge(perFile[i])
	}

	var results []core.ValidationResult
	for _, cat := range core.Categories() {
		if r, ok := byCategory[cat]; ok {
			results = append(results, *r)
		}
	}
	return results, nil
}

// ValidateFile runs the four phases for one file.
func (v *Validator) ValidateFile(ctx context.Context, f File) core.ValidationResult {
	result := core.NewValidationResult(f.Category.ValidatorID())
	logger := v.logger.With("file", f.Path, "category", string(f.Category))

	content, ok := v.read(f, &result)
	if !ok {
		logger.Debug("read failed")
		return result
	}

	doc, ok := parse(f, content, &result)
	if !ok {
		logger.Debug("parse failed")
		return result
	}

	if !v.checkSchema(f, doc, &result) {
		logger.Debug("schema check failed", "violations", len(result.Errors))
		return result
	}

	v.checkSemantics(ctx, f, doc, &result)
	logger.Debug("validated", "errors", len(result.Errors), "warnings", len(result.Warnings))
	return result
}
