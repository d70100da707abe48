// Package lint provides the rule catalog, the per-file configuration
// resolver and the analyzer that runs rules over parsed files.
//
// # Catalog
//
// Rules are registered explicitly into a Catalog instance. There is no
// package-level registry, so tests can build isolated catalogs:
//
//	catalog := lint.NewCatalog()
//	if err := rules.RegisterBuiltin(catalog); err != nil {
//		return err
//	}
//
// Registering an id twice fails with *DuplicateRuleError.
//
// # Configuration
//
// Config holds base rule settings and ordered overrides:
//
//	cfg := lint.NewConfig()
//	cfg.SetSeverity("claude-md-size", core.SeverityError)
//	cfg.AddOverride([]string{"docs/**/CLAUDE.md"}, lint.RuleSettings{
//		"claude-md-size": {Severity: core.SeverityOff},
//	})
//
// Raw configuration documents are decoded with DecodeConfig, which accepts a
// bare severity, a {severity, options} object or a [severity, options] list
// for each rule and normalizes all of them into RuleSetting.
//
// # Resolution
//
// Resolver.ResolveForFile applies the base rules and then every override
// whose patterns match the path, in declaration order. The last matching
// override wins. Options are validated against the rule's option schema;
// invalid options are recorded as a diagnostic and the rule is handled per
// OptionErrorPolicy.
//
// # Writing rules
//
//	var MaxLines = lint.RuleDef{
//		ID:           "claude-md-size",
//		Category:     core.CategoryClaudeMD,
//		Severity:     core.SeverityWarn,
//		OptionSchema: `{"type":"object","properties":{"maxLines":{"type":"integer"}}}`,
//		Check:        checkMaxLines,
//	}
//
//	func checkMaxLines(_ context.Context, rc *lint.RuleContext) error {
//		limit := lint.GetIntOption(rc.Options, "maxLines", 500)
//		...
//		rc.Reportf(limit+1, "file has %d lines (max %d)", n, limit)
//		return nil
//	}
package lint
