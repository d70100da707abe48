package lint

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/schema"
)

// Catalog stores the registered rules. Build one per process (or per test)
// and pass it to the resolver and validator.
type Catalog struct {
	mu    sync.RWMutex
	rules map[string]catalogEntry // keyed by ID

	// byCategory is derived from rules. It is dropped on every registration
	// and rebuilt on the next lookup.
	byCategory map[core.Category][]RuleDef
}

type catalogEntry struct {
	def    RuleDef
	schema *schema.Schema
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		rules: make(map[string]catalogEntry),
	}
}

// Register adds a rule. It fails with *DuplicateRuleError if the id is taken,
// and with a descriptive error if the definition is incomplete or its option
// schema does not compile.
func (c *Catalog) Register(def RuleDef) error {
	if def.ID == "" {
		return errors.New("rule has no id")
	}
	if !def.Category.Valid() {
		return fmt.Errorf("rule %q: unknown category %q", def.ID, def.Category)
	}
	if def.Check == nil {
		return fmt.Errorf("rule %q: no check function", def.ID)
	}
	if def.Source == "" {
		def.Source = "builtin"
	}

	var sch *schema.Schema
	if def.OptionSchema != "" {
		var err error
		sch, err = schema.Compile(def.ID+".options.json", def.OptionSchema)
		if err != nil {
			return fmt.Errorf("rule %q: %w", def.ID, err)
		}
		if len(def.DefaultOptions) > 0 {
			violations, err := sch.Validate(def.DefaultOptions)
			if err != nil {
				return fmt.Errorf("rule %q: %w", def.ID, err)
			}
			if len(violations) > 0 {
				return fmt.Errorf("rule %q: default options do not match schema: %s", def.ID, violations[0])
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.rules[def.ID]; ok {
		return &DuplicateRuleError{ID: def.ID, Source: def.Source, ExistingSource: existing.def.Source}
	}
	c.rules[def.ID] = catalogEntry{def: def, schema: sch}
	c.byCategory = nil
	return nil
}

// MustRegister is like Register but panics on error.
func (c *Catalog) MustRegister(def RuleDef) {
	if err := c.Register(def); err != nil {
		panic(err)
	}
}

// Get returns a rule's metadata.
func (c *Catalog) Get(id string) (core.RuleInfo, bool) {
	def, ok := c.GetRule(id)
	if !ok {
		return core.RuleInfo{}, false
	}
	return def.Info(), true
}

// GetRule returns a rule's full definition including its check.
func (c *Catalog) GetRule(id string) (RuleDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.rules[id]
	return e.def, ok
}

// Exists reports whether a rule id is registered.
func (c *Catalog) Exists(id string) bool {
	_, ok := c.GetRule(id)
	return ok
}

// ByCategory returns the rules of a category sorted by id.
func (c *Catalog) ByCategory(cat core.Category) []RuleDef {
	c.mu.RLock()
	if c.byCategory != nil {
		rules := c.byCategory[cat]
		c.mu.RUnlock()
		return cloneDefs(rules)
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.byCategory == nil {
		index := make(map[core.Category][]RuleDef)
		for _, e := range c.rules {
			index[e.def.Category] = append(index[e.def.Category], e.def)
		}
		for _, defs := range index {
			sortDefs(defs)
		}
		c.byCategory = index
	}
	return cloneDefs(c.byCategory[cat])
}

// RulesForValidator maps a validator id such as "skills" to its category and
// returns that category's rules. Unknown validator ids yield no rules.
func (c *Catalog) RulesForValidator(validatorID string) []RuleDef {
	cat, ok := core.CategoryForValidator(validatorID)
	if !ok {
		return []RuleDef{}
	}
	return c.ByCategory(cat)
}

// All returns every rule sorted by id.
func (c *Catalog) All() []RuleDef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	defs := make([]RuleDef, 0, len(c.rules))
	for _, e := range c.rules {
		defs = append(defs, e.def)
	}
	sortDefs(defs)
	return defs
}

// Count returns the number of registered rules.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rules)
}

// ValidateOptions checks an options object against the rule's schema.
// Rules without a schema accept anything. Unknown ids are an error.
func (c *Catalog) ValidateOptions(id string, opts map[string]any) ([]schema.Violation, error) {
	c.mu.RLock()
	e, ok := c.rules[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown rule %q", id)
	}
	if e.schema == nil {
		return nil, nil
	}
	if opts == nil {
		opts = map[string]any{}
	}
	return e.schema.Validate(opts)
}

func sortDefs(defs []RuleDef) {
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
}

func cloneDefs(defs []RuleDef) []RuleDef {
	out := make([]RuleDef, len(defs))
	copy(out, defs)
	return out
}
