// Package schema wraps JSON Schema compilation and validation.
//
// Schemas are compiled from in-memory documents only; nothing is fetched from
// the network. Violations are flattened into a list of (path, message) pairs
// so callers can report each one as a separate issue.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseURL is the namespace in-memory schemas are registered under.
const BaseURL = "https://claudelint.dev/schemas/"

var printer = message.NewPrinter(language.English)

// Schema is a compiled JSON Schema.
type Schema struct {
	name string
	sch  *jsonschema.Schema
}

// Violation is one failed schema constraint.
type Violation struct {
	// Path is a JSON pointer into the instance, "" for the root.
	Path    string
	Message string
}

// String renders the violation as "path: message", or just the message at the root.
func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Compile parses and compiles a schema document.
func Compile(name, src string) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	url := BaseURL + name
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, sch: sch}, nil
}

// MustCompile is like Compile but panics on error. Used for embedded schemas.
func MustCompile(name, src string) *Schema {
	s, err := Compile(name, src)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the name the schema was compiled under.
func (s *Schema) Name() string {
	return s.name
}

// Validate checks a value against the schema and returns every violation.
// The value is normalized through a JSON round-trip first, so Go maps,
// structs and native numbers are accepted. A nil slice means the value is valid.
func (s *Schema) Validate(v any) ([]Violation, error) {
	inst, err := normalize(v)
	if err != nil {
		return nil, err
	}

	err = s.sch.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("validate against %s: %w", s.name, err)
	}

	var out []Violation
	collect(verr, &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// collect walks the error tree and keeps the leaves, which carry the
// specific failing keyword.
func collect(verr *jsonschema.ValidationError, out *[]Violation) {
	if len(verr.Causes) == 0 {
		*out = append(*out, Violation{
			Path:    Pointer(verr.InstanceLocation),
			Message: verr.ErrorKind.LocalizedString(printer),
		})
		return
	}
	for _, cause := range verr.Causes {
		collect(cause, out)
	}
}

// Pointer builds a JSON pointer from instance location tokens.
func Pointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteByte('/')
		tok = strings.ReplaceAll(tok, "~", "~0")
		tok = strings.ReplaceAll(tok, "/", "~1")
		b.WriteString(tok)
	}
	return b.String()
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode instance: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode instance: %w", err)
	}
	return inst, nil
}
