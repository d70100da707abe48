// Package starlark loads custom lint rules written in Starlark.
//
// A rule file defines a rule dict describing the rule and a check function:
//
//	rule = {
//	    "id": "team-skill-owner",
//	    "category": "Skills",
//	    "severity": "warn",
//	    "description": "Skills must name an owner.",
//	}
//
//	def check(ctx):
//	    if "owner" not in ctx.data:
//	        ctx.report("skill has no owner", line = 1)
//
// Each loaded file becomes a lint.RuleDef. Checks run in a fresh thread with
// a bounded number of execution steps.
package starlark

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.starlark.net/starlark"
)

// toStarlark converts a decoded JSON or YAML document to a Starlark value.
// Whole floats become ints, so counts read from JSON compare and index like
// integers. Dict keys are inserted in sorted order.
func toStarlark(v any) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case string:
		return starlark.String(val), nil
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case uint64:
		return starlark.MakeUint64(val), nil
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return starlark.MakeInt64(int64(val)), nil
		}
		return starlark.Float(val), nil
	case time.Time:
		// Unquoted YAML dates decode to time.Time.
		return starlark.String(val.Format(time.RFC3339)), nil
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return listToStarlark(items)
	case []any:
		return listToStarlark(val)
	case map[string]any:
		return dictToStarlark(val)
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func listToStarlark(items []any) (starlark.Value, error) {
	elems := make([]starlark.Value, len(items))
	for i, item := range items {
		sv, err := toStarlark(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		elems[i] = sv
	}
	return starlark.NewList(elems), nil
}

func dictToStarlark(m map[string]any) (starlark.Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dict := starlark.NewDict(len(m))
	for _, k := range keys {
		sv, err := toStarlark(m[k])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		if err := dict.SetKey(starlark.String(k), sv); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
	}
	return dict, nil
}

// fromStarlark converts a value from a rule file (its options_schema or
// default_options) to the Go form the lint package works with. Ints that do
// not fit in int64 are kept as their decimal string.
func fromStarlark(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		if i, ok := val.Int64(); ok {
			return i, nil
		}
		return val.String(), nil
	case starlark.Float:
		return float64(val), nil
	case starlark.Indexable:
		// Lists and tuples.
		out := make([]any, val.Len())
		for i := range val.Len() {
			gv, err := fromStarlark(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = gv
		}
		return out, nil
	case *starlark.Dict:
		out := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be a string, got %s", item[0].Type())
			}
			gv, err := fromStarlark(item[1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[string(key)] = gv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", v.Type())
	}
}
