package tools

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// Synthetic program name seeding every rebuilt token sequence. The parser
// discards it, so the value is arbitrary.
const argv0 = "mcp"

// commandLine rebuilds the argv token sequence a human would have typed for
// one tool call: program name, subcommand name, positional values in index
// order, then named arguments as --flag tokens.
//
// An argument whose property is missing from the descriptor (a stale client,
// or an unknown tool) is treated as named. Named tokens are emitted in
// sorted-name order purely for determinism; the parser accepts named
// arguments in any order.
func commandLine(tool mcp.Tool, arguments map[string]any) []string {
	tokens := []string{argv0, tool.Name}

	type positional struct {
		name  string
		value any
		pos   int
	}

	var positionals []positional

	named := make(map[string]any)

	for name, value := range arguments {
		prop, _ := tool.InputSchema.Properties[name].(map[string]any)
		if prop[propPositional] != true {
			named[name] = value
			continue
		}

		pos, ok := asInt(prop[propPosition])
		if !ok {
			pos = len(positionals)
		}

		positionals = append(positionals, positional{name: name, value: value, pos: pos})
	}

	slices.SortStableFunc(positionals, func(a, b positional) int {
		if c := cmp.Compare(a.pos, b.pos); c != 0 {
			return c
		}

		return cmp.Compare(a.name, b.name)
	})

	for _, p := range positionals {
		tokens = append(tokens, argumentText(p.value))
	}

	for _, name := range slices.Sorted(maps.Keys(named)) {
		if b, ok := named[name].(bool); ok {
			// An absent boolean flag means "not set"; only true emits a token.
			if b {
				tokens = append(tokens, "--"+name)
			}

			continue
		}

		tokens = append(tokens, "--"+name, argumentText(named[name]))
	}

	return tokens
}

// argumentText renders one JSON argument value as the text a user would have
// typed. Non-scalar values fall back to their JSON rendering.
func argumentText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(b)
	}
}

func asInt(v any) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}

		return int(n), true
	default:
		return 0, false
	}
}
