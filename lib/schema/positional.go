package schema

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// Cobra commands declare named flags but have no structured notion of
// positional arguments, so the adapter carries its own declarations. The
// data rides in cobra.Command.Annotations, but only through the typed
// Positionals/PositionalsOf accessors; nothing outside this file touches the
// encoding.

const positionalsKey = "schema_positionals"

// Positional declares one positional argument of a subcommand. Its index is
// the declaration order passed to Positionals.
type Positional struct {
	Name     string `json:"name"`
	Help     string `json:"help,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// Positionals attaches positional argument declarations to cmd. Required
// positionals must precede optional ones. When cmd has no Args validator of
// its own, one is installed that enforces the declared minimum and maximum
// count, so an out-of-range token sequence fails at parse time.
func Positionals(cmd *cobra.Command, args ...Positional) {
	b, err := json.Marshal(args)
	if err != nil {
		// Positional contains only strings and bools; Marshal cannot fail.
		panic(err)
	}

	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[positionalsKey] = string(b)

	if cmd.Args == nil {
		required := 0
		for _, a := range args {
			if a.Required {
				required++
			}
		}

		cmd.Args = cobra.RangeArgs(required, len(args))
	}
}

// PositionalsOf returns the positional arguments declared on cmd, in
// declaration order. A command with no declarations yields nil.
func PositionalsOf(cmd *cobra.Command) []Positional {
	raw, ok := cmd.Annotations[positionalsKey]
	if !ok {
		return nil
	}

	var args []Positional
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil
	}

	return args
}
