// Package schema adapts a Cobra command tree into the three operations the
// MCP bridge needs: introspecting subcommands and their arguments, parsing a
// token sequence without running any command hooks, and converting a parse
// match into a typed command value.
//
// The adapter never executes RunE or any other user hook; parsing stops at
// flag and argument validation. Because pflag flag values are mutable, the
// adapter builds a fresh tree for every operation via the caller's TreeFunc.
package schema

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrInvalidArguments indicates that a token sequence did not match the
// command tree: unknown subcommand, unknown flag, bad flag value, missing
// required flag, or a failed positional-argument validation.
var ErrInvalidArguments = errors.New("invalid arguments")

// ErrConversion indicates that a token sequence matched the tree but the
// bind function could not turn the match into a typed command value.
var ErrConversion = errors.New("failed to convert subcommand")

// TreeFunc builds a fresh command tree. It is called once per introspection
// or parse, so it must not return a shared *cobra.Command.
type TreeFunc func() *cobra.Command

// BindFunc converts a matched subcommand and its positional arguments into
// the typed command value T. The flags on cmd have already been parsed and
// validated.
type BindFunc[T any] func(cmd *cobra.Command, args []string) (T, error)

// Adapter wraps a Cobra command tree behind a typed introspection and
// parsing interface.
type Adapter[T any] struct {
	tree TreeFunc
	bind BindFunc[T]
}

// NewAdapter returns an Adapter over the tree built by tree, using bind to
// produce typed command values from parse matches.
func NewAdapter[T any](tree TreeFunc, bind BindFunc[T]) *Adapter[T] {
	return &Adapter[T]{tree: tree, bind: bind}
}

// Argument describes one argument of a subcommand. Named arguments come from
// the subcommand's flag set; positional arguments from Positionals
// declarations.
type Argument struct {
	Name       string
	Help       string
	Required   bool
	Positional bool

	// Index is the zero-based position among the subcommand's positional
	// arguments. It is -1 for named arguments.
	Index int

	// TakesValue is false for flags that can appear without a value
	// (booleans). Positional arguments always take a value.
	TakesValue bool
}

// CommandInfo describes one visible subcommand.
type CommandInfo struct {
	Name      string
	Short     string
	Arguments []Argument
}

// Match is the result of a successful Parse: the matched subcommand with its
// flags populated, plus the remaining positional tokens. Args is nil when no
// positional tokens remain.
type Match struct {
	Command *cobra.Command
	Args    []string
}

// Commands returns an introspection snapshot of the tree's visible
// subcommands, in tree order. Hidden subcommands, Cobra's implicit help and
// completion commands, hidden flags, and the implicit help/version flags are
// omitted.
func (a *Adapter[T]) Commands() []CommandInfo {
	root := a.tree()

	var infos []CommandInfo

	for _, cmd := range root.Commands() {
		if !visibleCommand(cmd) {
			continue
		}

		info := CommandInfo{
			Name:  cmd.Name(),
			Short: cmd.Short,
		}

		cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
			if f.Hidden || f.Name == "help" || f.Name == "version" {
				return
			}

			info.Arguments = append(info.Arguments, Argument{
				Name:       f.Name,
				Help:       f.Usage,
				Required:   flagRequired(f),
				Index:      -1,
				TakesValue: f.NoOptDefVal == "",
			})
		})

		for i, p := range PositionalsOf(cmd) {
			info.Arguments = append(info.Arguments, Argument{
				Name:       p.Name,
				Help:       p.Help,
				Required:   p.Required,
				Positional: true,
				Index:      i,
				TakesValue: true,
			})
		}

		infos = append(infos, info)
	}

	return infos
}

// Parse matches tokens against a fresh command tree. The first token is the
// program name and is ignored, mirroring an argv slice. Parse runs flag
// parsing and argument validation only; no command hook is executed. All
// failures wrap ErrInvalidArguments.
func (a *Adapter[T]) Parse(tokens []string) (*Match, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty token sequence", ErrInvalidArguments)
	}

	root := a.tree()

	cmd, flags, err := root.Find(tokens[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	cmd.InitDefaultHelpFlag()

	if err := cmd.ParseFlags(flags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	// pflag returns an empty non-nil slice; callers expect nil when no
	// positional tokens remain.
	args := cmd.Flags().Args()
	if len(args) == 0 {
		args = nil
	}

	if err := cmd.ValidateArgs(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	if err := cmd.ValidateRequiredFlags(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	if err := cmd.ValidateFlagGroups(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	return &Match{Command: cmd, Args: args}, nil
}

// Convert turns a parse match into the typed command value. Failures wrap
// ErrConversion; they are independent of Parse and can occur even after a
// successful match.
func (a *Adapter[T]) Convert(m *Match) (T, error) {
	v, err := a.bind(m.Command, m.Args)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	return v, nil
}

func visibleCommand(cmd *cobra.Command) bool {
	if cmd.Hidden {
		return false
	}

	switch cmd.Name() {
	case "help", "completion":
		return false
	}

	return true
}

func flagRequired(f *pflag.Flag) bool {
	for _, v := range f.Annotations[cobra.BashCompOneRequiredFlag] {
		if v == "true" {
			return true
		}
	}

	return false
}
