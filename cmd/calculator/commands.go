package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gakonst/clap-mcp/lib/schema"
)

// Command is the typed value produced by parsing one calculator invocation.
type Command interface {
	isCommand()
}

type Add struct{ A, B float64 }

type Subtract struct{ X, Y float64 }

type Multiply struct{ Value1, Value2 float64 }

type Divide struct{ Dividend, Divisor float64 }

type Hello struct {
	Name    string
	Excited bool
}

// FromUTF8 carries one required and one optional positional argument.
type FromUTF8 struct {
	Text     string
	Optional *string
}

func (Add) isCommand()      {}
func (Subtract) isCommand() {}
func (Multiply) isCommand() {}
func (Divide) isCommand()   {}
func (Hello) isCommand()    {}
func (FromUTF8) isCommand() {}

// newCommands builds a fresh calculator command tree. The tree carries only
// schema: no Run hooks, so the same constructor serves both the CLI and the
// MCP adapter.
func newCommands() *cobra.Command {
	root := &cobra.Command{
		Use:   "calculator",
		Short: "A simple calculator CLI that can also run as an MCP server",
	}

	add := &cobra.Command{Use: "add", Short: "Add two numbers"}
	add.Flags().Float64("a", 0, "First number")
	add.Flags().Float64("b", 0, "Second number")
	markRequired(add, "a", "b")

	subtract := &cobra.Command{Use: "subtract", Short: "Subtract two numbers"}
	subtract.Flags().Float64("x", 0, "First number")
	subtract.Flags().Float64("y", 0, "Second number")
	markRequired(subtract, "x", "y")

	multiply := &cobra.Command{Use: "multiply", Short: "Multiply two numbers"}
	multiply.Flags().Float64("value1", 0, "First number")
	multiply.Flags().Float64("value2", 0, "Second number")
	markRequired(multiply, "value1", "value2")

	divide := &cobra.Command{Use: "divide", Short: "Divide two numbers"}
	divide.Flags().Float64("dividend", 0, "Dividend")
	divide.Flags().Float64("divisor", 0, "Divisor")
	markRequired(divide, "dividend", "divisor")

	hello := &cobra.Command{Use: "hello", Short: "Say hello to someone"}
	hello.Flags().String("name", "", "Name to greet")
	hello.Flags().Bool("excited", false, "Use enthusiastic greeting")
	markRequired(hello, "name")

	fromUTF8 := &cobra.Command{Use: "from-utf8", Short: "Convert text to its hex byte representation"}
	schema.Positionals(fromUTF8,
		schema.Positional{Name: "text", Help: "The text to convert", Required: true},
		schema.Positional{Name: "optional", Help: "Optional second value"},
	)

	root.AddCommand(add, subtract, multiply, divide, hello, fromUTF8)

	return root
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

// bindCommand converts a matched subcommand into its typed Command value.
func bindCommand(cmd *cobra.Command, args []string) (Command, error) {
	flags := cmd.Flags()

	switch cmd.Name() {
	case "add":
		a, err := flags.GetFloat64("a")
		if err != nil {
			return nil, err
		}

		b, err := flags.GetFloat64("b")
		if err != nil {
			return nil, err
		}

		return Add{A: a, B: b}, nil

	case "subtract":
		x, err := flags.GetFloat64("x")
		if err != nil {
			return nil, err
		}

		y, err := flags.GetFloat64("y")
		if err != nil {
			return nil, err
		}

		return Subtract{X: x, Y: y}, nil

	case "multiply":
		value1, err := flags.GetFloat64("value1")
		if err != nil {
			return nil, err
		}

		value2, err := flags.GetFloat64("value2")
		if err != nil {
			return nil, err
		}

		return Multiply{Value1: value1, Value2: value2}, nil

	case "divide":
		dividend, err := flags.GetFloat64("dividend")
		if err != nil {
			return nil, err
		}

		divisor, err := flags.GetFloat64("divisor")
		if err != nil {
			return nil, err
		}

		return Divide{Dividend: dividend, Divisor: divisor}, nil

	case "hello":
		name, err := flags.GetString("name")
		if err != nil {
			return nil, err
		}

		excited, err := flags.GetBool("excited")
		if err != nil {
			return nil, err
		}

		return Hello{Name: name, Excited: excited}, nil

	case "from-utf8":
		c := FromUTF8{Text: args[0]}
		if len(args) > 1 {
			c.Optional = &args[1]
		}

		return c, nil

	default:
		return nil, fmt.Errorf("unsupported subcommand %q", cmd.Name())
	}
}

// execute runs one Command and returns its output text.
func execute(cmd Command) (string, error) {
	switch c := cmd.(type) {
	case Add:
		return fmt.Sprintf("%v + %v = %v", c.A, c.B, c.A+c.B), nil
	case Subtract:
		return fmt.Sprintf("%v - %v = %v", c.X, c.Y, c.X-c.Y), nil
	case Multiply:
		return fmt.Sprintf("%v * %v = %v", c.Value1, c.Value2, c.Value1*c.Value2), nil
	case Divide:
		if c.Divisor == 0 {
			return "", errors.New("Division by zero")
		}

		return fmt.Sprintf("%v / %v = %v", c.Dividend, c.Divisor, c.Dividend/c.Divisor), nil
	case Hello:
		if c.Excited {
			return fmt.Sprintf("Hello, %s!!!", c.Name), nil
		}

		return fmt.Sprintf("Hello, %s.", c.Name), nil
	case FromUTF8:
		out := fmt.Sprintf("0x%x", c.Text)
		if c.Optional != nil {
			out += fmt.Sprintf(" (optional: %s)", *c.Optional)
		}

		return out, nil
	default:
		return "", fmt.Errorf("unsupported command type %T", cmd)
	}
}
