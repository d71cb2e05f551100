package tools

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/mcptest"
	"github.com/spf13/cobra"

	"github.com/gakonst/clap-mcp/lib/schema"
)

// testCommand is the typed command value for the fixture tree; Name selects
// which of the field groups is meaningful.
type testCommand struct {
	Name string

	A, B              float64
	Dividend, Divisor float64

	Greet   string
	Excited bool

	Text     string
	Optional string

	Input, Output string
	Verbose       bool
}

// newTestTree mirrors the calculator example: named-flag commands, a
// positional command, and a command mixing positionals with a flag.
func newTestTree() *cobra.Command {
	root := &cobra.Command{Use: "calc"}

	add := &cobra.Command{Use: "add", Short: "Add two numbers"}
	add.Flags().Float64("a", 0, "First number")
	add.Flags().Float64("b", 0, "Second number")
	mustMarkRequired(add, "a", "b")

	divide := &cobra.Command{Use: "divide", Short: "Divide two numbers"}
	divide.Flags().Float64("dividend", 0, "Dividend")
	divide.Flags().Float64("divisor", 0, "Divisor")
	mustMarkRequired(divide, "dividend", "divisor")

	hello := &cobra.Command{Use: "hello", Short: "Say hello to someone"}
	hello.Flags().String("name", "", "Name to greet")
	hello.Flags().Bool("excited", false, "Use enthusiastic greeting")
	mustMarkRequired(hello, "name")

	fromUTF8 := &cobra.Command{Use: "from-utf8", Short: "Convert text to hex"}
	schema.Positionals(fromUTF8,
		schema.Positional{Name: "text", Help: "The text to convert", Required: true},
		schema.Positional{Name: "optional", Help: "Optional second value"},
	)

	mixed := &cobra.Command{Use: "mixed", Short: "Mix positionals and flags"}
	mixed.Flags().Bool("verbose", false, "Verbose output")
	schema.Positionals(mixed,
		schema.Positional{Name: "input", Help: "Input file", Required: true},
		schema.Positional{Name: "output", Help: "Output file", Required: true},
	)

	root.AddCommand(add, divide, hello, fromUTF8, mixed)

	return root
}

func mustMarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func bindTestCommand(cmd *cobra.Command, args []string) (testCommand, error) {
	c := testCommand{Name: cmd.Name()}
	flags := cmd.Flags()

	var err error

	switch c.Name {
	case "add":
		if c.A, err = flags.GetFloat64("a"); err != nil {
			return c, err
		}

		c.B, err = flags.GetFloat64("b")

	case "divide":
		if c.Dividend, err = flags.GetFloat64("dividend"); err != nil {
			return c, err
		}

		c.Divisor, err = flags.GetFloat64("divisor")

	case "hello":
		if c.Greet, err = flags.GetString("name"); err != nil {
			return c, err
		}

		c.Excited, err = flags.GetBool("excited")

	case "from-utf8":
		c.Text = args[0]
		if len(args) > 1 {
			c.Optional = args[1]
		}

	case "mixed":
		c.Input, c.Output = args[0], args[1]
		c.Verbose, err = flags.GetBool("verbose")

	default:
		err = fmt.Errorf("unsupported subcommand %q", c.Name)
	}

	return c, err
}

func executeTestCommand(c testCommand) (string, error) {
	switch c.Name {
	case "add":
		return fmt.Sprintf("%v + %v = %v", c.A, c.B, c.A+c.B), nil
	case "divide":
		if c.Divisor == 0 {
			return "", errors.New("Division by zero")
		}

		return fmt.Sprintf("%v / %v = %v", c.Dividend, c.Divisor, c.Dividend/c.Divisor), nil
	case "hello":
		if c.Excited {
			return fmt.Sprintf("Hello, %s!!!", c.Greet), nil
		}

		return fmt.Sprintf("Hello, %s.", c.Greet), nil
	case "from-utf8":
		return fmt.Sprintf("0x%x (optional: %q)", c.Text, c.Optional), nil
	case "mixed":
		return fmt.Sprintf("Input: %s, Output: %s, Verbose: %v", c.Input, c.Output, c.Verbose), nil
	default:
		return "", fmt.Errorf("unsupported command %q", c.Name)
	}
}

func newTestTools(handler Handler[testCommand]) *Tools[testCommand] {
	return New(schema.NewAdapter(newTestTree, bindTestCommand), handler)
}

func startServer(t *testing.T, tools *Tools[testCommand]) *mcptest.Server {
	t.Helper()

	srv, err := mcptest.NewServer(t, tools.ServerTools()...)
	if err != nil {
		t.Fatalf("failed to start test server: %v", err)
	}

	t.Cleanup(srv.Close)

	return srv
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	var b strings.Builder

	for _, c := range res.Content {
		tc, ok := mcp.AsTextContent(c)
		if !ok {
			t.Fatalf("content is not text: %T", c)
		}

		b.WriteString(tc.Text)
	}

	return b.String()
}

func TestListTools(t *testing.T) {
	srv := startServer(t, newTestTools(executeTestCommand))

	res, err := srv.Client().ListTools(t.Context(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	if len(res.Tools) != 5 {
		t.Fatalf("ListTools returned %d tools, want 5", len(res.Tools))
	}

	wantRequired := map[string][]string{
		"add":       {"a", "b"},
		"divide":    {"dividend", "divisor"},
		"hello":     {"name"},
		"from-utf8": {"text"},
		"mixed":     {"input", "output"},
	}

	for _, tool := range res.Tools {
		want, ok := wantRequired[tool.Name]
		if !ok {
			t.Errorf("unexpected tool %q", tool.Name)
			continue
		}

		got := tool.InputSchema.Required
		if len(got) != len(want) {
			t.Errorf("tool %q required = %v, want %v", tool.Name, got, want)
			continue
		}

		for i := range want {
			if got[i] != want[i] {
				t.Errorf("tool %q required = %v, want %v", tool.Name, got, want)
				break
			}
		}
	}
}

func TestCallTool(t *testing.T) {
	tests := []struct {
		name              string
		tool              string
		args              map[string]any
		want              string
		wantError         bool
		wantErrorResponse bool
	}{
		{
			name: "add",
			tool: "add",
			args: map[string]any{"a": 10, "b": 32},
			want: "10 + 32 = 42",
		},
		{
			name: "divide",
			tool: "divide",
			args: map[string]any{"dividend": 10, "divisor": 4},
			want: "10 / 4 = 2.5",
		},
		{
			name:              "divide by zero is a handler error",
			tool:              "divide",
			args:              map[string]any{"dividend": 10, "divisor": 0},
			want:              "Division by zero",
			wantErrorResponse: true,
		},
		{
			name: "boolean flag set",
			tool: "hello",
			args: map[string]any{"name": "Test", "excited": true},
			want: "Hello, Test!!!",
		},
		{
			name: "boolean flag false means unset",
			tool: "hello",
			args: map[string]any{"name": "Test", "excited": false},
			want: "Hello, Test.",
		},
		{
			name: "required positional only",
			tool: "from-utf8",
			args: map[string]any{"text": "hello"},
			want: `0x68656c6c6f (optional: "")`,
		},
		{
			name: "both positionals",
			tool: "from-utf8",
			args: map[string]any{"text": "hello", "optional": "world"},
			want: `0x68656c6c6f (optional: "world")`,
		},
		{
			name: "positionals mixed with flags",
			tool: "mixed",
			args: map[string]any{"input": "foo.txt", "output": "bar.txt", "verbose": true},
			want: "Input: foo.txt, Output: bar.txt, Verbose: true",
		},
		{
			name:      "missing required arguments",
			tool:      "add",
			args:      map[string]any{},
			wantError: true,
		},
		{
			name:      "missing one required argument",
			tool:      "add",
			args:      map[string]any{"a": 5},
			wantError: true,
		},
		{
			name:      "unknown tool",
			tool:      "bogus",
			args:      map[string]any{},
			wantError: true,
		},
	}

	srv := startServer(t, newTestTools(executeTestCommand))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req mcp.CallToolRequest
			req.Params.Name = tt.tool
			req.Params.Arguments = tt.args

			result, err := srv.Client().CallTool(t.Context(), req)

			if gotErr := err != nil; gotErr != tt.wantError {
				t.Fatalf("CallTool error = %v, want error: %v", err, tt.wantError)
			}

			if err != nil {
				return
			}

			if result.IsError != tt.wantErrorResponse {
				t.Errorf("IsError = %v, want %v", result.IsError, tt.wantErrorResponse)
			}

			if got := resultText(t, result); got != tt.want {
				t.Errorf("result text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCallToolWithoutHandler(t *testing.T) {
	srv := startServer(t, newTestTools(nil))

	var req mcp.CallToolRequest
	req.Params.Name = "hello"
	req.Params.Arguments = map[string]any{"name": "Test"}

	result, err := srv.Client().CallTool(t.Context(), req)
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}

	if !result.IsError {
		t.Error("expected an error-flagged result without a handler")
	}

	if got := resultText(t, result); got != noHandlerMessage {
		t.Errorf("result text = %q, want %q", got, noHandlerMessage)
	}
}

func TestCallToolConversionFailure(t *testing.T) {
	failing := New(schema.NewAdapter(newTestTree,
		func(_ *cobra.Command, _ []string) (testCommand, error) {
			return testCommand{}, errors.New("validator rejected value")
		}),
		executeTestCommand,
	)

	srv := startServer(t, failing)

	var req mcp.CallToolRequest
	req.Params.Name = "hello"
	req.Params.Arguments = map[string]any{"name": "Test"}

	if _, err := srv.Client().CallTool(t.Context(), req); err == nil {
		t.Fatal("expected a protocol-level error for a conversion failure")
	}
}
