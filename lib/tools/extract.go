package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gakonst/clap-mcp/lib/schema"
)

// Vendor extension keys on property schemas. They carry positional metadata
// from the descriptor to the invocation marshaller; generic MCP clients
// ignore them.
const (
	propPositional = "x-positional"
	propPosition   = "x-position"
)

// extractTools produces one tool descriptor per subcommand, in tree order.
// Every value-bearing argument is exposed as "string" regardless of its
// parsed Go type; only zero-arity flags become "boolean". This collapse is
// deliberate: clients pass values as text and the command tree re-parses
// them into their real types.
func extractTools(commands []schema.CommandInfo) []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(commands))

	for _, cmd := range commands {
		properties := make(map[string]any, len(cmd.Arguments))

		var required []string

		for _, arg := range cmd.Arguments {
			prop := map[string]any{"type": "string"}
			if !arg.TakesValue {
				prop["type"] = "boolean"
			}

			if arg.Help != "" {
				prop["description"] = arg.Help
			}

			if arg.Positional {
				prop[propPositional] = true
				prop[propPosition] = arg.Index
			}

			properties[arg.Name] = prop

			if arg.Required {
				required = append(required, arg.Name)
			}
		}

		tools = append(tools, mcp.Tool{
			Name:        cmd.Name,
			Description: cmd.Short,
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		})
	}

	return tools
}
