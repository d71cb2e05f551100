// Package tools bridges a schema.Adapter into MCP tools. It extracts one
// tool descriptor per visible subcommand, rebuilds an argv token sequence
// from each tool call's argument map, re-parses it against the command tree,
// and dispatches the resulting typed command value to a registered handler.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gakonst/clap-mcp/lib/schema"
)

// Handler executes one typed command value. The returned string becomes the
// tool result text; a non-nil error becomes an error-flagged tool result
// carrying the error text verbatim.
type Handler[T any] func(T) (string, error)

// noHandlerMessage is returned as an error-flagged result when no handler is
// registered. Listing tools still works without a handler, so this is not a
// protocol-level error.
const noHandlerMessage = "No command handler provided. The CLI must provide a handler function to execute commands in MCP mode."

// Tools exposes a command tree as MCP tools. The adapter and handler are
// fixed at construction; concurrent sessions share one Tools value without
// locking.
type Tools[T any] struct {
	adapter *schema.Adapter[T]
	handler Handler[T]
}

// New creates Tools over adapter. handler may be nil, in which case every
// call returns an error-flagged result while listing continues to work.
func New[T any](adapter *schema.Adapter[T], handler Handler[T]) *Tools[T] {
	return &Tools[T]{adapter: adapter, handler: handler}
}

// List returns the tool descriptors, one per visible subcommand, in tree
// order. The list is recomputed from the command tree on every call.
func (t *Tools[T]) List() []mcp.Tool {
	return extractTools(t.adapter.Commands())
}

// ServerTools pairs every descriptor with the call handler.
func (t *Tools[T]) ServerTools() []server.ServerTool {
	list := t.List()

	serverTools := make([]server.ServerTool, 0, len(list))
	for _, tool := range list {
		serverTools = append(serverTools, server.ServerTool{Tool: tool, Handler: t.call})
	}

	return serverTools
}

// AddTo registers all tools with the provided MCPServer.
func (t *Tools[T]) AddTo(srv *server.MCPServer) {
	srv.AddTools(t.ServerTools()...)
}

// call handles one tools/call request. Parse and conversion failures are
// returned as errors, which the server surfaces as protocol-level errors;
// handler failures become error-flagged results.
func (t *Tools[T]) call(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.Params.Name

	tool, ok := t.find(name)
	if !ok {
		// The server rejects unregistered tool names before this handler
		// runs; a bare descriptor keeps the stale-listing path total.
		tool = mcp.Tool{Name: name}
	}

	tokens := commandLine(tool, req.GetArguments())

	match, err := t.adapter.Parse(tokens)
	if err != nil {
		return nil, err
	}

	value, err := t.adapter.Convert(match)
	if err != nil {
		return nil, err
	}

	if t.handler == nil {
		return mcp.NewToolResultError(noHandlerMessage), nil
	}

	out, err := t.handler(value)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(out), nil
}

func (t *Tools[T]) find(name string) (mcp.Tool, bool) {
	for _, tool := range t.List() {
		if tool.Name == name {
			return tool, true
		}
	}

	return mcp.Tool{}, false
}
