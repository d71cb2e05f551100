// Package clapmcp exposes a Cobra command tree as MCP tools.
//
// Every visible subcommand becomes one tool whose input schema mirrors the
// subcommand's flags and declared positional arguments. Incoming tool calls
// are translated back into an argv token sequence, re-parsed against a fresh
// command tree, converted into a typed command value, and handed to a
// caller-supplied handler. The handler's string result (or error) becomes
// the tool result.
//
// A minimal embedding:
//
//	adapter := schema.NewAdapter(newCommands, bindCommand)
//	srv := clapmcp.New("calculator", adapter,
//		clapmcp.WithHandler(execute))
//	err := srv.ServeStdio(ctx)
//
// ServeSSE runs the same tool set as a long-lived network server instead of
// a single stdio session.
package clapmcp
