package clapmcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/gakonst/clap-mcp/lib/build"
	"github.com/gakonst/clap-mcp/lib/schema"
	"github.com/gakonst/clap-mcp/lib/tools"
)

// drainTimeout bounds how long ServeSSE waits for open sessions after its
// context is cancelled.
const drainTimeout = 10 * time.Second

// Server serves one command tree as MCP tools over stdio or SSE. The handler
// reference is fixed at construction and shared read-only by all sessions.
type Server[T any] struct {
	name    string
	version string
	tools   *tools.Tools[T]
	log     *logrus.Logger
}

// Option configures a Server.
type Option[T any] func(*serverConfig[T])

type serverConfig[T any] struct {
	version string
	handler tools.Handler[T]
	log     *logrus.Logger
}

// WithHandler registers the function that executes parsed command values.
// Without a handler, listing tools works but every call returns an
// error-flagged result.
func WithHandler[T any](h tools.Handler[T]) Option[T] {
	return func(c *serverConfig[T]) { c.handler = h }
}

// WithVersion overrides the advertised server version, which defaults to
// build.Version().
func WithVersion[T any](v string) Option[T] {
	return func(c *serverConfig[T]) { c.version = v }
}

// WithLogger sets the logger used for lifecycle messages. The default logs
// to stderr.
func WithLogger[T any](l *logrus.Logger) Option[T] {
	return func(c *serverConfig[T]) { c.log = l }
}

// New creates a Server named name over the command tree behind adapter.
func New[T any](name string, adapter *schema.Adapter[T], opts ...Option[T]) *Server[T] {
	cfg := serverConfig[T]{version: build.Version()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.log == nil {
		cfg.log = logrus.New()
		cfg.log.SetOutput(os.Stderr)
	}

	return &Server[T]{
		name:    name,
		version: cfg.version,
		tools:   tools.New(adapter, cfg.handler),
		log:     cfg.log,
	}
}

// Tools returns the tool registry backing the server, mainly so embedders
// can list descriptors or mount them on their own MCPServer.
func (s *Server[T]) Tools() *tools.Tools[T] {
	return s.tools
}

func (s *Server[T]) mcpServer() *mcpserver.MCPServer {
	srv := mcpserver.NewMCPServer(s.name, s.version,
		mcpserver.WithRecovery(),
	)
	s.tools.AddTo(srv)

	return srv
}

// ServeStdio runs a single MCP session over stdin/stdout until the stream
// closes or ctx is cancelled.
func (s *Server[T]) ServeStdio(ctx context.Context) error {
	stdio := mcpserver.NewStdioServer(s.mcpServer())
	stdio.SetErrorLogger(log.New(s.log.Writer(), "", 0))

	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio session: %w", err)
	}

	return nil
}

// ServeSSE binds addr (":0" picks a free port), logs the effective
// endpoints, and serves MCP sessions over SSE until ctx is cancelled. On
// cancellation the listener stops accepting sessions and in-flight calls are
// allowed to finish before ServeSSE returns. A bind failure is returned
// immediately and never retried.
func (s *Server[T]) ServeSSE(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}

	baseURL := "http://" + ln.Addr().String()

	sse := mcpserver.NewSSEServer(s.mcpServer(),
		mcpserver.WithBaseURL(baseURL),
		mcpserver.WithSSEEndpoint("/sse"),
		mcpserver.WithMessageEndpoint("/message"),
	)

	httpServer := &http.Server{Handler: sse}

	s.log.WithField("address", ln.Addr().String()).Info("MCP server listening")
	s.log.Infof("SSE endpoint: %s/sse", baseURL)
	s.log.Infof("Message endpoint: %s/message", baseURL)

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve %s: %w", baseURL, err)

	case <-ctx.Done():
	}

	s.log.Info("Shutting down MCP server")

	// Stop accepting sessions and drain in-flight calls. Open event streams
	// never go idle, so after the drain window any remaining ones are closed.
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if err := httpServer.Shutdown(drainCtx); err != nil {
		return httpServer.Close()
	}

	return nil
}
