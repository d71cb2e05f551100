// Command calculator is the reference embedding: a small calculator CLI
// whose subcommands double as MCP tools. Run it normally for CLI behavior,
// with --mcp for a stdio MCP session, or with --mcp --mcp-addr for a
// long-running SSE server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	clapmcp "github.com/gakonst/clap-mcp"
	"github.com/gakonst/clap-mcp/lib/build"
	"github.com/gakonst/clap-mcp/lib/schema"
)

func main() {
	// Optional; configuration works from plain environment variables too.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(log).ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand(log *logrus.Logger) *cobra.Command {
	root := newCommands()

	// CLI mode: each subcommand parses, binds, and executes in-process.
	for _, cmd := range root.Commands() {
		cmd.RunE = runCLI
	}

	root.Args = cobra.NoArgs
	root.RunE = func(cmd *cobra.Command, _ []string) error {
		return runServer(cmd, log)
	}

	root.Flags().Bool("mcp", false, "Run as an MCP server instead of a CLI")
	root.Flags().String("mcp-addr", "", "Serve MCP over SSE on this address instead of stdio")
	root.PersistentFlags().String("log-file", "", "Write logs to this file with rotation")

	viper.SetEnvPrefix("calculator")
	viper.AutomaticEnv()

	_ = viper.BindPFlag("mcp", root.Flags().Lookup("mcp"))
	_ = viper.BindPFlag("mcp_addr", root.Flags().Lookup("mcp-addr"))
	_ = viper.BindPFlag("log_file", root.PersistentFlags().Lookup("log-file"))

	root.AddCommand(newVersionCommand())

	return root
}

func runCLI(cmd *cobra.Command, args []string) error {
	value, err := bindCommand(cmd, args)
	if err != nil {
		return err
	}

	out, err := execute(value)
	if err != nil {
		return err
	}

	fmt.Println(out)

	return nil
}

func runServer(cmd *cobra.Command, log *logrus.Logger) error {
	if !viper.GetBool("mcp") {
		return cmd.Help()
	}

	if path := viper.GetString("log_file"); path != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		})
	}

	adapter := schema.NewAdapter(newCommands, bindCommand)

	srv := clapmcp.New("calculator", adapter,
		clapmcp.WithHandler(execute),
		clapmcp.WithLogger[Command](log),
	)

	if addr := viper.GetString("mcp_addr"); addr != "" {
		return srv.ServeSSE(cmd.Context(), addr)
	}

	return srv.ServeStdio(cmd.Context())
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Printf("calculator %s (%s, built %s)\n", build.Version(), build.Commit(), build.Date())

			return nil
		},
	}
}
