package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/sections/internal/cli"
	"github.com/aretw0/sections/internal/config"
	"github.com/aretw0/sections/pkg/adapters/mcp"
	"github.com/aretw0/sections/pkg/ports"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the sections engine as an MCP Server.
This allows AI agents to normalize documents and read templates as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		redisAddr, _ := cmd.Flags().GetString("redis")

		engine, cfg, logger, err := cli.CreateEngine(cmd.Context(), engineOptions(cmd))
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		var store ports.DocumentStore
		if redisAddr != "" {
			server := config.Default().Server
			if cfg != nil {
				server = cfg.Server
			}
			server.Redis = &config.Redis{Addr: redisAddr}
			if cfg != nil && cfg.Server.Redis != nil {
				r := *cfg.Server.Redis
				r.Addr = redisAddr
				server.Redis = &r
			}
			s, _, closeStore, err := buildStore("redis", server, logger)
			if err != nil {
				return err
			}
			defer closeStore()
			store = s
		}

		srv := mcp.NewServer(engine, store)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			slog.Info("Starting sections MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			slog.Info("Starting sections MCP Server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
				return err
			}
			slog.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("redis", "", "Redis address of stored documents (enables get_document)")
}
