package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/windlant/letter-counter/internal/config"
	"github.com/windlant/letter-counter/internal/logging"
	"github.com/windlant/letter-counter/internal/server"
	"github.com/windlant/letter-counter/internal/tools/builtin"
)

// 启动 MCP 本地服务器：stdio 模式下从标准输入逐行读取请求，处理后将响应写回标准输出；
// websocket 模式下监听 server.host:server.port。
func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "mcp_server_local",
		Short:         "Serve the letter-counting tools",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to a .yaml or .toml config file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout carries the protocol in stdio mode, so logs go to stderr.
	logger := logging.New(cfg.Log.Level, os.Stderr)

	policy, err := cfg.Server.DuplicatePolicy()
	if err != nil {
		return err
	}
	reg, err := builtin.NewRegistry(policy)
	if err != nil {
		return fmt.Errorf("register tools: %w", err)
	}

	srv := server.New(cfg.Server.Name, reg, logger)
	logger.Info("server configured",
		"name", cfg.Server.Name,
		"transport", cfg.Server.Transport,
		"port", cfg.Server.Port,
		"on_duplicate_tools", reg.Policy(),
		"tools", len(reg.ListAll()))

	switch cfg.Server.Transport {
	case config.TransportWebSocket:
		return srv.ListenAndServe(ctx, cfg.Server.Addr())
	default:
		return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
	}
}
