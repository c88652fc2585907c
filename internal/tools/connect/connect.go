// Package connect turns client configuration into a tools.Dialer.
package connect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/windlant/letter-counter/internal/config"
	"github.com/windlant/letter-counter/internal/tools"
	"github.com/windlant/letter-counter/internal/tools/builtin"
	"github.com/windlant/letter-counter/internal/tools/local"
	"github.com/windlant/letter-counter/internal/tools/stdio"
	"github.com/windlant/letter-counter/internal/tools/ws"
)

// NewDialer picks the transport named by cfg.Client.Transport. With tools
// disabled every connection is a tools.NoopToolClient.
func NewDialer(cfg *config.Config, logger *slog.Logger) (tools.Dialer, error) {
	logger = logger.With("component", "connect")

	if !cfg.Tools.Enabled {
		logger.Info("tool calling disabled")
		return func(context.Context) (tools.ToolClient, error) {
			return &tools.NoopToolClient{}, nil
		}, nil
	}

	switch cfg.Client.Transport {
	case config.TransportStdio:
		logger.Debug("using stdio transport", "command", cfg.Client.ServerCommand, "args", cfg.Client.ServerArgs)
		return stdio.Dialer(cfg.Client.ServerCommand, cfg.Client.ServerArgs, nil), nil
	case config.TransportWebSocket:
		logger.Debug("using websocket transport", "url", cfg.Client.ServerURL)
		return ws.Dialer(cfg.Client.ServerURL), nil
	case config.TransportInProcess:
		policy, err := cfg.Server.DuplicatePolicy()
		if err != nil {
			return nil, err
		}
		reg, err := builtin.NewRegistry(policy)
		if err != nil {
			return nil, fmt.Errorf("register builtin tools: %w", err)
		}
		logger.Debug("using in-process tools")
		return local.Dialer(reg), nil
	default:
		return nil, fmt.Errorf("unsupported client transport: %q", cfg.Client.Transport)
	}
}
