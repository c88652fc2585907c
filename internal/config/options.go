package config

import (
	"fmt"
	"strings"

	"github.com/windlant/letter-counter/internal/tools/registry"
)

// Transport selects how the client reaches the tool server, or how the
// server exposes itself.
type Transport string

const (
	TransportStdio     Transport = "stdio"
	TransportWebSocket Transport = "websocket"
	// TransportInProcess runs the tools inside the client. Client only.
	TransportInProcess Transport = "inprocess"
)

// Provider selects the model API implementation.
type Provider string

const (
	// ProviderOpenAI uses the official openai-go SDK.
	ProviderOpenAI Provider = "openai"
	// ProviderOpenAIHTTP posts to <base_url>/chat/completions directly, for
	// OpenAI-compatible services.
	ProviderOpenAIHTTP  Provider = "openai-http"
	ProviderLangChainGo Provider = "langchaingo"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// DuplicatePolicy parses server.on_duplicate_tools.
func (s ServerConfig) DuplicatePolicy() (registry.DuplicatePolicy, error) {
	return registry.ParseDuplicatePolicy(s.OnDuplicateTools)
}

// Validate rejects values outside the recognized options.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportWebSocket:
	default:
		return fmt.Errorf("server.transport: unsupported value %q", c.Server.Transport)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d out of range", c.Server.Port)
	}
	if _, err := c.Server.DuplicatePolicy(); err != nil {
		return fmt.Errorf("server.on_duplicate_tools: %w", err)
	}

	switch c.Client.Transport {
	case TransportStdio:
		if c.Client.ServerCommand == "" {
			return fmt.Errorf("client.server_command is required for stdio transport")
		}
	case TransportWebSocket:
		if c.Client.ServerURL == "" {
			return fmt.Errorf("client.server_url is required for websocket transport")
		}
	case TransportInProcess:
	default:
		return fmt.Errorf("client.transport: unsupported value %q", c.Client.Transport)
	}

	switch c.Model.Provider {
	case ProviderOpenAI, ProviderOpenAIHTTP, ProviderLangChainGo:
	default:
		return fmt.Errorf("model.provider: unsupported value %q", c.Model.Provider)
	}

	if !logLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level: unsupported value %q", c.Log.Level)
	}
	return nil
}
