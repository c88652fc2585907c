package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "config/config.yaml"

// APIKeyEnv overrides model.api_key when set.
const APIKeyEnv = "OPENAI_API_KEY"

type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
	Client ClientConfig `yaml:"client" toml:"client"`
	Model  ModelConfig  `yaml:"model" toml:"model"`
	Tools  ToolsConfig  `yaml:"tools" toml:"tools"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

type ServerConfig struct {
	Name             string    `yaml:"name" toml:"name"`
	Transport        Transport `yaml:"transport" toml:"transport"`
	Host             string    `yaml:"host" toml:"host"`
	Port             int       `yaml:"port" toml:"port"`
	OnDuplicateTools string    `yaml:"on_duplicate_tools" toml:"on_duplicate_tools"`
}

// Addr is the host:port the server listens on in websocket mode.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type ClientConfig struct {
	Transport     Transport `yaml:"transport" toml:"transport"`
	ServerCommand string    `yaml:"server_command" toml:"server_command"`
	ServerArgs    []string  `yaml:"server_args" toml:"server_args"`
	ServerURL     string    `yaml:"server_url" toml:"server_url"`
	Prompt        string    `yaml:"prompt" toml:"prompt"`
}

type ModelConfig struct {
	Provider    Provider `yaml:"provider" toml:"provider"`
	ModelName   string   `yaml:"model_name" toml:"model_name"`
	BaseURL     string   `yaml:"base_url" toml:"base_url"`
	APIKey      string   `yaml:"api_key" toml:"api_key"`
	Temperature float64  `yaml:"temperature" toml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens" toml:"max_tokens"`
}

type ToolsConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Default returns the configuration used for any field a file leaves unset.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Name:             "ConfiguredServer",
			Transport:        TransportStdio,
			Host:             "127.0.0.1",
			Port:             8080,
			OnDuplicateTools: "reject",
		},
		Client: ClientConfig{
			Transport:     TransportStdio,
			ServerCommand: "./bin/mcp_server_local",
			ServerURL:     "ws://127.0.0.1:8080/mcp",
			Prompt:        `How many r's are in "strawberry"?`,
		},
		Model: ModelConfig{
			Provider:  ProviderOpenAI,
			ModelName: "gpt-4o",
			BaseURL:   "https://api.openai.com/v1",
		},
		Tools: ToolsConfig{Enabled: true},
		Log:   LogConfig{Level: "info"},
	}
}

// Load 从 path 加载配置（.yaml/.yml 或 .toml）。An empty path means
// DefaultPath; a missing file yields the defaults. OPENAI_API_KEY, when
// set, replaces model.api_key.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := decode(path, data, &cfg); err != nil {
			return nil, err
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.Model.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse toml config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	}
	return nil
}
