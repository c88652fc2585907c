// cmd/mcp_client/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/windlant/letter-counter/internal/agent"
	"github.com/windlant/letter-counter/internal/config"
	"github.com/windlant/letter-counter/internal/logging"
	"github.com/windlant/letter-counter/internal/model"
	"github.com/windlant/letter-counter/internal/tools/connect"
)

func main() {
	var configPath, prompt string

	cmd := &cobra.Command{
		Use:           "mcp_client",
		Short:         "Ask the model a question, letting it call the letter-counting tool",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), configPath, prompt)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to a .yaml or .toml config file")
	cmd.Flags().StringVar(&prompt, "prompt", "", "user message (defaults to client.prompt)")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, configPath, prompt string) error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Log.Level, os.Stderr)

	m, err := model.New(cfg.Model)
	if err != nil {
		return fmt.Errorf("initialize model: %w", err)
	}
	dial, err := connect.NewDialer(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize tool transport: %w", err)
	}

	if prompt == "" {
		prompt = cfg.Client.Prompt
	}

	res, err := agent.NewAgent(m, dial, logger).Run(ctx, prompt)
	if err != nil {
		return err
	}
	printResult(out, res)
	return nil
}

func printResult(out io.Writer, res *agent.Result) {
	fmt.Fprintln(out, "Tools:")
	if len(res.Tools) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, t := range res.Tools {
		fmt.Fprintf(out, "  - %s: %s\n", t.Function.Name, t.Function.Description)
	}

	if res.Unsupported != "" {
		fmt.Fprintf(out, "Unsupported tool call type: %s\n", res.Unsupported)
		return
	}
	if res.ToolCall != nil {
		fmt.Fprintf(out, "Tool call result: %s\n", res.ToolResult)
	}
	fmt.Fprintf(out, "Answer: %s\n", res.Answer)
}
