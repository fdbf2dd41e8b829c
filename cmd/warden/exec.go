package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/broker"
	"github.com/wardenlabs/warden/internal/config"
)

// getExecCommand returns the exec command
func getExecCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exec [request.json]",
		Short: "Execute a single tool request",
		Long: `Read one tool request as JSON from a file (or stdin when no file is
given), run it through the broker, and print the result as JSON.

Example request:

  {
    "request_id": "req-1",
    "tool_name": "run-command",
    "parameters": {"command": "ls -la"},
    "justification_text": "list the project files"
  }`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExec,
	}
}

func runExec(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error

	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read request file: %w", err)
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read request from stdin: %w", err)
		}
	}

	var req broker.ToolRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("invalid request JSON: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	b := buildBroker(config.GetConfig(), logger)
	result := b.Execute(cmd.Context(), req)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))

	return nil
}
