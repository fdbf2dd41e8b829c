package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Permission-gated execution broker",
	Long: `warden sits between an AI agent and the host machine. Every tool request
passes a command/path policy check and an explicit human confirmation before
anything touches the shell or the filesystem.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.InitConfig()
		return err
	},
}

func main() {
	rootCmd.AddCommand(getExecCommand())
	rootCmd.AddCommand(getAgentCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
