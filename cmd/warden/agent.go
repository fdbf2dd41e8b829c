package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/agent"
	"github.com/wardenlabs/warden/internal/agent/openai"
	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/internal/persona"
)

// getAgentCommand returns the agent command
func getAgentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Interactive agent session",
		Long: `Start an interactive session. Your input goes to the planning model; any
tool requests it proposes are run through the broker, each one individually
confirmed. The transcript lives in memory only and is gone when the session
ends.`,
		RunE: runAgent,
	}
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	if cfg.AI.APIKey == "" {
		return fmt.Errorf("no API key configured (set ai.api_key in the config file)")
	}

	personaDir, err := config.GetPersonaDir()
	if err != nil {
		return err
	}
	if err := persona.EnsureDefaults(personaDir); err != nil {
		return fmt.Errorf("failed to seed personas: %w", err)
	}
	p, err := persona.NewLoader(personaDir).Load(cfg.Agent.Persona)
	if err != nil {
		return fmt.Errorf("failed to load persona %q: %w", cfg.Agent.Persona, err)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	b := buildBroker(cfg, logger)

	var provider agent.Provider
	switch cfg.AI.Provider {
	case "", "openai":
		provider = openai.NewClient(
			cfg.AI.APIKey,
			cfg.AI.Model,
			cfg.AI.BaseURL,
			time.Duration(cfg.AI.Timeout)*time.Second,
			cfg.AI.MaxTokens,
		)
	default:
		return fmt.Errorf("unknown ai provider %q (point ai.base_url at any OpenAI-compatible endpoint and set provider to openai)", cfg.AI.Provider)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	transcript := []agent.Message{{Role: "system", Content: p.SystemPrompt}}

	fmt.Printf("warden agent (%s persona) — type exit to quit\n", p.Name)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nyou> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		transcript = append(transcript, agent.Message{Role: "user", Content: input})

		proposal, err := provider.Propose(cmd.Context(), transcript)
		if err != nil {
			fmt.Printf("model error: %v\n", err)
			continue
		}

		if proposal.Prose != "" {
			rendered, err := renderer.Render(proposal.Prose)
			if err != nil {
				fmt.Println(proposal.Prose)
			} else {
				fmt.Print(rendered)
			}
			transcript = append(transcript, agent.Message{Role: "assistant", Content: proposal.Prose})
		}

		// One request fully resolved (confirmation included) before the next.
		for _, req := range proposal.Requests {
			result := b.Execute(cmd.Context(), req)
			printResult(result.Status, result.Data)

			feedback, _ := json.Marshal(result)
			transcript = append(transcript, agent.Message{
				Role:    "user",
				Content: "Tool result: " + string(feedback),
			})
		}
	}

	return scanner.Err()
}

func printResult(status string, data map[string]any) {
	switch status {
	case "success":
		if stdout, ok := data["stdout"].(string); ok && stdout != "" {
			fmt.Print(stdout)
		}
		if msg, ok := data["status"].(string); ok {
			fmt.Println(msg)
		}
	case "declined_by_user":
		fmt.Println("⊘ skipped")
	default:
		if msg, ok := data["message"].(string); ok {
			fmt.Printf("✗ %s\n", msg)
		}
	}
}
