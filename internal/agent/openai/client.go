// Package openai implements agent.Provider for any OpenAI-compatible chat
// completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/agent"
	"github.com/wardenlabs/warden/internal/broker"
)

const toolProtocolPrompt = `You are warden's planning model. You cannot touch the host directly: every
action goes through a broker that enforces policy and asks a human for
approval.

Rules:
1. Return ONLY valid JSON, no surrounding prose
2. Use tool_requests only when the user's request needs host access
3. Always fill justification_text with a short human-readable reason

Available tools:
- run-command: parameters {"command": string, "working_directory"?: string}
- read-file: parameters {"file_path": string}
- write-file: parameters {"file_path": string, "content"?: string, "mode"?: "overwrite"|"append"}

Response format:
{
  "reply": "what to tell the user",
  "tool_requests": [
    {"tool_name": "run-command", "parameters": {"command": "ls -la"}, "justification_text": "list the project files"}
  ]
}`

// Client implements agent.Provider against an OpenAI-compatible API.
type Client struct {
	apiKey    string
	model     string
	baseURL   string
	timeout   time.Duration
	maxTokens int
}

// NewClient creates a new client. baseURL points at the API root, e.g.
// https://api.openai.com/v1. maxTokens <= 0 leaves the limit to the server.
func NewClient(apiKey, model, baseURL string, timeout time.Duration, maxTokens int) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:    apiKey,
		model:     model,
		baseURL:   baseURL,
		timeout:   timeout,
		maxTokens: maxTokens,
	}
}

// Propose sends the transcript and parses the model's JSON reply into prose
// plus tool requests. Each request is minted a fresh request ID for
// correlation with broker results.
func (c *Client) Propose(ctx context.Context, messages []agent.Message) (*agent.Proposal, error) {
	all := append([]agent.Message{{Role: "system", Content: toolProtocolPrompt}}, messages...)

	response, err := c.callAPI(ctx, all)
	if err != nil {
		return nil, err
	}
	return parseProposal(response)
}

// callAPI makes the actual API call
func (c *Client) callAPI(ctx context.Context, messages []agent.Message) (string, error) {
	msgs := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, map[string]string{"role": m.Role, "content": m.Content})
	}

	reqBody := map[string]any{
		"model":    c.model,
		"messages": msgs,
	}
	if c.maxTokens > 0 {
		reqBody["max_tokens"] = c.maxTokens
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var respData struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(respData.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return respData.Choices[0].Message.Content, nil
}

// parseProposal parses the model's JSON reply. Markdown code fences around
// the JSON are tolerated since many models add them despite instructions.
func parseProposal(response string) (*agent.Proposal, error) {
	cleaned := stripCodeFence(response)

	var parsed struct {
		Reply        string `json:"reply"`
		ToolRequests []struct {
			ToolName      string         `json:"tool_name"`
			Parameters    map[string]any `json:"parameters"`
			Justification string         `json:"justification_text"`
		} `json:"tool_requests"`
	}

	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model reply: %w", err)
	}

	proposal := &agent.Proposal{Prose: parsed.Reply}
	for _, tr := range parsed.ToolRequests {
		proposal.Requests = append(proposal.Requests, broker.ToolRequest{
			RequestID:     uuid.New().String(),
			ToolName:      tr.ToolName,
			Parameters:    tr.Parameters,
			Justification: tr.Justification,
		})
	}
	return proposal, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
