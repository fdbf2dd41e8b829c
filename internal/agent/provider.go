// Package agent defines the LLM adapter that turns user requests into tool
// requests for the broker.
package agent

import (
	"context"

	"github.com/wardenlabs/warden/internal/broker"
)

// Message represents a chat message
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// Proposal is what the model produced for one turn: prose for the user plus
// zero or more tool requests for the broker.
type Proposal struct {
	Prose    string
	Requests []broker.ToolRequest
}

// Provider defines the interface for AI backends
type Provider interface {
	// Propose sends the transcript to the model and parses its reply into
	// a Proposal.
	Propose(ctx context.Context, messages []Message) (*Proposal, error)
}
