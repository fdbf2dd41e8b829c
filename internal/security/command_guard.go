package security

import (
	"fmt"

	shellwords "github.com/mattn/go-shellwords"
	"go.uber.org/zap"
)

// Decision classifies the outcome of a command guard evaluation.
type Decision int

const (
	DecisionAllowed Decision = iota
	DecisionBlocked
	DecisionMalformed
)

// Verdict is the result of evaluating one command line.
type Verdict struct {
	Decision Decision
	Reason   string
}

// CommandGuard filters command lines against the policy's allow/block sets.
//
// Only the leading executable token is judged; arguments, pipes and
// redirections pass through uninspected. This is a coarse gate against
// known-bad executables, not a shell-injection filter.
type CommandGuard struct {
	allowed map[string]struct{}
	blocked map[string]struct{}
}

// NewCommandGuard creates a guard from the policy's command sets. With both
// sets empty the guard is default-open (every well-formed command passes);
// that is a deliberate configuration choice and is logged as a warning here
// so it is never silent.
func NewCommandGuard(policy *SecurityPolicy, logger *zap.Logger) *CommandGuard {
	g := &CommandGuard{
		allowed: toSet(policy.AllowedCommands),
		blocked: toSet(policy.BlockedCommands),
	}
	if len(g.allowed) == 0 && len(g.blocked) == 0 {
		logger.Warn("command guard is open: no allowed or blocked commands configured, every command is permitted")
	}
	return g
}

// Evaluate tokenizes commandLine with shell-word semantics and judges the
// first token. Decision order: malformed input is rejected, then the
// blocklist is consulted, then the allowlist; the blocklist wins when a name
// appears in both.
func (g *CommandGuard) Evaluate(commandLine string) Verdict {
	words, err := shellwords.Parse(commandLine)
	if err != nil {
		return Verdict{
			Decision: DecisionMalformed,
			Reason:   fmt.Sprintf("cannot parse command: %v", err),
		}
	}
	if len(words) == 0 {
		return Verdict{Decision: DecisionMalformed, Reason: "empty command"}
	}

	name := words[0]

	if _, ok := g.blocked[name]; ok {
		return Verdict{
			Decision: DecisionBlocked,
			Reason:   fmt.Sprintf("command %q is blocked by policy", name),
		}
	}

	if len(g.allowed) > 0 {
		if _, ok := g.allowed[name]; !ok {
			return Verdict{
				Decision: DecisionBlocked,
				Reason:   fmt.Sprintf("command %q is not in the allowed list", name),
			}
		}
	}

	return Verdict{Decision: DecisionAllowed}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
