// Package broker implements the request → result pipeline: validate the
// tool request, apply the security guards, obtain operator confirmation,
// dispatch the action, and return one uniform ToolResult.
package broker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wardenlabs/warden/internal/confirm"
	"github.com/wardenlabs/warden/internal/security"
)

// Defaults for missing identity fields. Malformed identity degrades
// observability but does not block an otherwise valid action.
const (
	defaultRequestID     = "unknown_request"
	defaultToolName      = "unknown_tool"
	defaultJustification = "(no justification provided)"
)

// Broker orchestrates guards, confirmation and dispatch. It resolves one
// request fully, including the blocking confirmation wait, before returning;
// the confirmation channel must not be shared by concurrent requests.
type Broker struct {
	commands *security.CommandGuard
	paths    *security.PathGuard
	gate     confirm.Channel
	dispatch func(ctx context.Context, act action) (map[string]any, error)
	logger   *zap.Logger
}

// New creates a broker over the given policy, confirmation channel and
// dispatcher.
func New(policy *security.SecurityPolicy, gate confirm.Channel, d *Dispatcher, logger *zap.Logger) *Broker {
	return &Broker{
		commands: security.NewCommandGuard(policy, logger),
		paths:    security.NewPathGuard(policy.ProjectRoot, logger),
		gate:     gate,
		dispatch: d.Dispatch,
		logger:   logger,
	}
}

// Execute resolves one tool request into a ToolResult. It never propagates
// a fault to the caller: validation, policy and execution failures all come
// back as status error, a decline as status declined_by_user, and anything
// unexpected during dispatch is caught here and normalized.
func (b *Broker) Execute(ctx context.Context, req ToolRequest) (res ToolResult) {
	if req.RequestID == "" {
		req.RequestID = defaultRequestID
	}
	if req.ToolName == "" {
		req.ToolName = defaultToolName
	}
	if req.Justification == "" {
		req.Justification = defaultJustification
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic during request handling",
				zap.String("request_id", req.RequestID), zap.Any("panic", r))
			res = b.errorResult(req, fmt.Sprintf("internal fault: %v", r))
		}
	}()

	act, err := parseAction(req.ToolName, req.Parameters)
	if err != nil {
		b.logger.Warn("request validation failed",
			zap.String("request_id", req.RequestID),
			zap.String("tool", req.ToolName),
			zap.Error(err))
		return b.errorResult(req, err.Error())
	}

	// Guards run before the operator sees anything; a policy rejection is
	// logged as enforcement, not as a runtime fault.
	if err := b.applyPolicy(act); err != nil {
		b.logger.Warn("policy rejection",
			zap.String("request_id", req.RequestID),
			zap.String("tool", req.ToolName),
			zap.Error(err))
		return b.errorResult(req, err.Error())
	}

	approved, err := b.gate.Ask(ctx, confirmationPrompt(req.Justification, act.summary()))
	if err != nil {
		return b.errorResult(req, fmt.Sprintf("confirmation failed: %v", err))
	}
	if !approved {
		b.logger.Info("request declined by operator",
			zap.String("request_id", req.RequestID),
			zap.String("tool", req.ToolName))
		return ToolResult{
			RequestID: req.RequestID,
			ToolName:  req.ToolName,
			Status:    StatusDeclined,
			Data:      map[string]any{"message": "declined by user"},
		}
	}

	payload, err := b.dispatch(ctx, act)
	if err != nil {
		b.logger.Error("dispatch failed",
			zap.String("request_id", req.RequestID),
			zap.String("tool", req.ToolName),
			zap.Error(err))
		return b.errorResult(req, err.Error())
	}

	return ToolResult{
		RequestID: req.RequestID,
		ToolName:  req.ToolName,
		Status:    StatusSuccess,
		Data:      payload,
	}
}

// applyPolicy routes the action to the matching guard: run-command through
// the command guard, file actions through the path guard.
func (b *Broker) applyPolicy(act action) error {
	switch a := act.(type) {
	case *runCommandAction:
		verdict := b.commands.Evaluate(a.Command)
		switch verdict.Decision {
		case security.DecisionBlocked:
			return &PolicyError{Msg: verdict.Reason}
		case security.DecisionMalformed:
			return &ValidationError{Msg: verdict.Reason}
		}
		return nil
	case *readFileAction:
		if !b.paths.IsWithinRoot(a.Path) {
			return &PolicyError{Msg: fmt.Sprintf("access denied: %s is outside the project root", a.Path)}
		}
		return nil
	case *writeFileAction:
		if !b.paths.IsWithinRoot(a.Path) {
			return &PolicyError{Msg: fmt.Sprintf("access denied: %s is outside the project root", a.Path)}
		}
		return nil
	default:
		return &ValidationError{Msg: fmt.Sprintf("unhandled action type %T", act)}
	}
}

func (b *Broker) errorResult(req ToolRequest, message string) ToolResult {
	return ToolResult{
		RequestID: req.RequestID,
		ToolName:  req.ToolName,
		Status:    StatusError,
		Data:      map[string]any{"message": message},
	}
}

func confirmationPrompt(justification, summary string) string {
	return fmt.Sprintf("Reason: %s\nAction: %s", justification, summary)
}
