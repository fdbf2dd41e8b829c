package broker

import (
	"fmt"
	"strings"
)

// Recognized tool names. The set is closed: anything else is a terminal
// validation error, never silently ignored.
const (
	ToolRunCommand = "run-command"
	ToolReadFile   = "read-file"
	ToolWriteFile  = "write-file"
)

// Result statuses. Exactly one payload family populates Data per status.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusDeclined = "declined_by_user"
)

// ToolRequest identifies one invocation attempt by the agent. It is consumed
// exactly once by the broker and never mutated or persisted.
type ToolRequest struct {
	RequestID     string         `json:"request_id"`
	ToolName      string         `json:"tool_name"`
	Parameters    map[string]any `json:"parameters"`
	Justification string         `json:"justification_text"`
}

// ToolResult is the sole output type. RequestID and ToolName echo the
// request for correlation.
type ToolResult struct {
	RequestID string         `json:"request_id"`
	ToolName  string         `json:"tool_name"`
	Status    string         `json:"status"`
	Data      map[string]any `json:"data"`
}

// action is the closed set of primitive actions the dispatcher can perform.
// Adding a variant requires extending the dispatcher's type switch; there is
// no string-keyed fallthrough past parseAction.
type action interface {
	// summary is the one-line description shown to the operator.
	summary() string
}

type runCommandAction struct {
	Command    string
	WorkingDir string
}

func (a *runCommandAction) summary() string {
	return "run command: " + a.Command
}

type readFileAction struct {
	Path string
}

func (a *readFileAction) summary() string {
	return "read file: " + a.Path
}

type writeFileAction struct {
	Path    string
	Content string
	Append  bool
}

const contentPreviewLimit = 80

func (a *writeFileAction) summary() string {
	preview := a.Content
	if len(preview) > contentPreviewLimit {
		preview = preview[:contentPreviewLimit] + "..."
	}
	return fmt.Sprintf("write file: %s (%d bytes) %q", a.Path, len(a.Content), preview)
}

// parseAction validates the request's tool name and parameters and builds
// the typed action. All validation happens here, before guards and before
// the operator is asked anything.
func parseAction(toolName string, params map[string]any) (action, error) {
	switch toolName {
	case ToolRunCommand:
		command, err := stringParam(params, "command")
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(command) == "" {
			return nil, &ValidationError{Msg: "run-command requires a non-empty command parameter"}
		}
		workingDir, err := stringParam(params, "working_directory")
		if err != nil {
			return nil, err
		}
		return &runCommandAction{Command: command, WorkingDir: workingDir}, nil

	case ToolReadFile:
		path, err := stringParam(params, "file_path")
		if err != nil {
			return nil, err
		}
		if path == "" {
			return nil, &ValidationError{Msg: "read-file requires a non-empty file_path parameter"}
		}
		if err := encodingParam(params); err != nil {
			return nil, err
		}
		return &readFileAction{Path: path}, nil

	case ToolWriteFile:
		path, err := stringParam(params, "file_path")
		if err != nil {
			return nil, err
		}
		if path == "" {
			return nil, &ValidationError{Msg: "write-file requires a non-empty file_path parameter"}
		}
		if err := encodingParam(params); err != nil {
			return nil, err
		}
		mode, err := stringParam(params, "mode")
		if err != nil {
			return nil, err
		}
		switch mode {
		case "", "overwrite", "append":
		default:
			return nil, &ValidationError{Msg: fmt.Sprintf("write-file mode must be overwrite or append, got %q", mode)}
		}
		// content is optional and defaults to the empty string.
		content, err := stringParam(params, "content")
		if err != nil {
			return nil, err
		}
		return &writeFileAction{
			Path:    path,
			Content: content,
			Append:  mode == "append",
		}, nil

	default:
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown tool: %s", toolName)}
	}
}

// encodingParam rejects encodings other than UTF-8, the only text encoding
// the dispatcher handles.
func encodingParam(params map[string]any) error {
	encoding, err := stringParam(params, "encoding")
	if err != nil {
		return err
	}
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return nil
	default:
		return &ValidationError{Msg: fmt.Sprintf("unsupported encoding %q (only utf-8 is supported)", encoding)}
	}
}

// stringParam reads an optional string parameter. A present value of the
// wrong type is a validation error, not a silent miss, so the caller's
// "required field" message never masks a type mismatch.
func stringParam(params map[string]any, key string) (string, error) {
	if params == nil {
		return "", nil
	}
	value, ok := params[key]
	if !ok || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", &ValidationError{Msg: fmt.Sprintf("parameter %q must be a string, got %T", key, value)}
	}
	return s, nil
}
