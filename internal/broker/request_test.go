package broker

import (
	"errors"
	"strings"
	"testing"
)

func TestParseAction_Validation(t *testing.T) {
	tests := []struct {
		name     string
		toolName string
		params   map[string]any
		wantErr  bool
	}{
		{"valid run-command", ToolRunCommand, map[string]any{"command": "ls -la"}, false},
		{"run-command missing command", ToolRunCommand, map[string]any{}, true},
		{"run-command blank command", ToolRunCommand, map[string]any{"command": "   "}, true},
		{"run-command nil params", ToolRunCommand, nil, true},
		{"valid read-file", ToolReadFile, map[string]any{"file_path": "/tmp/a"}, false},
		{"read-file missing path", ToolReadFile, map[string]any{}, true},
		{"read-file bad encoding", ToolReadFile, map[string]any{"file_path": "/tmp/a", "encoding": "latin-1"}, true},
		{"valid write-file", ToolWriteFile, map[string]any{"file_path": "/tmp/a", "content": "x"}, false},
		{"write-file content optional", ToolWriteFile, map[string]any{"file_path": "/tmp/a"}, false},
		{"write-file append mode", ToolWriteFile, map[string]any{"file_path": "/tmp/a", "mode": "append"}, false},
		{"write-file bad mode", ToolWriteFile, map[string]any{"file_path": "/tmp/a", "mode": "truncate"}, true},
		{"unknown tool", "delete-everything", map[string]any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act, err := parseAction(tt.toolName, tt.params)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected a validation error")
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if act == nil {
				t.Fatal("expected an action")
			}
		})
	}
}

func TestParseAction_TypeMismatchDiagnosed(t *testing.T) {
	tests := []struct {
		name     string
		toolName string
		params   map[string]any
		key      string
	}{
		{"numeric command", ToolRunCommand, map[string]any{"command": 42}, "command"},
		{"boolean file_path", ToolReadFile, map[string]any{"file_path": true}, "file_path"},
		{"numeric content", ToolWriteFile, map[string]any{"file_path": "/tmp/a", "content": 7}, "content"},
		{"list mode", ToolWriteFile, map[string]any{"file_path": "/tmp/a", "mode": []string{"append"}}, "mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAction(tt.toolName, tt.params)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			// The message must name the mistyped key, not claim the field
			// is missing.
			if !strings.Contains(err.Error(), "must be a string") || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q should diagnose the type mismatch on %q", err, tt.key)
			}
		})
	}
}

func TestParseAction_UnknownToolMessage(t *testing.T) {
	_, err := parseAction("format-disk", nil)
	if err == nil || !strings.Contains(err.Error(), "format-disk") {
		t.Errorf("unknown-tool error should name the tool, got %v", err)
	}
}

func TestWriteFileAction_SummaryPreview(t *testing.T) {
	long := strings.Repeat("a", 500)
	act := &writeFileAction{Path: "/tmp/out.txt", Content: long}

	summary := act.summary()
	if !strings.Contains(summary, "/tmp/out.txt") {
		t.Error("summary should contain the target path")
	}
	if !strings.Contains(summary, "500 bytes") {
		t.Error("summary should report the total content length")
	}
	if strings.Contains(summary, long) {
		t.Error("summary should truncate the content preview")
	}
}

func TestRunCommandAction_Summary(t *testing.T) {
	act := &runCommandAction{Command: "ls -la | wc -l"}
	if !strings.Contains(act.summary(), "ls -la | wc -l") {
		t.Error("summary should contain the literal command string")
	}
}
