package broker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDispatcher_RunCommand(t *testing.T) {
	d := NewDispatcher(0)
	ctx := context.Background()

	t.Run("captures stdout and stderr separately", func(t *testing.T) {
		payload, err := d.runCommand(ctx, &runCommandAction{Command: "echo out; echo err 1>&2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := payload["stdout"].(string); got != "out\n" {
			t.Errorf("stdout = %q, want %q", got, "out\n")
		}
		if got := payload["stderr"].(string); got != "err\n" {
			t.Errorf("stderr = %q, want %q", got, "err\n")
		}
		if got := payload["exit_code"].(int); got != 0 {
			t.Errorf("exit_code = %d, want 0", got)
		}
	})

	t.Run("nonzero exit is not an error", func(t *testing.T) {
		payload, err := d.runCommand(ctx, &runCommandAction{Command: "exit 3"})
		if err != nil {
			t.Fatalf("a nonzero exit must not be an error, got %v", err)
		}
		if got := payload["exit_code"].(int); got != 3 {
			t.Errorf("exit_code = %d, want 3", got)
		}
	})

	t.Run("pipes work", func(t *testing.T) {
		payload, err := d.runCommand(ctx, &runCommandAction{Command: "printf 'a\\nb\\n' | wc -l"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.TrimSpace(payload["stdout"].(string)); got != "2" {
			t.Errorf("piped stdout = %q, want 2", got)
		}
	})

	t.Run("working directory honored", func(t *testing.T) {
		dir := t.TempDir()
		payload, err := d.runCommand(ctx, &runCommandAction{Command: "pwd", WorkingDir: dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := filepath.EvalSymlinks(strings.TrimSpace(payload["stdout"].(string)))
		want, _ := filepath.EvalSymlinks(dir)
		if got != want {
			t.Errorf("pwd = %q, want %q", got, want)
		}
	})
}

func TestDispatcher_ReadFile(t *testing.T) {
	d := NewDispatcher(0)

	t.Run("text content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "note.txt")
		if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}

		payload, err := d.readFile(&readFileAction{Path: path})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if payload["content"].(string) != "hello" {
			t.Errorf("content = %q, want hello", payload["content"])
		}
	})

	t.Run("binary content degrades", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blob.bin")
		if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
			t.Fatal(err)
		}

		payload, err := d.readFile(&readFileAction{Path: path})
		if err != nil {
			t.Fatalf("binary content is a degraded success, got error %v", err)
		}
		if payload["binary"] != true {
			t.Error("expected the binary marker")
		}
		if payload["size_bytes"].(int) != 3 {
			t.Errorf("size_bytes = %v, want 3", payload["size_bytes"])
		}
		if _, ok := payload["content"]; ok {
			t.Error("binary payload must not carry content")
		}
	})

	t.Run("missing file is an execution error", func(t *testing.T) {
		_, err := d.readFile(&readFileAction{Path: filepath.Join(t.TempDir(), "gone.txt")})
		var execErr *ExecutionError
		if !errors.As(err, &execErr) {
			t.Fatalf("expected ExecutionError, got %v", err)
		}
	})
}

func TestDispatcher_WriteFile(t *testing.T) {
	d := NewDispatcher(0)

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deep", "nested", "file.txt")
		payload, err := d.writeFile(&writeFileAction{Path: path, Content: "x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if payload["bytes_written"].(int) != 1 {
			t.Errorf("bytes_written = %v, want 1", payload["bytes_written"])
		}
		data, err := os.ReadFile(path)
		if err != nil || string(data) != "x" {
			t.Errorf("read back %q, %v", data, err)
		}
	})

	t.Run("bytes counted after encoding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "utf8.txt")
		// Three runes, five bytes.
		payload, err := d.writeFile(&writeFileAction{Path: path, Content: "a€b"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if payload["bytes_written"].(int) != 5 {
			t.Errorf("bytes_written = %v, want 5", payload["bytes_written"])
		}
	})

	t.Run("append mode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "log.txt")
		if _, err := d.writeFile(&writeFileAction{Path: path, Content: "one"}); err != nil {
			t.Fatal(err)
		}
		if _, err := d.writeFile(&writeFileAction{Path: path, Content: "two", Append: true}); err != nil {
			t.Fatal(err)
		}
		data, _ := os.ReadFile(path)
		if string(data) != "onetwo" {
			t.Errorf("appended content = %q, want onetwo", data)
		}
	})

	t.Run("overwrite truncates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.txt")
		if _, err := d.writeFile(&writeFileAction{Path: path, Content: "longer original"}); err != nil {
			t.Fatal(err)
		}
		if _, err := d.writeFile(&writeFileAction{Path: path, Content: "short"}); err != nil {
			t.Fatal(err)
		}
		data, _ := os.ReadFile(path)
		if string(data) != "short" {
			t.Errorf("overwritten content = %q, want short", data)
		}
	})
}
