// Package persona loads the context definitions (system prompt documents)
// given to the planning model. Personas are markdown files with a small
// frontmatter header.
package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Persona is one loaded context definition.
type Persona struct {
	Name         string
	Title        string
	Description  string
	SystemPrompt string
}

// Loader loads personas from a directory.
type Loader struct {
	dir string
}

// NewLoader creates a Loader over dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads and parses the persona with the given name.
func (l *Loader) Load(name string) (*Persona, error) {
	path := filepath.Join(l.dir, name+".md")

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona: %w", err)
	}

	return Parse(string(content)), nil
}

// Parse splits frontmatter from the body. Files without frontmatter are
// treated as a bare system prompt.
func Parse(content string) *Persona {
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return &Persona{
			Name:         "default",
			SystemPrompt: strings.TrimSpace(content),
		}
	}

	p := &Persona{
		SystemPrompt: strings.TrimSpace(parts[2]),
	}

	for _, line := range strings.Split(parts[1], "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "name:"):
			p.Name = strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "name:")), `"`)
		case strings.HasPrefix(line, "title:"):
			p.Title = strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "title:")), `"`)
		case strings.HasPrefix(line, "description:"):
			p.Description = strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "description:")), `"`)
		}
	}

	if p.Name == "" {
		p.Name = "default"
	}
	return p
}

// EnsureDefaults seeds the persona directory with the built-in set. Existing
// files are left untouched.
func EnsureDefaults(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	personas := map[string]string{
		"default.md": `---
name: "default"
title: "Operator assistant"
description: "Careful general-purpose assistant"
---

You are a careful assistant operating inside a supervised project. Prefer
read-only commands, explain what you are about to do, and keep every action
small enough that its justification fits in one sentence.`,
		"sysadmin.md": `---
name: "sysadmin"
title: "System administrator"
description: "Diagnoses and maintains the host"
---

You are an experienced system administrator. Gather evidence with read-only
commands before proposing changes, and never chain destructive operations in
a single command.`,
	}

	for name, content := range personas {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to create persona %s: %w", name, err)
			}
		}
	}

	return nil
}
