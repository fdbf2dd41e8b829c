package security

import (
	"os"
	"strings"
)

// SecurityPolicy defines the security configuration. It is read-only after
// construction; guards copy what they need and never mutate it.
type SecurityPolicy struct {
	// AllowedCommands lists executable names permitted to run.
	// Empty means no restriction from this list.
	AllowedCommands []string `mapstructure:"allowed_commands"`

	// BlockedCommands lists executable names that may never run.
	// Checked before AllowedCommands; a command present in both is blocked.
	BlockedCommands []string `mapstructure:"blocked_commands"`

	// AllowlistFile optionally points at a newline-delimited file of
	// additional allowed command names. Lines starting with # are comments.
	AllowlistFile string `mapstructure:"allowlist_file"`

	// ProjectRoot confines read-file and write-file targets when set.
	// Empty disables path containment entirely.
	ProjectRoot string `mapstructure:"project_root"`

	// CommandTimeout is the run-command wall-clock limit in seconds.
	// Zero means no limit.
	CommandTimeout int `mapstructure:"command_timeout"`
}

// DefaultPolicy returns the default security policy. Both command lists are
// empty and no project root is set, so everything is permitted; the guards
// log this degraded state at construction.
func DefaultPolicy() *SecurityPolicy {
	return &SecurityPolicy{
		AllowedCommands: []string{},
		BlockedCommands: []string{},
	}
}

// LoadAllowlist reads a newline-delimited allowlist file. Blank lines and
// #-prefixed comments are skipped. A missing file is returned as an error so
// the caller can degrade to an empty allowlist with a warning rather than
// failing startup.
func LoadAllowlist(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}
