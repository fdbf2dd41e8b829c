// Package config loads the warden configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/wardenlabs/warden/internal/security"
)

const (
	ConfigFileName = "config"
	ConfigFileType = "yaml"
	WardenDirName  = ".warden"
	PersonaDirName = "personas"
)

var config *Config

// Config holds the application configuration
type Config struct {
	AI       AIConfig                `mapstructure:"ai"`
	Security security.SecurityPolicy `mapstructure:"security"`
	Confirm  ConfirmConfig           `mapstructure:"confirm"`
	Agent    AgentConfig             `mapstructure:"agent"`
}

// AIConfig holds AI-related configuration
type AIConfig struct {
	Provider  string `mapstructure:"provider"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	Timeout   int    `mapstructure:"timeout"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// ConfirmConfig holds confirmation gate configuration
type ConfirmConfig struct {
	// TimeoutSeconds resolves an unanswered prompt to declined after this
	// many seconds. Zero keeps the baseline behavior: wait forever.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// AgentConfig holds agent loop configuration
type AgentConfig struct {
	Persona string `mapstructure:"persona"`
}

// GetConfigDir returns the warden config directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, WardenDirName), nil
}

// GetPersonaDir returns the persona directory path
func GetPersonaDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, PersonaDirName), nil
}

// InitConfig initializes the configuration
func InitConfig() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(configDir)

	// AI defaults
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o")
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.timeout", 30)
	v.SetDefault("ai.max_tokens", 4096)

	// Security defaults. The empty lists and empty project root are the
	// compatible fail-open defaults; the guards log the degraded state.
	v.SetDefault("security.allowed_commands", []string{})
	v.SetDefault("security.blocked_commands", []string{})
	v.SetDefault("security.allowlist_file", "")
	v.SetDefault("security.project_root", "")
	v.SetDefault("security.command_timeout", 0)

	// Confirmation defaults
	v.SetDefault("confirm.timeout_seconds", 0)

	// Agent defaults
	v.SetDefault("agent.persona", "default")

	// Read config file (ignore if not exists)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = &cfg
	return config, nil
}

// GetConfig returns the loaded config
func GetConfig() *Config {
	return config
}
