package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/wardenlabs/warden/internal/broker"
	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/internal/confirm"
	"github.com/wardenlabs/warden/internal/security"
)

func newLogger() (*zap.Logger, error) {
	return zap.NewDevelopment()
}

// buildBroker wires policy, confirmation channel and dispatcher from config.
func buildBroker(cfg *config.Config, logger *zap.Logger) *broker.Broker {
	policy := cfg.Security

	if policy.AllowlistFile != "" {
		names, err := security.LoadAllowlist(policy.AllowlistFile)
		if err != nil {
			logger.Warn("allowlist file unavailable, continuing with empty allowlist",
				zap.String("path", policy.AllowlistFile), zap.Error(err))
		} else {
			policy.AllowedCommands = append(policy.AllowedCommands, names...)
		}
	}

	gate := confirm.WithTimeout(
		confirm.NewConsole(nil, nil),
		time.Duration(cfg.Confirm.TimeoutSeconds)*time.Second,
	)
	dispatcher := broker.NewDispatcher(time.Duration(policy.CommandTimeout) * time.Second)

	return broker.New(&policy, gate, dispatcher, logger)
}
