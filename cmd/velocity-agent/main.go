// Package main provides the interactive Velocity support agent CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/minhyannv/velocity-agent-go/pkg/agent"
	"github.com/minhyannv/velocity-agent-go/pkg/chat"
	configpkg "github.com/minhyannv/velocity-agent-go/pkg/config"
	loggerpkg "github.com/minhyannv/velocity-agent-go/pkg/logger"
	"github.com/minhyannv/velocity-agent-go/pkg/prompt"
	"github.com/minhyannv/velocity-agent-go/pkg/tools"
)

// main is the program entry point.
func main() {
	config, err := parseCLIConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	appLogger := loggerpkg.NewWriterLogger(os.Stderr)
	conv, err := newConversation(config, appLogger)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := runREPL(context.Background(), conv, os.Stdin, os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newConversation wires the chat client, tool registry and startup prompts.
func newConversation(cfg configpkg.Config, appLogger loggerpkg.Logger) (*agent.Conversation, error) {
	loggerpkg.Debug(cfg.Verbose, appLogger, "startup", map[string]any{
		"base_url":     cfg.BaseURL,
		"model":        cfg.Model,
		"temperature":  cfg.Temperature,
		"timeout":      cfg.Timeout.String(),
		"endpoint":     cfg.PreferredEndpoint,
		"prompt_file":  cfg.PromptPath,
		"catalog_file": cfg.CatalogPath,
	})

	client, err := chat.New(cfg, chat.WithLogger(loggerpkg.Named(appLogger, "chat")))
	if err != nil {
		return nil, err
	}

	registry := tools.New(tools.WithLogger(loggerpkg.Named(appLogger, "tools"), cfg.Verbose))
	initial, err := prompt.Load(cfg.PromptPath, cfg.CatalogPath, registry)
	if err != nil {
		return nil, err
	}

	return agent.New(client, registry, initial,
		agent.WithLogger(loggerpkg.Named(appLogger, "agent")),
		agent.WithVerbose(cfg.Verbose),
	)
}
