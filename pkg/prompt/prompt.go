// Package prompt loads the startup collaborators (system prompt and product
// catalog) and turns them into the leading system messages of a conversation.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/minhyannv/velocity-agent-go/pkg/chat"
)

// Registry is the subset of the tool registry the prompt needs.
type Registry interface {
	Instructions() []string
}

// LoadSystemPrompt reads the system prompt file and trims it.
func LoadSystemPrompt(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", fmt.Errorf("system prompt %s is empty", path)
	}
	return text, nil
}

// ToolInstructions tells the model how to request a tool.
func ToolInstructions(registry Registry) string {
	var sb strings.Builder
	sb.WriteString("TOOL INSTRUCTIONS:\n")
	sb.WriteString("If you need order status or another tool, respond ONLY with JSON exactly in this format:\n")
	for _, example := range registry.Instructions() {
		sb.WriteString(example)
		sb.WriteString("\n")
	}
	sb.WriteString("Otherwise, respond normally to the user.")
	return sb.String()
}

// InitialMessages returns the system messages every conversation starts with.
func InitialMessages(systemPrompt, catalogJSON string, registry Registry) []chat.Message {
	return []chat.Message{
		chat.SystemMessage(systemPrompt),
		chat.SystemMessage("PRODUCT CATALOG:\n" + catalogJSON),
		chat.SystemMessage(ToolInstructions(registry)),
	}
}

// Load reads both collaborators and builds the initial messages.
func Load(promptPath, catalogPath string, registry Registry) ([]chat.Message, error) {
	systemPrompt, err := LoadSystemPrompt(promptPath)
	if err != nil {
		return nil, err
	}
	catalog, err := LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	return InitialMessages(systemPrompt, catalog, registry), nil
}
