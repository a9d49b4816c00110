package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minhyannv/velocity-agent-go/pkg/chat"
	loggerpkg "github.com/minhyannv/velocity-agent-go/pkg/logger"
	"github.com/minhyannv/velocity-agent-go/pkg/tools"
)

// Completer returns the next assistant message for a full history.
type Completer interface {
	Complete(ctx context.Context, messages []chat.Message) (chat.Message, error)
}

// ToolRunner detects and executes tool-call envelopes.
type ToolRunner interface {
	ParseCall(text string) (tools.Call, bool)
	Execute(call tools.Call) (string, error)
}

// Conversation holds the message history of one session. History only grows:
// messages are never removed or edited, even when a turn fails.
type Conversation struct {
	completer Completer
	tools     ToolRunner
	history   []chat.Message

	logger  loggerpkg.Logger
	verbose bool
}

// New starts a conversation seeded with the initial system messages.
func New(completer Completer, toolRunner ToolRunner, initial []chat.Message, opts ...Option) (*Conversation, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if toolRunner == nil {
		return nil, errors.New("tool runner is required")
	}
	deps := conversationDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}

	return &Conversation{
		completer: completer,
		tools:     toolRunner,
		history:   append([]chat.Message(nil), initial...),
		logger:    deps.logger,
		verbose:   deps.verbose,
	}, nil
}

// Run processes one user input and returns the assistant reply to display.
// A tool-call reply triggers exactly one tool execution and one follow-up
// completion; the follow-up is returned even if it is itself a tool call.
func (c *Conversation) Run(ctx context.Context, userInput string) (chat.Message, error) {
	userInput = strings.TrimSpace(userInput)
	if userInput == "" {
		return chat.Message{}, errors.New("user input is required")
	}
	c.append(chat.UserMessage(userInput))

	reply, err := c.complete(ctx)
	if err != nil {
		return chat.Message{}, err
	}

	call, ok := c.tools.ParseCall(reply.Content)
	if !ok {
		c.append(reply)
		return reply, nil
	}

	c.debugf("tool call requested: %s", call.Tool)
	c.append(reply)
	result, err := c.tools.Execute(call)
	if err != nil {
		return chat.Message{}, fmt.Errorf("run tool: %w", err)
	}
	c.append(chat.SystemMessage(result))

	final, err := c.complete(ctx)
	if err != nil {
		return chat.Message{}, err
	}
	c.append(final)
	if next, chained := c.tools.ParseCall(final.Content); chained {
		loggerpkg.Warn(c.logger, "chained tool call not executed", map[string]any{
			"tool": next.Tool,
		})
	}
	return final, nil
}

// History returns a copy of the conversation so far.
func (c *Conversation) History() []chat.Message {
	return append([]chat.Message(nil), c.history...)
}

func (c *Conversation) complete(ctx context.Context) (chat.Message, error) {
	c.debugf("sending %d message(s)", len(c.history))
	msg, err := c.completer.Complete(ctx, c.History())
	if err != nil {
		loggerpkg.Error(c.logger, "completion failed", map[string]any{
			"history": len(c.history),
			"error":   err.Error(),
		})
		return chat.Message{}, err
	}
	return chat.AssistantMessage(strings.TrimSpace(msg.Content)), nil
}

func (c *Conversation) append(msg chat.Message) {
	c.history = append(c.history, msg)
}

func (c *Conversation) debugf(format string, args ...any) {
	loggerpkg.Debugf(c.verbose, c.logger, format, args...)
}
