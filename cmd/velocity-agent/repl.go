package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minhyannv/velocity-agent-go/pkg/chat"
)

// turnRunner runs one conversation turn.
type turnRunner interface {
	Run(ctx context.Context, userInput string) (chat.Message, error)
}

// runREPL reads user lines until exit, quit or EOF. A failed turn ends the
// session with an error.
func runREPL(ctx context.Context, conv turnRunner, in io.Reader, out io.Writer) error {
	if conv == nil {
		return fmt.Errorf("conversation is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}

	scanner := bufio.NewScanner(in)
	printWelcome(out)

	for {
		_, _ = fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if isExitCommand(input) {
			_, _ = fmt.Fprintln(out, "Bye.")
			return nil
		}
		if input == "" {
			continue
		}

		reply, err := conv.Run(ctx, input)
		if err != nil {
			return fmt.Errorf("chat turn: %w", err)
		}
		_, _ = fmt.Fprintf(out, "\nBot: %s\n\n", reply.Content)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func isExitCommand(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit":
		return true
	default:
		return false
	}
}

func printWelcome(out io.Writer) {
	_, _ = fmt.Fprintln(out, "velocity-agent - product catalog + order status tool")
	_, _ = fmt.Fprintln(out, "Type 'exit' to quit.")
	_, _ = fmt.Fprintln(out)
}
