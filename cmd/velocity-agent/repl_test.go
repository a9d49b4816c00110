package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minhyannv/velocity-agent-go/pkg/chat"
	configpkg "github.com/minhyannv/velocity-agent-go/pkg/config"
	loggerpkg "github.com/minhyannv/velocity-agent-go/pkg/logger"
)

type fakeRunner struct {
	inputs []string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, input string) (chat.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return chat.Message{}, f.err
	}
	return chat.AssistantMessage("echo: " + input), nil
}

func TestRunREPLSkipsEmptyLinesAndExits(t *testing.T) {
	runner := &fakeRunner{}
	var out bytes.Buffer

	err := runREPL(context.Background(), runner, strings.NewReader("\n   \nhello\nQuIt\nnever sent\n"), &out)
	if err != nil {
		t.Fatalf("runREPL returned error: %v", err)
	}
	if len(runner.inputs) != 1 || runner.inputs[0] != "hello" {
		t.Fatalf("unexpected inputs: %v", runner.inputs)
	}
	if !strings.Contains(out.String(), "\nBot: echo: hello\n\n") {
		t.Fatalf("missing reply in output:\n%s", out.String())
	}
	if !strings.HasSuffix(out.String(), "Bye.\n") {
		t.Fatalf("expected farewell, got:\n%s", out.String())
	}
}

func TestRunREPLEndsOnEOF(t *testing.T) {
	runner := &fakeRunner{}
	if err := runREPL(context.Background(), runner, strings.NewReader("hi"), io.Discard); err != nil {
		t.Fatalf("runREPL returned error: %v", err)
	}
	if len(runner.inputs) != 1 {
		t.Fatalf("expected one turn, got %v", runner.inputs)
	}
}

func TestRunREPLTurnFailureIsFatal(t *testing.T) {
	runner := &fakeRunner{err: errors.New("all endpoint/auth attempts failed")}

	err := runREPL(context.Background(), runner, strings.NewReader("first\nsecond\n"), io.Discard)
	if err == nil || !strings.Contains(err.Error(), "all endpoint/auth attempts failed") {
		t.Fatalf("expected fatal turn error, got %v", err)
	}
	if len(runner.inputs) != 1 {
		t.Fatalf("expected the session to stop after the failed turn, got %v", runner.inputs)
	}
}

func TestIsExitCommand(t *testing.T) {
	for _, in := range []string{"exit", "EXIT", "Quit", "quit"} {
		if !isExitCommand(in) {
			t.Fatalf("expected %q to exit", in)
		}
	}
	for _, in := range []string{"", "exit now", "q", "/exit"} {
		if isExitCommand(in) {
			t.Fatalf("expected %q not to exit", in)
		}
	}
}

func TestNewConversationMissingAPIKeyMakesNoRequest(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer server.Close()

	cfg := configpkg.DefaultConfig()
	cfg.BaseURL = server.URL

	_, err := newConversation(cfg, loggerpkg.NopLogger{})
	var cfgErr *configpkg.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if hits != 0 {
		t.Fatalf("expected no network calls, got %d", hits)
	}
}

func TestSessionWithToolRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		n := len(bodies)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"{\"tool\":\"get_order_status\",\"order_id\":\"A1001\"}"}}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"A1001 shipped via DHL, 2-3 days."}}]}`)
	}))
	defer server.Close()

	dir := t.TempDir()
	promptPath := filepath.Join(dir, "prompt.txt")
	catalogPath := filepath.Join(dir, "products.json")
	if err := os.WriteFile(promptPath, []byte("You are a support agent."), 0o644); err != nil {
		t.Fatalf("write prompt: %v", err)
	}
	if err := os.WriteFile(catalogPath, []byte(`[{"sku":"P-1","name":"Kettle"}]`), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cfg := configpkg.DefaultConfig()
	cfg.APIKey = "k"
	cfg.BaseURL = server.URL
	cfg.Timeout = 5 * time.Second
	cfg.PromptPath = promptPath
	cfg.CatalogPath = catalogPath

	var logs bytes.Buffer
	conv, err := newConversation(cfg, loggerpkg.NewWriterLogger(&logs))
	if err != nil {
		t.Fatalf("newConversation: %v", err)
	}

	var out bytes.Buffer
	if err := runREPL(context.Background(), conv, strings.NewReader("where is A1001?\nexit\n"), &out); err != nil {
		t.Fatalf("runREPL: %v", err)
	}
	if !strings.Contains(out.String(), "Bot: A1001 shipped via DHL, 2-3 days.") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 2 {
		t.Fatalf("expected 2 completion requests, got %d", len(bodies))
	}
	if !strings.Contains(bodies[1], "TOOL_RESULT get_order_status(A1001)") {
		t.Fatalf("second request must carry the tool result, got %s", bodies[1])
	}
	if !strings.Contains(bodies[0], "PRODUCT CATALOG:") || !strings.Contains(bodies[0], "TOOL INSTRUCTIONS:") {
		t.Fatalf("first request must carry the startup system messages, got %s", bodies[0])
	}
	if !strings.Contains(logs.String(), "chat: endpoint selected") {
		t.Fatalf("expected endpoint diagnostic, got %q", logs.String())
	}

	history := conv.History()
	if len(history) != 7 {
		t.Fatalf("expected 3 system + 4 turn messages, got %d", len(history))
	}
}
