package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/minhyannv/velocity-agent-go/pkg/chat"
	"github.com/minhyannv/velocity-agent-go/pkg/tools"
)

type scriptedCompleter struct {
	replies []string
	errAt   int
	seen    [][]chat.Message
}

func (s *scriptedCompleter) Complete(_ context.Context, messages []chat.Message) (chat.Message, error) {
	s.seen = append(s.seen, messages)
	call := len(s.seen)
	if s.errAt == call {
		return chat.Message{}, errors.New("all endpoint/auth attempts failed")
	}
	if call > len(s.replies) {
		return chat.Message{}, errors.New("unexpected completion call")
	}
	return chat.AssistantMessage(s.replies[call-1]), nil
}

type logEntry struct {
	level string
	msg   string
}

type recordingLogger struct {
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string) {
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func (l *recordingLogger) Info(msg string, _ any)  { l.add("INFO", msg) }
func (l *recordingLogger) Warn(msg string, _ any)  { l.add("WARN", msg) }
func (l *recordingLogger) Debug(msg string, _ any) { l.add("DEBUG", msg) }
func (l *recordingLogger) Error(msg string, _ any) { l.add("ERROR", msg) }

func (l *recordingLogger) has(level, msg string) bool {
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

func seed() []chat.Message {
	return []chat.Message{chat.SystemMessage("sys")}
}

func roles(msgs []chat.Message) []chat.Role {
	out := make([]chat.Role, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Role)
	}
	return out
}

func TestRunPlainReply(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{"  Hello!  "}}
	conv, err := New(completer, tools.New(), seed())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	reply, err := conv.Run(context.Background(), " hi ")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if reply.Content != "Hello!" {
		t.Fatalf("unexpected reply: %q", reply.Content)
	}

	history := conv.History()
	want := []chat.Message{
		chat.SystemMessage("sys"),
		chat.UserMessage("hi"),
		chat.AssistantMessage("Hello!"),
	}
	if len(history) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(history))
	}
	for i := range want {
		if history[i] != want[i] {
			t.Fatalf("message %d: expected %+v, got %+v", i, want[i], history[i])
		}
	}
	if len(completer.seen) != 1 || len(completer.seen[0]) != 2 {
		t.Fatalf("expected one completion with 2 messages, got %+v", completer.seen)
	}
}

func TestRunToolRoundTrip(t *testing.T) {
	toolText := `{"tool":"get_order_status","order_id":"A1001"}`
	completer := &scriptedCompleter{replies: []string{toolText, "Your order shipped with DHL."}}
	conv, err := New(completer, tools.New(), seed())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	reply, err := conv.Run(context.Background(), "where is A1001?")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if reply.Content != "Your order shipped with DHL." {
		t.Fatalf("unexpected reply: %q", reply.Content)
	}

	turn := conv.History()[1:]
	wantRoles := []chat.Role{chat.RoleUser, chat.RoleAssistant, chat.RoleSystem, chat.RoleAssistant}
	gotRoles := roles(turn)
	if len(gotRoles) != len(wantRoles) {
		t.Fatalf("expected roles %v, got %v", wantRoles, gotRoles)
	}
	for i := range wantRoles {
		if gotRoles[i] != wantRoles[i] {
			t.Fatalf("expected roles %v, got %v", wantRoles, gotRoles)
		}
	}
	if turn[1].Content != toolText {
		t.Fatalf("expected raw tool text, got %q", turn[1].Content)
	}
	wantResult := `TOOL_RESULT get_order_status(A1001) => {"status":"Shipped","carrier":"DHL","eta":"2-3 days"}`
	if turn[2].Content != wantResult {
		t.Fatalf("unexpected tool result message: %q", turn[2].Content)
	}

	if len(completer.seen) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(completer.seen))
	}
	second := completer.seen[1]
	if len(second) != 4 || second[len(second)-1].Content != wantResult {
		t.Fatalf("second completion must include the tool result, got %+v", second)
	}
}

func TestRunDoesNotChainToolCalls(t *testing.T) {
	toolText := `{"tool":"get_order_status","order_id":"A1002"}`
	completer := &scriptedCompleter{replies: []string{toolText, toolText}}
	logs := &recordingLogger{}
	conv, _ := New(completer, tools.New(), seed(), WithLogger(logs))

	reply, err := conv.Run(context.Background(), "status?")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if reply.Content != toolText {
		t.Fatalf("expected second reply to be returned verbatim, got %q", reply.Content)
	}
	if len(completer.seen) != 2 {
		t.Fatalf("expected exactly 2 completions, got %d", len(completer.seen))
	}
	if !logs.has("WARN", "chained tool call not executed") {
		t.Fatalf("expected a warning for the unexecuted tool call, got %+v", logs.entries)
	}
}

func TestRunFailureKeepsHistory(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{`{"tool":"get_order_status","order_id":"A1003"}`}, errAt: 2}
	logs := &recordingLogger{}
	conv, _ := New(completer, tools.New(), seed(), WithLogger(logs))

	_, err := conv.Run(context.Background(), "status of A1003")
	if err == nil || !strings.Contains(err.Error(), "all endpoint/auth attempts failed") {
		t.Fatalf("expected completion error, got %v", err)
	}

	gotRoles := roles(conv.History())
	wantRoles := []chat.Role{chat.RoleSystem, chat.RoleUser, chat.RoleAssistant, chat.RoleSystem}
	if len(gotRoles) != len(wantRoles) {
		t.Fatalf("expected history %v, got %v", wantRoles, gotRoles)
	}
	if !logs.has("ERROR", "completion failed") {
		t.Fatalf("expected the failed completion to be logged, got %+v", logs.entries)
	}
}

func TestRunRejectsEmptyInput(t *testing.T) {
	completer := &scriptedCompleter{}
	conv, _ := New(completer, tools.New(), seed())

	if _, err := conv.Run(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty input")
	}
	if len(completer.seen) != 0 || len(conv.History()) != 1 {
		t.Fatal("empty input must not touch history or the completer")
	}
}

func TestHistoryIsACopy(t *testing.T) {
	conv, _ := New(&scriptedCompleter{}, tools.New(), seed())
	h := conv.History()
	h[0].Content = "mutated"
	if conv.History()[0].Content != "sys" {
		t.Fatal("History must not expose internal state")
	}
}

func TestNewValidatesDependencies(t *testing.T) {
	if _, err := New(nil, tools.New(), nil); err == nil {
		t.Fatal("expected error for nil completer")
	}
	if _, err := New(&scriptedCompleter{}, nil, nil); err == nil {
		t.Fatal("expected error for nil tool runner")
	}
}
