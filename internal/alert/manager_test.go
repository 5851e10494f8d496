package alert

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type notifierSpy struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (s *notifierSpy) Notify(ctx context.Context, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *notifierSpy) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

func TestManagerDeliversEvents(t *testing.T) {
	spy := &notifierSpy{}
	m := NewManager("testsvc", spy)

	m.Important("order_placed", map[string]string{"symbol": "BTCUSDT", "side": "BUY"})
	m.Important("order_canceled", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	msgs := spy.all()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0], "[testsvc] important") {
		t.Fatalf("missing header: %q", msgs[0])
	}
	if !strings.Contains(msgs[0], "event: order_placed") {
		t.Fatalf("missing event line: %q", msgs[0])
	}
	if !strings.Contains(msgs[0], "side: BUY") || !strings.Contains(msgs[0], "symbol: BTCUSDT") {
		t.Fatalf("missing field lines: %q", msgs[0])
	}
	if !strings.Contains(msgs[1], "event: order_canceled") {
		t.Fatalf("missing second event: %q", msgs[1])
	}
}

func TestManagerNilIsNoOp(t *testing.T) {
	var m *Manager
	m.Important("anything", nil)
	if err := m.Close(context.Background()); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}

func TestManagerWithoutNotifierIsNil(t *testing.T) {
	if m := NewManager("testsvc", nil); m != nil {
		t.Fatal("expected nil manager without a notifier")
	}
}

func TestManagerSurvivesNotifierErrors(t *testing.T) {
	spy := &notifierSpy{err: errors.New("telegram down")}
	m := NewManager("testsvc", spy)

	m.Important("order_placed", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestManagerIgnoresEventsAfterClose(t *testing.T) {
	spy := &notifierSpy{}
	m := NewManager("testsvc", spy)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	m.Important("late", nil)
	if len(spy.all()) != 0 {
		t.Fatal("event after Close must be dropped")
	}
}
