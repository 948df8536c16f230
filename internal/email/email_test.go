package email_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/ErlanBelekov/credit-market/internal/email"
)

func TestWelcome_EscapesUserName(t *testing.T) {
	msg, err := email.Welcome("new@example.com", "<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Welcome: %v", err)
	}
	if msg.To != "new@example.com" {
		t.Errorf("to = %q", msg.To)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Errorf("user name not escaped: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "new@example.com") {
		t.Errorf("body missing address: %s", msg.HTML)
	}
}

func TestWelcome_NoNameFallsBack(t *testing.T) {
	msg, err := email.Welcome("new@example.com", "")
	if err != nil {
		t.Fatalf("Welcome: %v", err)
	}
	if !strings.Contains(msg.HTML, "Hi there") {
		t.Errorf("expected fallback greeting: %s", msg.HTML)
	}
}

func TestNewSender_LocalLogsOnly(t *testing.T) {
	s := email.NewSender("local", "", "", slog.Default())
	if _, ok := s.(*email.LogSender); !ok {
		t.Fatalf("want *LogSender for local, got %T", s)
	}
	if err := s.Send(context.Background(), email.Message{To: "a@b.co", Subject: "x"}); err != nil {
		t.Errorf("Send: %v", err)
	}
}
