package mcpserver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mail-mcp/mail-mcp/internal/service"
)

func testServer() *Server {
	return &Server{
		defaultFolder: "INBOX",
		defaultCount:  20,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestFolderDefault(t *testing.T) {
	s := testServer()

	tests := []struct {
		in   string
		want string
	}{
		{"", "INBOX"},
		{"Archive", "Archive"},
	}
	for _, tt := range tests {
		if got := s.folder(tt.in); got != tt.want {
			t.Errorf("folder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCountDefault(t *testing.T) {
	s := testServer()

	tests := []struct {
		in   int
		want int
	}{
		{0, 20},
		{-1, 20},
		{5, 5},
	}
	for _, tt := range tests {
		if got := s.count(tt.in); got != tt.want {
			t.Errorf("count(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestErrResult(t *testing.T) {
	s := testServer()

	result := s.errResult("email_read", errors.New("select failed"))
	if !result.IsError {
		t.Error("IsError should be set")
	}
	if len(result.Content) != 1 {
		t.Fatalf("content length = %d, want 1", len(result.Content))
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want *mcp.TextContent", result.Content[0])
	}
	if text.Text != "select failed" {
		t.Errorf("text = %q", text.Text)
	}
}

func TestErrResultNotFound(t *testing.T) {
	s := testServer()

	result := s.errResult("email_read", fmt.Errorf("uid 42: %w", service.ErrNotFound))
	if !result.IsError {
		t.Error("IsError should be set")
	}
	text := result.Content[0].(*mcp.TextContent)
	if !strings.HasPrefix(text.Text, "message not found") {
		t.Errorf("text = %q, want a not-found description", text.Text)
	}
}
