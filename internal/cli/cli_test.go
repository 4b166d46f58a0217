package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestNewContextExplicitConfig(t *testing.T) {
	t.Setenv("EMAIL_USER", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("imap:\n  host: mail.example.com\n  port: 993\nsmtp:\n  host: mail.example.com\n  port: 587\naccount:\n  email: me@example.com\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, err := NewContext(&Globals{Config: path})
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	if ctx.Config.Account.Email != "me@example.com" {
		t.Errorf("Email = %q, want %q", ctx.Config.Account.Email, "me@example.com")
	}
	if ctx.Logger == nil {
		t.Error("Logger should not be nil")
	}
}

func TestNewContextMalformedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("imap: [not a mapping"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewContext(&Globals{Config: path}); err == nil {
		t.Fatal("expected an error for a malformed config file")
	}
}

func TestNewContextMissingExplicitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	if _, err := NewContext(&Globals{Config: path}); err == nil {
		t.Fatal("expected an error for a missing explicit config path")
	}
}
