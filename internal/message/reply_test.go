package message

import (
	"reflect"
	"testing"
)

func TestResolveReplySubject(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		expected string
	}{
		{"plain subject gains prefix", "Status update", "Re: Status update"},
		{"existing prefix untouched", "Re: Status update", "Re: Status update"},
		{"uppercase prefix untouched", "RE: Status update", "RE: Status update"},
		{"mixed case prefix untouched", "rE: Status update", "rE: Status update"},
		{"prefix inside subject still prefixed", "More: Status", "Re: More: Status"},
		{"empty subject", "", "Re: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := &Message{Subject: tt.subject, From: "a@example.com"}
			r := ResolveReply(orig, false, "me@example.com")
			if r.Subject != tt.expected {
				t.Errorf("Subject = %q, want %q", r.Subject, tt.expected)
			}
		})
	}
}

func TestResolveReplyThreading(t *testing.T) {
	orig := &Message{
		From:      "Alice <alice@example.com>",
		Subject:   "Hi",
		MessageID: "<orig-123@example.com>",
	}

	r := ResolveReply(orig, false, "me@example.com")
	if r.InReplyTo != "<orig-123@example.com>" {
		t.Errorf("InReplyTo = %q", r.InReplyTo)
	}
	if r.References != "<orig-123@example.com>" {
		t.Errorf("References = %q", r.References)
	}
}

func TestResolveReplyPrimaryRecipient(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		expected []string
	}{
		{"bare address", "alice@example.com", []string{"alice@example.com"}},
		{"display name dropped", "Alice Archer <alice@example.com>", []string{"alice@example.com"}},
		{"decoded display name", "René <rene@example.com>", []string{"rene@example.com"}},
		{"unparseable sender", "not an address", nil},
		{"empty sender", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ResolveReply(&Message{From: tt.from}, false, "me@example.com")
			if !reflect.DeepEqual(r.To, tt.expected) {
				t.Errorf("To = %v, want %v", r.To, tt.expected)
			}
		})
	}
}

func TestResolveReplyAll(t *testing.T) {
	orig := &Message{
		From: "alice@example.com",
		To:   "a@example.com, me@example.com",
		Cc:   "b@example.com",
	}

	r := ResolveReply(orig, true, "ME@example.com")
	expected := []string{"a@example.com", "b@example.com"}
	if !reflect.DeepEqual(r.Cc, expected) {
		t.Errorf("Cc = %v, want %v (self excluded case-insensitively)", r.Cc, expected)
	}
	if !reflect.DeepEqual(r.To, []string{"alice@example.com"}) {
		t.Errorf("To = %v", r.To)
	}
}

func TestResolveReplyAllKeepsDuplicates(t *testing.T) {
	// An address listed in both the original To and Cc appears twice;
	// the recipient set is passed through, not normalized.
	orig := &Message{
		From: "alice@example.com",
		To:   "a@example.com",
		Cc:   "a@example.com",
	}

	r := ResolveReply(orig, true, "me@example.com")
	expected := []string{"a@example.com", "a@example.com"}
	if !reflect.DeepEqual(r.Cc, expected) {
		t.Errorf("Cc = %v, want %v", r.Cc, expected)
	}
}

func TestResolveReplyWithoutReplyAll(t *testing.T) {
	orig := &Message{
		From: "alice@example.com",
		To:   "a@example.com, b@example.com",
		Cc:   "c@example.com",
	}

	r := ResolveReply(orig, false, "me@example.com")
	if len(r.Cc) != 0 {
		t.Errorf("Cc = %v, want empty without reply_all", r.Cc)
	}
}
