package message

import "testing"

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain ascii passthrough", "Weekly report", "Weekly report"},
		{"q encoded utf-8", "=?utf-8?q?Caf=C3=A9?=", "Café"},
		{"b encoded utf-8", "=?UTF-8?B?SMOpbGxv?=", "Héllo"},
		{"latin-1", "=?ISO-8859-1?Q?caf=E9?=", "café"},
		{"literal then encoded", "Hello =?utf-8?q?W=C3=B6rld?=", "Hello Wörld"},
		{"encoded then literal", "=?utf-8?q?W=C3=B6rld?= wide", "Wörld wide"},
		{"adjacent encoded words", "=?utf-8?q?foo?= =?utf-8?q?bar?=", "foo bar"},
		{"unknown charset falls back", "=?x-nonsense?q?hi?=", "hi"},
		{"lowercase q", "=?utf-8?q?=74=65=73=74?=", "test"},
		{"angle brackets untouched", "John <john@example.com>", "John <john@example.com>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DecodeHeader(tt.input)
			if result != tt.expected {
				t.Errorf("DecodeHeader(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDecodeHeaderMalformedWord(t *testing.T) {
	// A truncated encoded-word must not panic or vanish entirely.
	input := "=?utf-8?q?unterminated"
	if result := DecodeHeader(input); result != input {
		t.Errorf("DecodeHeader(%q) = %q, want passthrough", input, result)
	}
}
