// Package message implements the mail model: decoding raw RFC 5322
// messages into a structured form and composing outbound mail.
//
// All functions in this package are pure and safe for concurrent use;
// protocol sessions live in the imap, smtp and service packages.
package message

// Summary is the envelope-level view of a message used by list and
// search results.
type Summary struct {
	UID     string `json:"uid"`
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Seen    bool   `json:"seen"`
}

// Message is a fully parsed message. Header values are decoded text;
// Body holds the preferred textual part (see Parse).
type Message struct {
	UID         string       `json:"uid"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	Cc          string       `json:"cc,omitempty"`
	Subject     string       `json:"subject"`
	Date        string       `json:"date"`
	MessageID   string       `json:"message_id,omitempty"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Seen        bool         `json:"seen"`
}

// Attachment describes an attachment part. Only metadata is kept; the
// payload itself is not retained.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Outbound is a composition request, consumed once by Compose.
type Outbound struct {
	From       string
	To         []string
	Cc         []string
	Subject    string
	Text       string
	HTML       string
	InReplyTo  string
	References string
}

// ReplyHeaders is the result of resolving a reply against an original
// message.
type ReplyHeaders struct {
	Subject    string
	To         []string
	Cc         []string
	InReplyTo  string
	References string
}
