package message

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// Compose serializes an Outbound into protocol-ready message bytes.
//
// With an empty HTML body the result is a single-part text/plain
// message. With an HTML body it is a multipart/alternative container
// with exactly two children, plain text first so clients without HTML
// rendering fall back to it. Both parts are UTF-8. Cc and the
// threading headers are emitted only when non-empty.
func Compose(out Outbound) ([]byte, error) {
	var header mail.Header
	header.SetDate(time.Now())
	header.Set("From", out.From)
	header.Set("To", strings.Join(out.To, ", "))
	if len(out.Cc) > 0 {
		header.Set("Cc", strings.Join(out.Cc, ", "))
	}
	header.SetSubject(out.Subject)

	if out.InReplyTo != "" {
		header.Set("In-Reply-To", out.InReplyTo)
	}
	if out.References != "" {
		header.Set("References", out.References)
	}
	if out.InReplyTo == "" {
		header.Set("Message-Id", generateMessageID(out.From))
	}

	var buf bytes.Buffer

	if out.HTML == "" {
		header.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
		w, err := mail.CreateSingleInlineWriter(&buf, header)
		if err != nil {
			return nil, fmt.Errorf("failed to create message writer: %w", err)
		}
		if _, err := w.Write([]byte(out.Text)); err != nil {
			return nil, fmt.Errorf("failed to write body: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	iw, err := mail.CreateInlineWriter(&buf, header)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}

	for _, part := range []struct {
		contentType string
		body        string
	}{
		{"text/plain", out.Text},
		{"text/html", out.HTML},
	} {
		var h mail.InlineHeader
		h.SetContentType(part.contentType, map[string]string{"charset": "utf-8"})
		w, err := iw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s part: %w", part.contentType, err)
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("failed to write %s part: %w", part.contentType, err)
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}

	if err := iw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// generateMessageID produces an RFC 5322 Message-ID using the domain of
// the sender address. Format: <timestamp.random@domain>.
func generateMessageID(from string) string {
	domain := "localhost"
	if idx := strings.Index(from, "@"); idx >= 0 && idx < len(from)-1 {
		domain = strings.Trim(from[idx+1:], "> ")
	}

	b := make([]byte, 8)
	_, _ = rand.Read(b)

	return fmt.Sprintf("<%d.%s@%s>", time.Now().UnixNano(), hex.EncodeToString(b), domain)
}
