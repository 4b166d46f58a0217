package message

import (
	"bytes"
	"io"
	"strings"

	gomessage "github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

// Parse decodes one raw message into a Message. It never fails:
// malformed MIME, unknown charsets and bad byte sequences degrade to
// partial results (missing body or attachments) instead of errors, so
// re-parsing the same bytes always yields the same result. UID and the
// seen flag are session-level data filled in by the caller.
func Parse(raw []byte) *Message {
	msg := &Message{}

	// Read reports unknown charsets and similar defects as errors while
	// still returning a usable entity; only a nil entity is unrecoverable.
	entity, _ := gomessage.Read(bytes.NewReader(raw))
	if entity == nil {
		return msg
	}

	msg.From = DecodeHeader(entity.Header.Get("From"))
	msg.To = DecodeHeader(entity.Header.Get("To"))
	msg.Cc = DecodeHeader(entity.Header.Get("Cc"))
	msg.Subject = DecodeHeader(entity.Header.Get("Subject"))
	msg.Date = entity.Header.Get("Date")
	msg.MessageID = entity.Header.Get("Message-Id")

	if mr := entity.MultipartReader(); mr != nil {
		var b bodyScan
		b.scan(mr)
		switch {
		case b.havePlain:
			msg.Body = b.plain
		case b.haveHTML:
			msg.Body = b.html
		}
		msg.Attachments = b.attachments
	} else if data, err := io.ReadAll(entity.Body); err == nil {
		msg.Body = decodeText(data)
	}

	return msg
}

// ParseSummary builds an envelope summary from header bytes (the body
// need not be present).
func ParseSummary(uid string, raw []byte, seen bool) Summary {
	msg := Parse(raw)
	return Summary{
		UID:     uid,
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Date:    msg.Date,
		Seen:    seen,
	}
}

// bodyScan walks a multipart structure in document order, keeping the
// first non-attachment text/plain and text/html parts and collecting
// attachment metadata.
type bodyScan struct {
	plain, html         string
	havePlain, haveHTML bool
	attachments         []Attachment
}

func (b *bodyScan) scan(mr gomessage.MultipartReader) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return
		}
		if err != nil && part == nil {
			// Malformed part boundary; keep what we have.
			return
		}

		if nested := part.MultipartReader(); nested != nil {
			b.scan(nested)
			continue
		}

		ct, _, _ := part.Header.ContentType()
		disposition := part.Header.Get("Content-Disposition")

		if strings.Contains(disposition, "attachment") {
			b.addAttachment(part, ct)
			continue
		}

		switch {
		case ct == "text/plain" && !b.havePlain:
			if data, err := io.ReadAll(part.Body); err == nil {
				b.plain = decodeText(data)
				b.havePlain = true
			}
		case ct == "text/html" && !b.haveHTML:
			if data, err := io.ReadAll(part.Body); err == nil {
				b.html = decodeText(data)
				b.haveHTML = true
			}
		}
	}
}

func (b *bodyScan) addAttachment(part *gomessage.Entity, ct string) {
	header := mail.AttachmentHeader{Header: part.Header}
	filename, err := header.Filename()
	if err != nil || filename == "" {
		return
	}

	var size int64
	if data, err := io.ReadAll(part.Body); err == nil {
		size = int64(len(data))
	}

	b.attachments = append(b.attachments, Attachment{
		Filename:    DecodeHeader(filename),
		ContentType: ct,
		Size:        size,
	})
}

// decodeText converts decoded part bytes to a string, substituting the
// replacement character for invalid sequences.
func decodeText(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}
