package message

import (
	"net/mail"
	"strings"
)

// ResolveReply derives the subject, recipients and threading headers
// for a reply to orig.
//
// The primary recipient is the address portion of the original sender;
// when that header has no parseable address To is empty and the caller
// is responsible for refusing to send. With replyAll, the addresses of
// the original To and Cc headers become the outgoing Cc, excluding
// self (case-insensitive). An address present in both original headers
// is listed twice; callers relying on this path get the exact original
// recipient set rather than a normalized one.
//
// In-Reply-To and References both carry the original Message-ID only;
// ancestor chains are not accumulated.
func ResolveReply(orig *Message, replyAll bool, self string) ReplyHeaders {
	subject := orig.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	r := ReplyHeaders{
		Subject:    subject,
		InReplyTo:  orig.MessageID,
		References: orig.MessageID,
	}

	if sender := parseAddresses(orig.From); len(sender) > 0 {
		r.To = []string{sender[0]}
	}

	if replyAll {
		for _, header := range []string{orig.To, orig.Cc} {
			for _, addr := range parseAddresses(header) {
				if strings.EqualFold(addr, self) {
					continue
				}
				r.Cc = append(r.Cc, addr)
			}
		}
	}

	return r
}

// parseAddresses extracts the bare address portions of an address
// header value, dropping display names. Unparseable input yields nil.
func parseAddresses(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}

	list, err := mail.ParseAddressList(header)
	if err != nil {
		// Decoded display names can confuse strict parsing; salvage a
		// bare angle-bracket address if one is present.
		if start := strings.Index(header, "<"); start != -1 {
			if end := strings.Index(header[start:], ">"); end > 1 {
				return []string{header[start+1 : start+end]}
			}
		}
		return nil
	}

	addrs := make([]string, 0, len(list))
	for _, a := range list {
		if a.Address != "" {
			addrs = append(addrs, a.Address)
		}
	}
	return addrs
}
