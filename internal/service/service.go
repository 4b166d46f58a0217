// Package service orchestrates mailbox and transfer sessions for the
// tool surface. Every operation opens a fresh session, does its work
// and releases the connection before returning, so no connection state
// is shared between calls.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mail-mcp/mail-mcp/internal/config"
	"github.com/mail-mcp/mail-mcp/internal/imap"
	"github.com/mail-mcp/mail-mcp/internal/message"
	"github.com/mail-mcp/mail-mcp/internal/smtp"
)

// ErrNotFound reports that an operation addressed a message that does
// not exist in the selected folder.
var ErrNotFound = imap.ErrNotFound

// Mailbox is one live IMAP session. Implementations are not safe for
// concurrent use; the service never shares a session between
// operations.
type Mailbox interface {
	ListFolders() ([]string, error)
	Select(folder string, readOnly bool) error
	SearchAll() ([]uint32, error)
	Search(query string) ([]uint32, error)
	FetchHeader(uid uint32) ([]byte, bool, error)
	FetchFull(uid uint32) ([]byte, error)
	Append(folder string, raw []byte) error
	Copy(uid uint32, dest string) error
	MarkDeleted(uid uint32) error
	Expunge() error
	Logout() error
}

// Transport submits a finished message to the outgoing relay.
type Transport interface {
	Send(from string, recipients []string, raw []byte) error
}

// trashCandidates are tried in order when deleting; servers disagree on
// what the trash folder is called.
var trashCandidates = []string{"Trash", "INBOX.Trash", "Deleted Items", "Deleted"}

type Service struct {
	dial       func() (Mailbox, error)
	transport  Transport
	self       string
	sentFolder string
	trash      []string
	logger     *slog.Logger
}

func New(cfg *config.Config, password string, logger *slog.Logger) *Service {
	return &Service{
		dial: func() (Mailbox, error) {
			return imap.Dial(cfg, password)
		},
		transport:  smtp.NewClient(cfg, password),
		self:       cfg.Account.Email,
		sentFolder: cfg.Defaults.SentFolder,
		trash:      trashCandidates,
		logger:     logger,
	}
}

// withMailbox runs fn against a fresh session and guarantees the
// session is released, whether fn succeeds or fails.
func (s *Service) withMailbox(fn func(Mailbox) error) error {
	mbox, err := s.dial()
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer func() {
		if err := mbox.Logout(); err != nil {
			s.logger.Warn("imap logout failed", "error", err)
		}
	}()
	return fn(mbox)
}

// Folders returns the names of every folder in the account.
func (s *Service) Folders() ([]string, error) {
	var folders []string
	err := s.withMailbox(func(m Mailbox) error {
		var err error
		folders, err = m.ListFolders()
		if err != nil {
			return fmt.Errorf("failed to list folders: %w", err)
		}
		return nil
	})
	return folders, err
}

// List returns summaries for the newest count messages in folder,
// newest first. A message whose header cannot be fetched is skipped
// rather than failing the whole listing.
func (s *Service) List(folder string, count int) ([]message.Summary, error) {
	var out []message.Summary
	err := s.withMailbox(func(m Mailbox) error {
		if err := m.Select(folder, true); err != nil {
			return fmt.Errorf("failed to select folder %q: %w", folder, err)
		}
		uids, err := m.SearchAll()
		if err != nil {
			return fmt.Errorf("failed to search folder %q: %w", folder, err)
		}
		out = s.summarize(m, uids, count)
		return nil
	})
	return out, err
}

// Search returns summaries for messages in folder matching query,
// newest first, capped at count.
func (s *Service) Search(folder, query string, count int) ([]message.Summary, error) {
	var out []message.Summary
	err := s.withMailbox(func(m Mailbox) error {
		if err := m.Select(folder, true); err != nil {
			return fmt.Errorf("failed to select folder %q: %w", folder, err)
		}
		uids, err := m.Search(query)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		out = s.summarize(m, uids, count)
		return nil
	})
	return out, err
}

// summarize fetches headers for the last count UIDs and returns them
// newest first. Search results come back in ascending UID order, which
// tracks arrival order closely enough for a mail listing.
func (s *Service) summarize(m Mailbox, uids []uint32, count int) []message.Summary {
	if count > 0 && len(uids) > count {
		uids = uids[len(uids)-count:]
	}
	out := make([]message.Summary, 0, len(uids))
	for i := len(uids) - 1; i >= 0; i-- {
		uid := uids[i]
		raw, seen, err := m.FetchHeader(uid)
		if err != nil {
			s.logger.Warn("failed to fetch header", "uid", uid, "error", err)
			continue
		}
		out = append(out, message.ParseSummary(formatUID(uid), raw, seen))
	}
	return out
}

// Read fetches the full message with the given UID and parses it. The
// folder is opened read-write so the server marks the message as seen.
func (s *Service) Read(folder, uid string) (*message.Message, error) {
	id, err := parseUID(uid)
	if err != nil {
		return nil, err
	}
	var msg *message.Message
	err = s.withMailbox(func(m Mailbox) error {
		if err := m.Select(folder, false); err != nil {
			return fmt.Errorf("failed to select folder %q: %w", folder, err)
		}
		raw, err := m.FetchFull(id)
		if err != nil {
			return err
		}
		msg = message.Parse(raw)
		msg.UID = uid
		msg.Seen = true
		return nil
	})
	return msg, err
}

// Send composes a message and submits it to the relay. Bcc addresses
// join the envelope recipients but are never written into the message
// headers. A copy is appended to the sent folder afterwards; failure
// to save the copy is logged but does not fail the send, since the
// mail is already on the wire.
func (s *Service) Send(to, cc, bcc []string, subject, text, html string) (string, error) {
	if len(to) == 0 {
		return "", errors.New("no recipients given")
	}
	raw, err := message.Compose(message.Outbound{
		From:    s.self,
		To:      to,
		Cc:      cc,
		Subject: subject,
		Text:    text,
		HTML:    html,
	})
	if err != nil {
		return "", fmt.Errorf("failed to compose message: %w", err)
	}
	rcpts := append(append(append([]string{}, to...), cc...), bcc...)
	if err := s.transport.Send(s.self, rcpts, raw); err != nil {
		return "", err
	}
	s.saveSentCopy(raw)
	return fmt.Sprintf("Email sent to %s", strings.Join(to, ", ")), nil
}

// Reply fetches the original message, derives the reply headers from it
// and sends the reply. The fetch happens in its own session, which is
// released before the transfer session opens.
func (s *Service) Reply(folder, uid, body, html string, replyAll bool) (string, error) {
	id, err := parseUID(uid)
	if err != nil {
		return "", err
	}
	var orig *message.Message
	err = s.withMailbox(func(m Mailbox) error {
		if err := m.Select(folder, true); err != nil {
			return fmt.Errorf("failed to select folder %q: %w", folder, err)
		}
		raw, err := m.FetchFull(id)
		if err != nil {
			return err
		}
		orig = message.Parse(raw)
		return nil
	})
	if err != nil {
		return "", err
	}

	hdr := message.ResolveReply(orig, replyAll, s.self)
	if len(hdr.To) == 0 {
		return "", errors.New("could not determine reply recipient")
	}
	raw, err := message.Compose(message.Outbound{
		From:       s.self,
		To:         hdr.To,
		Cc:         hdr.Cc,
		Subject:    hdr.Subject,
		Text:       body,
		HTML:       html,
		InReplyTo:  hdr.InReplyTo,
		References: hdr.References,
	})
	if err != nil {
		return "", fmt.Errorf("failed to compose reply: %w", err)
	}
	rcpts := append(append([]string{}, hdr.To...), hdr.Cc...)
	if err := s.transport.Send(s.self, rcpts, raw); err != nil {
		return "", err
	}
	s.saveSentCopy(raw)
	return fmt.Sprintf("Reply sent to %s", strings.Join(hdr.To, ", ")), nil
}

// Delete removes the message with the given UID from folder. It first
// tries to file the message into a trash folder; if no candidate
// accepts the copy the message is expunged in place.
func (s *Service) Delete(folder, uid string) (string, error) {
	id, err := parseUID(uid)
	if err != nil {
		return "", err
	}
	var result string
	err = s.withMailbox(func(m Mailbox) error {
		if err := m.Select(folder, false); err != nil {
			return fmt.Errorf("failed to select folder %q: %w", folder, err)
		}
		for _, trash := range s.trash {
			if err := m.Copy(id, trash); err != nil {
				continue
			}
			if err := s.expungeOne(m, id); err != nil {
				return err
			}
			result = fmt.Sprintf("Email UID %s moved to %s", uid, trash)
			return nil
		}
		if err := s.expungeOne(m, id); err != nil {
			return err
		}
		result = fmt.Sprintf("Email UID %s deleted", uid)
		return nil
	})
	return result, err
}

func (s *Service) expungeOne(m Mailbox, uid uint32) error {
	if err := m.MarkDeleted(uid); err != nil {
		return fmt.Errorf("failed to mark message deleted: %w", err)
	}
	if err := m.Expunge(); err != nil {
		return fmt.Errorf("failed to expunge: %w", err)
	}
	return nil
}

func (s *Service) saveSentCopy(raw []byte) {
	err := s.withMailbox(func(m Mailbox) error {
		return m.Append(s.sentFolder, raw)
	})
	if err != nil {
		s.logger.Warn("failed to save sent copy", "folder", s.sentFolder, "error", err)
	}
}

func parseUID(uid string) (uint32, error) {
	id, err := strconv.ParseUint(uid, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid uid %q", uid)
	}
	return uint32(id), nil
}

func formatUID(uid uint32) string {
	return strconv.FormatUint(uint64(uid), 10)
}
