// Package imap implements the mailbox-access session. A Session wraps
// one authenticated IMAP connection; callers open a fresh session per
// operation and release it with Logout.
package imap

import (
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/mail-mcp/mail-mcp/internal/config"
)

// ErrNotFound reports that a UID is absent from the selected folder.
var ErrNotFound = errors.New("message not found")

type Session struct {
	client *imapclient.Client
}

// Dial connects to the IMAP server over TLS and authenticates. The
// returned session must be released with Logout.
func Dial(cfg *config.Config, password string) (*Session, error) {
	addr := fmt.Sprintf("%s:%d", cfg.IMAP.Host, cfg.IMAP.Port)

	options := &imapclient.Options{
		TLSConfig: &tls.Config{ServerName: cfg.IMAP.Host},
	}

	client, err := imapclient.DialTLS(addr, options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := client.Login(cfg.Account.Email, password).Wait(); err != nil {
		client.Close()
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	return &Session{client: client}, nil
}

// Logout releases the session. Logout errors are not interesting to
// callers; the connection is closed either way.
func (s *Session) Logout() error {
	if err := s.client.Logout().Wait(); err != nil {
		return s.client.Close()
	}
	return s.client.Close()
}

func (s *Session) ListFolders() ([]string, error) {
	mailboxes, err := s.client.List("", "*", nil).Collect()
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	names := make([]string, 0, len(mailboxes))
	for _, mb := range mailboxes {
		names = append(names, mb.Mailbox)
	}
	return names, nil
}

func (s *Session) Select(folder string, readOnly bool) error {
	options := &imap.SelectOptions{ReadOnly: readOnly}
	if _, err := s.client.Select(folder, options).Wait(); err != nil {
		return fmt.Errorf("failed to select folder %s: %w", folder, err)
	}
	return nil
}

// SearchAll returns every UID in the selected folder in mailbox order.
func (s *Session) SearchAll() ([]uint32, error) {
	return s.search(&imap.SearchCriteria{})
}

// Search translates the query syntax (see ParseQuery) and returns the
// matching UIDs in mailbox order.
func (s *Session) Search(query string) ([]uint32, error) {
	criteria, err := ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("invalid search query: %w", err)
	}
	return s.search(criteria)
}

func (s *Session) search(criteria *imap.SearchCriteria) ([]uint32, error) {
	data, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	found := data.AllUIDs()
	uids := make([]uint32, len(found))
	for i, uid := range found {
		uids[i] = uint32(uid)
	}
	return uids, nil
}

// FetchHeader fetches the header section of one message without
// touching its seen state, along with whether it is already seen.
func (s *Session) FetchHeader(uid uint32) ([]byte, bool, error) {
	section := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierHeader,
		Peek:      true,
	}
	raw, flags, err := s.fetchSection(uid, section)
	if err != nil {
		return nil, false, err
	}

	seen := false
	for _, f := range flags {
		if f == imap.FlagSeen {
			seen = true
		}
	}
	return raw, seen, nil
}

// FetchFull fetches the complete raw message. The fetch is not a peek,
// so the server marks the message seen.
func (s *Session) FetchFull(uid uint32) ([]byte, error) {
	section := &imap.FetchItemBodySection{}
	raw, _, err := s.fetchSection(uid, section)
	return raw, err
}

func (s *Session) fetchSection(uid uint32, section *imap.FetchItemBodySection) ([]byte, []imap.Flag, error) {
	options := &imap.FetchOptions{
		UID:         true,
		Flags:       true,
		BodySection: []*imap.FetchItemBodySection{section},
	}

	msgs, err := s.client.Fetch(imap.UIDSetNum(imap.UID(uid)), options).Collect()
	if err != nil {
		return nil, nil, fmt.Errorf("fetch failed: %w", err)
	}
	if len(msgs) == 0 {
		return nil, nil, fmt.Errorf("uid %d: %w", uid, ErrNotFound)
	}

	buf := msgs[0]
	raw := buf.FindBodySection(section)
	if raw == nil {
		return nil, nil, fmt.Errorf("uid %d: %w", uid, ErrNotFound)
	}
	return raw, buf.Flags, nil
}

// Append stores raw as a new message in folder, flagged seen with the
// current timestamp.
func (s *Session) Append(folder string, raw []byte) error {
	options := &imap.AppendOptions{
		Flags: []imap.Flag{imap.FlagSeen},
		Time:  time.Now(),
	}

	cmd := s.client.Append(folder, int64(len(raw)), options)
	if _, err := cmd.Write(raw); err != nil {
		cmd.Close()
		return fmt.Errorf("failed to append to %s: %w", folder, err)
	}
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("failed to append to %s: %w", folder, err)
	}
	if _, err := cmd.Wait(); err != nil {
		return fmt.Errorf("failed to append to %s: %w", folder, err)
	}
	return nil
}

func (s *Session) Copy(uid uint32, dest string) error {
	if _, err := s.client.Copy(imap.UIDSetNum(imap.UID(uid)), dest).Wait(); err != nil {
		return fmt.Errorf("failed to copy to %s: %w", dest, err)
	}
	return nil
}

func (s *Session) MarkDeleted(uid uint32) error {
	cmd := s.client.Store(imap.UIDSetNum(imap.UID(uid)), &imap.StoreFlags{
		Op:    imap.StoreFlagsAdd,
		Flags: []imap.Flag{imap.FlagDeleted},
	}, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("failed to mark message deleted: %w", err)
	}
	return nil
}

func (s *Session) Expunge() error {
	if err := s.client.Expunge().Close(); err != nil {
		return fmt.Errorf("failed to expunge: %w", err)
	}
	return nil
}
