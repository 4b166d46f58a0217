// Package smtp implements the mail-transfer session: connect, upgrade
// to TLS, authenticate, transmit, close. One session per send.
package smtp

import (
	"bytes"
	"crypto/tls"
	"fmt"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/mail-mcp/mail-mcp/internal/config"
)

type Client struct {
	cfg      *config.Config
	password string
}

func NewClient(cfg *config.Config, password string) *Client {
	return &Client{cfg: cfg, password: password}
}

// Send opens a connection to the relay, upgrades it with STARTTLS,
// authenticates, transmits raw to the given recipients and closes the
// connection. The envelope sender and the recipient list are taken
// verbatim; header-level addressing is the composer's concern.
func (c *Client) Send(from string, recipients []string, raw []byte) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients")
	}

	addr := fmt.Sprintf("%s:%d", c.cfg.SMTP.Host, c.cfg.SMTP.Port)
	tlsConfig := &tls.Config{ServerName: c.cfg.SMTP.Host}

	client, err := smtp.DialStartTLS(addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	auth := sasl.NewPlainClient("", c.cfg.Account.Email, c.password)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := client.SendMail(from, recipients, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return client.Quit()
}
