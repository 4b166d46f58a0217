package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/mail-mcp/mail-mcp/internal/config"
)

func (c *ConfigInitCmd) Run(ctx *Context) error {
	fmt.Println("mail-mcp Configuration Wizard")
	fmt.Println("=============================")
	fmt.Println()
	fmt.Println("This wizard configures the IMAP and SMTP account the server will use.")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	cfg := config.DefaultConfig()

	fmt.Printf("Email address: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email address is required")
	}
	cfg.Account.Email = email

	fmt.Printf("IMAP host: ")
	imapHost, _ := reader.ReadString('\n')
	imapHost = strings.TrimSpace(imapHost)
	if imapHost == "" {
		return fmt.Errorf("IMAP host is required")
	}
	cfg.IMAP.Host = imapHost

	fmt.Printf("IMAP port [%d]: ", config.DefaultIMAPPort)
	imapPortStr, _ := reader.ReadString('\n')
	imapPortStr = strings.TrimSpace(imapPortStr)
	if imapPortStr != "" {
		port, err := strconv.Atoi(imapPortStr)
		if err != nil {
			return fmt.Errorf("invalid IMAP port: %s", imapPortStr)
		}
		cfg.IMAP.Port = port
	}

	fmt.Printf("SMTP host [%s]: ", imapHost)
	smtpHost, _ := reader.ReadString('\n')
	smtpHost = strings.TrimSpace(smtpHost)
	if smtpHost == "" {
		smtpHost = imapHost
	}
	cfg.SMTP.Host = smtpHost

	fmt.Printf("SMTP port [%d]: ", config.DefaultSMTPPort)
	smtpPortStr, _ := reader.ReadString('\n')
	smtpPortStr = strings.TrimSpace(smtpPortStr)
	if smtpPortStr != "" {
		port, err := strconv.Atoi(smtpPortStr)
		if err != nil {
			return fmt.Errorf("invalid SMTP port: %s", smtpPortStr)
		}
		cfg.SMTP.Port = port
	}

	fmt.Println()
	fmt.Print("Account password: ")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := string(passwordBytes)
	if password == "" {
		return fmt.Errorf("password is required")
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if err := cfg.Save(""); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if err := cfg.SetPassword(password); err != nil {
		return fmt.Errorf("failed to store password in keyring: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	fmt.Println("Password stored securely in system keyring.")
	fmt.Println()
	fmt.Println("Start the server with: mail-mcp serve")

	return nil
}

func (c *ConfigShowCmd) Run(ctx *Context) error {
	if ctx.Config == nil {
		return fmt.Errorf("no configuration found - run 'mail-mcp config init' first")
	}

	configPath, _ := config.ConfigPath()
	fmt.Printf("Configuration file: %s\n\n", configPath)

	fmt.Println("Account:")
	fmt.Printf("  Email:     %s\n", ctx.Config.Account.Email)
	fmt.Printf("  IMAP Host: %s\n", ctx.Config.IMAP.Host)
	fmt.Printf("  IMAP Port: %d\n", ctx.Config.IMAP.Port)
	fmt.Printf("  SMTP Host: %s\n", ctx.Config.SMTP.Host)
	fmt.Printf("  SMTP Port: %d\n", ctx.Config.SMTP.Port)

	fmt.Println()
	fmt.Println("Defaults:")
	fmt.Printf("  Folder:      %s\n", ctx.Config.Defaults.Folder)
	fmt.Printf("  Limit:       %d\n", ctx.Config.Defaults.Limit)
	fmt.Printf("  Sent folder: %s\n", ctx.Config.Defaults.SentFolder)

	_, err := ctx.Config.GetPassword()
	fmt.Println()
	if err != nil {
		fmt.Println("Password: not set (run 'mail-mcp config init' to set)")
	} else {
		fmt.Println("Password: ********** (stored in keyring)")
	}

	return nil
}
