package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const (
	AppName = "mail-mcp"

	DefaultIMAPPort = 993
	DefaultSMTPPort = 587
)

type IMAPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type SMTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AccountConfig struct {
	Email string `yaml:"email"`
}

type DefaultsConfig struct {
	Folder     string `yaml:"folder"`
	Limit      int    `yaml:"limit"`
	SentFolder string `yaml:"sent_folder"`
}

type Config struct {
	IMAP     IMAPConfig     `yaml:"imap"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Account  AccountConfig  `yaml:"account"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

func DefaultConfig() *Config {
	return &Config{
		IMAP: IMAPConfig{Port: DefaultIMAPPort},
		SMTP: SMTPConfig{Port: DefaultSMTPPort},
		Defaults: DefaultsConfig{
			Folder:     "INBOX",
			Limit:      20,
			SentFolder: "Sent",
		},
	}
}

func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, AppName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the YAML config file and layers environment overrides on
// top. A missing file is not an error when an explicit path was not
// given: an environment-only setup is valid, and Validate decides
// whether the result is complete.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
		// Fall through to environment overrides.
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with the environment variables the
// server recognizes: IMAP_HOST, IMAP_PORT, SMTP_HOST, SMTP_PORT and
// EMAIL_USER.
func (c *Config) applyEnv() {
	if v := os.Getenv("IMAP_HOST"); v != "" {
		c.IMAP.Host = v
	}
	if v := os.Getenv("IMAP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.IMAP.Port = port
		}
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv("EMAIL_USER"); v != "" {
		c.Account.Email = v
	}
}

// Validate reports the settings an operation cannot run without.
// Callers treat a failure here as fatal before any session is opened.
func (c *Config) Validate() error {
	if c.Account.Email == "" {
		return errors.New("account email is not configured (set account.email or EMAIL_USER)")
	}
	if c.IMAP.Host == "" {
		return errors.New("IMAP host is not configured (set imap.host or IMAP_HOST)")
	}
	if c.SMTP.Host == "" {
		return errors.New("SMTP host is not configured (set smtp.host or SMTP_HOST)")
	}
	if c.IMAP.Port <= 0 || c.IMAP.Port > 65535 {
		return fmt.Errorf("invalid IMAP port: %d", c.IMAP.Port)
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
	}
	return nil
}

func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) SetPassword(password string) error {
	if c.Account.Email == "" {
		return errors.New("email must be set before storing password")
	}
	return keyring.Set(AppName, c.Account.Email, password)
}

// GetPassword resolves the account credential: the system keyring
// first, then the EMAIL_PASSWORD environment variable.
func (c *Config) GetPassword() (string, error) {
	if c.Account.Email == "" {
		return "", errors.New("email not configured")
	}

	password, err := keyring.Get(AppName, c.Account.Email)
	if err == nil {
		return password, nil
	}

	if env := os.Getenv("EMAIL_PASSWORD"); env != "" {
		return env, nil
	}

	if errors.Is(err, keyring.ErrNotFound) {
		return "", errors.New("password not found - run 'mail-mcp config init' or set EMAIL_PASSWORD")
	}
	return "", fmt.Errorf("failed to get password from keyring: %w", err)
}

func DeletePassword(email string) error {
	return keyring.Delete(AppName, email)
}

func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
