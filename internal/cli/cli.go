package cli

import (
	"log/slog"
	"os"

	"github.com/mail-mcp/mail-mcp/internal/config"
)

var Version = "0.1.0"

type Globals struct {
	Config  string `help:"Path to config file" short:"c" type:"path"`
	Verbose bool   `help:"Verbose logging" short:"v"`
}

type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the MCP server on stdio"`
	Config  ConfigCmd  `cmd:"" help:"Configuration management"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

type Context struct {
	Config  *config.Config
	Globals *Globals
	Logger  *slog.Logger
}

// NewContext loads configuration and prepares logging. The log handler
// writes to stderr; stdout belongs to the MCP transport.
func NewContext(globals *Globals) (*Context, error) {
	level := slog.LevelInfo
	if globals.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Load handles the file-absent case itself (environment-only setups
	// are valid); a present but unreadable file is a real error.
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return nil, err
	}

	return &Context{
		Config:  cfg,
		Globals: globals,
		Logger:  logger,
	}, nil
}

type ServeCmd struct{}

// ConfigCmd handles configuration management
type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Interactive setup wizard"`
	Show ConfigShowCmd `cmd:"" help:"Display current configuration"`
}

type ConfigInitCmd struct{}

type ConfigShowCmd struct{}

// VersionCmd shows version information
type VersionCmd struct{}
