package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mail-mcp/mail-mcp/internal/mcpserver"
	"github.com/mail-mcp/mail-mcp/internal/service"
)

func (c *ServeCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w (run 'mail-mcp config init')", err)
	}

	password, err := cfg.GetPassword()
	if err != nil {
		return fmt.Errorf("no password available: %w (run 'mail-mcp config init' or set EMAIL_PASSWORD)", err)
	}

	svc := service.New(cfg, password, ctx.Logger)
	server := mcpserver.New(svc, cfg.Defaults.Folder, cfg.Defaults.Limit, Version, ctx.Logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx.Logger.Info("starting MCP server on stdio", "account", cfg.Account.Email, "version", Version)
	if err := server.Run(runCtx, &mcp.StdioTransport{}); err != nil && runCtx.Err() == nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
