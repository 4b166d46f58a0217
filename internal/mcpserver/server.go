// Package mcpserver exposes the mail operations as MCP tools over a
// stdio transport.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mail-mcp/mail-mcp/internal/message"
	"github.com/mail-mcp/mail-mcp/internal/service"
)

const instructions = `Tools for working with a personal email account over IMAP and SMTP.

Use email_list to see recent messages in a folder and email_search to find
specific ones; both return summaries with a uid field. Pass that uid to
email_read, email_reply or email_delete. Folder names come from
email_folders; when in doubt, INBOX is always valid.

Search queries are a sequence of implicitly combined terms. Plain words
match the full message text; keyword terms take the following token as
their value: from, to, cc, subject, body, text, since and before (dates
as 2006-01-02 or 02-Jan-2006). Flag terms stand alone: unseen, seen,
answered, flagged. OR combines the two terms after it. Quote values
that contain spaces, e.g. from alice@example.com subject "status
report" since 2024-01-01 unseen.

Reading a message marks it as seen. Deleting moves the message to the
account's trash folder when one exists, otherwise it is removed
permanently.`

type foldersInput struct{}

type foldersOutput struct {
	Folders []string `json:"folders" jsonschema:"folder names available in the account"`
}

type listInput struct {
	Folder string `json:"folder,omitempty" jsonschema:"folder to list, defaults to INBOX"`
	Count  int    `json:"count,omitempty" jsonschema:"maximum number of messages to return, defaults to 20"`
}

type listOutput struct {
	Messages []message.Summary `json:"messages" jsonschema:"message summaries, newest first"`
}

type readInput struct {
	UID    string `json:"uid" jsonschema:"uid of the message, as returned by email_list or email_search"`
	Folder string `json:"folder,omitempty" jsonschema:"folder containing the message, defaults to INBOX"`
}

type searchInput struct {
	Query  string `json:"query" jsonschema:"search query, e.g. 'from alice@example.com unseen since 2024-01-01'"`
	Folder string `json:"folder,omitempty" jsonschema:"folder to search, defaults to INBOX"`
	Count  int    `json:"count,omitempty" jsonschema:"maximum number of results, defaults to 20"`
}

type sendInput struct {
	To       []string `json:"to" jsonschema:"recipient email addresses"`
	Cc       []string `json:"cc,omitempty" jsonschema:"carbon-copy email addresses"`
	Bcc      []string `json:"bcc,omitempty" jsonschema:"blind-carbon-copy addresses, delivered but not shown in headers"`
	Subject  string   `json:"subject" jsonschema:"subject line"`
	Body     string   `json:"body" jsonschema:"plain-text message body"`
	HTMLBody string   `json:"html_body,omitempty" jsonschema:"optional HTML alternative for the body"`
}

type replyInput struct {
	UID      string `json:"uid" jsonschema:"uid of the message to reply to"`
	Body     string `json:"body" jsonschema:"plain-text reply body"`
	HTMLBody string `json:"html_body,omitempty" jsonschema:"optional HTML alternative for the reply body"`
	Folder   string `json:"folder,omitempty" jsonschema:"folder containing the original message, defaults to INBOX"`
	ReplyAll bool   `json:"reply_all,omitempty" jsonschema:"also address the original To and Cc recipients"`
}

type deleteInput struct {
	UID    string `json:"uid" jsonschema:"uid of the message to delete"`
	Folder string `json:"folder,omitempty" jsonschema:"folder containing the message, defaults to INBOX"`
}

type textOutput struct {
	Result string `json:"result" jsonschema:"confirmation of the completed action"`
}

// Server wires the mail service into an MCP server.
type Server struct {
	svc           *service.Service
	defaultFolder string
	defaultCount  int
	logger        *slog.Logger
}

func New(svc *service.Service, defaultFolder string, defaultCount int, version string, logger *slog.Logger) *mcp.Server {
	s := &Server{
		svc:           svc,
		defaultFolder: defaultFolder,
		defaultCount:  defaultCount,
		logger:        logger,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mail-mcp",
		Version: version,
	}, &mcp.ServerOptions{
		Instructions: instructions,
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "email_folders",
		Description: "List the folders available in the email account",
	}, s.folders)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "email_list",
		Description: "List the most recent messages in a folder, newest first",
	}, s.list)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "email_read",
		Description: "Read a message in full, including its body and attachment list",
	}, s.read)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "email_search",
		Description: "Search a folder for messages matching a query",
	}, s.search)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "email_send",
		Description: "Compose and send a new email",
	}, s.send)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "email_reply",
		Description: "Reply to an existing message, preserving the conversation thread",
	}, s.reply)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "email_delete",
		Description: "Delete a message, moving it to trash when the account has one",
	}, s.delete)

	return server
}

func (s *Server) folder(in string) string {
	if in == "" {
		return s.defaultFolder
	}
	return in
}

func (s *Server) count(in int) int {
	if in <= 0 {
		return s.defaultCount
	}
	return in
}

func (s *Server) folders(ctx context.Context, req *mcp.CallToolRequest, in foldersInput) (*mcp.CallToolResult, foldersOutput, error) {
	folders, err := s.svc.Folders()
	if err != nil {
		return s.errResult("email_folders", err), foldersOutput{}, nil
	}
	result := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: strings.Join(folders, "\n")}},
	}
	return result, foldersOutput{Folders: folders}, nil
}

func (s *Server) list(ctx context.Context, req *mcp.CallToolRequest, in listInput) (*mcp.CallToolResult, listOutput, error) {
	msgs, err := s.svc.List(s.folder(in.Folder), s.count(in.Count))
	if err != nil {
		return s.errResult("email_list", err), listOutput{}, nil
	}
	return nil, listOutput{Messages: msgs}, nil
}

func (s *Server) read(ctx context.Context, req *mcp.CallToolRequest, in readInput) (*mcp.CallToolResult, message.Message, error) {
	msg, err := s.svc.Read(s.folder(in.Folder), in.UID)
	if err != nil {
		return s.errResult("email_read", err), message.Message{}, nil
	}
	return nil, *msg, nil
}

func (s *Server) search(ctx context.Context, req *mcp.CallToolRequest, in searchInput) (*mcp.CallToolResult, listOutput, error) {
	msgs, err := s.svc.Search(s.folder(in.Folder), in.Query, s.count(in.Count))
	if err != nil {
		return s.errResult("email_search", err), listOutput{}, nil
	}
	return nil, listOutput{Messages: msgs}, nil
}

func (s *Server) send(ctx context.Context, req *mcp.CallToolRequest, in sendInput) (*mcp.CallToolResult, textOutput, error) {
	result, err := s.svc.Send(in.To, in.Cc, in.Bcc, in.Subject, in.Body, in.HTMLBody)
	if err != nil {
		return s.errResult("email_send", err), textOutput{}, nil
	}
	return nil, textOutput{Result: result}, nil
}

func (s *Server) reply(ctx context.Context, req *mcp.CallToolRequest, in replyInput) (*mcp.CallToolResult, textOutput, error) {
	result, err := s.svc.Reply(s.folder(in.Folder), in.UID, in.Body, in.HTMLBody, in.ReplyAll)
	if err != nil {
		return s.errResult("email_reply", err), textOutput{}, nil
	}
	return nil, textOutput{Result: result}, nil
}

func (s *Server) delete(ctx context.Context, req *mcp.CallToolRequest, in deleteInput) (*mcp.CallToolResult, textOutput, error) {
	result, err := s.svc.Delete(s.folder(in.Folder), in.UID)
	if err != nil {
		return s.errResult("email_delete", err), textOutput{}, nil
	}
	return nil, textOutput{Result: result}, nil
}

// errResult converts an operation failure into a tool error result so
// the client sees the message instead of a protocol-level failure.
func (s *Server) errResult(tool string, err error) *mcp.CallToolResult {
	s.logger.Error("tool call failed", "tool", tool, "error", err)
	text := err.Error()
	if errors.Is(err, service.ErrNotFound) {
		text = fmt.Sprintf("message not found: %v", err)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
