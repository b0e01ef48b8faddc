// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the scribe document for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/scribe/internal/format"
	"github.com/starford/scribe/internal/noteservice"
)

const (
	documentURI = "scribe://document"
	contractURI = "scribe://format"
)

// Server wraps the MCP server with scribe tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all scribe tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Scribe",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full Markdown notes document with its checksum and outline."),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("replace_document",
		mcp.WithDescription("Replace the whole notes document. The write is debounced; "+
			"call flush_document to persist immediately. Read the contract first via "+
			"the scribe://format resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("New Markdown content")),
		mcp.WithString("if_match", mcp.Description("Checksum the current text must have; the replace is refused otherwise")),
	), s.replaceDocument)

	s.mcp.AddTool(mcp.NewTool("append_document",
		mcp.WithDescription("Append Markdown to the end of the document on its own line."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Markdown to append")),
	), s.appendDocument)

	s.mcp.AddTool(mcp.NewTool("format_document",
		mcp.WithDescription("Apply a formatting action to a byte range of the document."),
		mcp.WithString("action", mcp.Required(), mcp.Enum(format.Actions...), mcp.Description("Formatting action")),
		mcp.WithNumber("start", mcp.Description("Selection start (byte offset)")),
		mcp.WithNumber("end", mcp.Description("Selection end (byte offset)")),
		mcp.WithString("url", mcp.Description("Target for link and image")),
	), s.formatDocument)

	s.mcp.AddTool(mcp.NewTool("flush_document",
		mcp.WithDescription("Write the document to disk now."),
	), s.flushDocument)

	s.mcp.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Engine state: profile, view mode, dirty flag, pending saves, retries, outline."),
	), s.getStatus)

	s.mcp.AddTool(mcp.NewTool("set_view",
		mcp.WithDescription("Switch every attached editor between edit and preview."),
		mcp.WithString("mode", mcp.Required(), mcp.Enum("edit", "preview")),
	), s.setView)

	s.mcp.AddTool(mcp.NewTool("reload_styles",
		mcp.WithDescription("Re-read markdown_style.json and notes_style.css from the profile."),
	), s.reloadStyles)

	s.mcp.AddTool(mcp.NewTool("recent_attempts",
		mcp.WithDescription("Recent save attempts for the active profile, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum entries (default 20)")),
	), s.recentAttempts)

	s.mcp.AddResource(
		mcp.NewResource(documentURI, "Notes Document",
			mcp.WithResourceDescription("The current notes document, including unsaved edits."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentResource,
	)
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Document Contract",
			mcp.WithResourceDescription("How the document is saved and which formatting actions exist."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.svc.Document(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc)
}

func (s *Server) replaceDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.svc.Replace(ctx, content, req.GetString("if_match", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("replaced: %d bytes, checksum %s", st.Bytes, st.Checksum)), nil
}

func (s *Server) appendDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.svc.Append(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("appended: %d bytes, checksum %s", st.Bytes, st.Checksum)), nil
}

func (s *Server) formatDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sel := format.Selection{Start: req.GetInt("start", 0), End: req.GetInt("end", 0)}
	res, err := s.svc.Format(ctx, action, sel, req.GetString("url", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"text":  res.Text,
		"start": res.Selection.Start,
		"end":   res.Selection.End,
	})
}

func (s *Server) flushDocument(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.svc.Flush(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("flushed"), nil
}

func (s *Server) getStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

func (s *Server) setView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := req.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.svc.SetView(ctx, mode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("view: " + st.Mode.String()), nil
}

func (s *Server) reloadStyles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	styles, err := s.svc.ReloadStyles(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("styles " + styles.Outcome), nil
}

func (s *Server) recentAttempts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	attempts, err := s.svc.Attempts(ctx, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(attempts) == 0 {
		return mcp.NewToolResultText("no save attempts recorded"), nil
	}
	return jsonResult(attempts)
}

func (s *Server) readDocumentResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	doc, err := s.svc.Document(ctx)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      documentURI,
			MIMEType: "text/markdown",
			Text:     doc.Content,
		},
	}, nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     FormatContract,
		},
	}, nil
}
