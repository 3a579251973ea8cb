// Package toolserver exposes the email list operations as MCP tools.
package toolserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgellow/mailfold/internal/emaillist"
	jsonwriter "github.com/dgellow/mailfold/internal/json"
	"github.com/dgellow/mailfold/internal/log"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	ToolDedupe          = "dedupe_emails"
	ToolFirstWithDomain = "first_with_domain"
	ToolDomainCounts    = "domain_counts"

	// EndpointPath is where the streamable HTTP transport is mounted
	EndpointPath = "/mcp"

	shutdownTimeout = 10 * time.Second
)

// Server serves the list tools over stdio or streamable HTTP
type Server struct {
	name      string
	version   string
	tools     []mcpserver.ServerTool
	mcpServer *mcpserver.MCPServer
}

// New creates a server with every tool registered
func New(name, version string) *Server {
	s := &Server{
		name:    name,
		version: version,
	}

	s.mcpServer = mcpserver.NewMCPServer(name, version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	s.tools = []mcpserver.ServerTool{
		{
			Tool: mcp.NewTool(ToolDedupe,
				mcp.WithDescription("Remove case-insensitive duplicate email addresses, keeping the first occurrence and its original casing. Entries without '@' are dropped."),
				emailsParam(),
			),
			Handler: s.handleDedupe,
		},
		{
			Tool: mcp.NewTool(ToolFirstWithDomain,
				mcp.WithDescription("Return the zero-based index of the first email whose domain (text after the last '@') matches the given domain, ignoring case."),
				emailsParam(),
				mcp.WithString("domain",
					mcp.Required(),
					mcp.Description("Domain to look for, compared case-insensitively"),
				),
			),
			Handler: s.handleFirstWithDomain,
		},
		{
			Tool: mcp.NewTool(ToolDomainCounts,
				mcp.WithDescription("Count email addresses per case-folded domain, sorted by domain."),
				emailsParam(),
			),
			Handler: s.handleDomainCounts,
		},
	}
	s.mcpServer.AddTools(s.tools...)

	return s
}

func emailsParam() mcp.ToolOption {
	return mcp.WithArray("emails",
		mcp.Required(),
		mcp.Description("Email-like strings, in order"),
		mcp.Items(map[string]any{"type": "string"}),
	)
}

// Tools returns the registered tool definitions
func (s *Server) Tools() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		tools = append(tools, t.Tool)
	}
	return tools
}

// MCPServer returns the underlying protocol server
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// ServeStdio speaks MCP over the given streams until ctx is done or in reaches EOF
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	log.LogInfoWithFields("toolserver", "Serving MCP over stdio", map[string]any{
		"name":    s.name,
		"version": s.version,
	})

	stdio := mcpserver.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(stdlog.New(slogWriter{}, "", 0))

	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serving stdio: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler with the MCP endpoint and a health check
func (s *Server) Handler() http.Handler {
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(EndpointPath),
		mcpserver.WithStateLess(true),
	)

	mux := http.NewServeMux()
	mux.Handle(EndpointPath, streamable)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			jsonwriter.WriteMethodNotAllowed(w, "Health check only supports GET")
			return
		}
		_ = jsonwriter.Write(w, map[string]string{"status": "ok", "name": s.name})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		jsonwriter.WriteNotFound(w, "Endpoint not found")
	})
	return mux
}

// ListenAndServe serves streamable HTTP on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.LogInfoWithFields("toolserver", "Serving MCP over streamable HTTP", map[string]any{
			"addr":     addr,
			"endpoint": EndpointPath,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listening on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Logf("Shutting down tool server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) handleDedupe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	emails, err := stringSliceArg(request.GetArguments(), "emails")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := emaillist.Dedupe(emails)

	log.LogDebugWithFields("toolserver", "Tool call", map[string]any{
		"tool":    ToolDedupe,
		"entries": len(emails),
		"unique":  len(result),
	})
	return textResult(result)
}

func (s *Server) handleFirstWithDomain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	emails, err := stringSliceArg(args, "emails")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	domain, err := stringArg(args, "domain")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	idx, found := emaillist.FirstWithDomain(emails, domain)

	log.LogDebugWithFields("toolserver", "Tool call", map[string]any{
		"tool":    ToolFirstWithDomain,
		"entries": len(emails),
		"found":   found,
	})
	return textResult(jsonwriter.FindResult{Index: idx, Found: found})
}

func (s *Server) handleDomainCounts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	emails, err := stringSliceArg(request.GetArguments(), "emails")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := emaillist.DomainCounts(emails)

	log.LogDebugWithFields("toolserver", "Tool call", map[string]any{
		"tool":    ToolDomainCounts,
		"entries": len(emails),
		"domains": len(result),
	})
	return textResult(result)
}

func textResult(v any) (*mcp.CallToolResult, error) {
	text, err := jsonwriter.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}

func stringSliceArg(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", key)
	}

	switch items := v.(type) {
	case []string:
		return items, nil
	case []any:
		out := make([]string, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("argument %q: item %d must be a string", key, i)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("argument %q must be an array of strings", key)
	}
}

// slogWriter forwards transport errors from the stdio server to slog
type slogWriter struct{}

func (slogWriter) Write(p []byte) (int, error) {
	slog.Default().Error(string(trimNewline(p)), "component", "toolserver")
	return len(p), nil
}

func trimNewline(p []byte) []byte {
	if n := len(p); n > 0 && p[n-1] == '\n' {
		return p[:n-1]
	}
	return p
}
