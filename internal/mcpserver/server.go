// Package mcpserver exposes the live session's recordings as read-only MCP
// tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jwulff/voicememo/internal/logging"
	"github.com/jwulff/voicememo/internal/memo"
)

// Reader is the read side of the session store.
type Reader interface {
	AllRecordings() []memo.Recording
	Recording(id string) (memo.Recording, bool)
	CurrentSelection() (memo.Recording, bool)
}

// Server serves the tools over streamable HTTP.
type Server struct {
	store  Reader
	mcp    *server.MCPServer
	http   *server.StreamableHTTPServer
	logger *slog.Logger
}

// New registers the tools against store.
func New(store Reader, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		store:  store,
		mcp:    server.NewMCPServer("voicememo", version, server.WithToolCapabilities(false)),
		logger: logger,
	}

	s.mcp.AddTool(mcp.NewTool("list_recordings",
		mcp.WithDescription("List the recordings captured in this session, newest first."),
	), s.handleListRecordings)

	s.mcp.AddTool(mcp.NewTool("get_recording",
		mcp.WithDescription("Get a recording's metadata, transcript, and chat history."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Recording ID from list_recordings")),
	), s.handleGetRecording)

	s.mcp.AddTool(mcp.NewTool("get_selection",
		mcp.WithDescription("Get the recording currently selected in the TUI."),
	), s.handleGetSelection)

	s.http = server.NewStreamableHTTPServer(s.mcp)
	return s
}

// Start listens on addr and blocks until Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("mcp server listening", "addr", addr)
	err := s.http.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type summaryView struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	CreatedAt       string  `json:"created_at"`
	DurationSeconds float64 `json:"duration_seconds"`
	Transcribed     bool    `json:"transcribed"`
	Messages        int     `json:"messages"`
}

type messageView struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type recordingView struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	CreatedAt       string        `json:"created_at"`
	DurationSeconds float64       `json:"duration_seconds"`
	AudioURL        string        `json:"audio_url"`
	Transcript      *string       `json:"transcript"`
	Chat            []messageView `json:"chat"`
}

func summarize(r memo.Recording) summaryView {
	return summaryView{
		ID:              r.ID,
		Name:            r.Name,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		DurationSeconds: r.DurationSeconds,
		Transcribed:     !r.Transcript.IsPending(),
		Messages:        len(r.ChatHistory),
	}
}

func detail(r memo.Recording) recordingView {
	v := recordingView{
		ID:              r.ID,
		Name:            r.Name,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		DurationSeconds: r.DurationSeconds,
		AudioURL:        r.AudioURL,
		Chat:            make([]messageView, 0, len(r.ChatHistory)),
	}
	if text, ok := r.Transcript.Text(); ok {
		v.Transcript = &text
	}
	for _, m := range r.ChatHistory {
		v.Chat = append(v.Chat, messageView{
			Sender:    string(m.Sender),
			Text:      m.Text,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return v
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListRecordings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs := s.store.AllRecordings()
	out := make([]summaryView, 0, len(recs))
	for _, r := range recs {
		out = append(out, summarize(r))
	}
	return jsonResult(out)
}

func (s *Server) handleGetRecording(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, ok := s.store.Recording(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("recording %q not found", id)), nil
	}
	return jsonResult(detail(r))
}

func (s *Server) handleGetSelection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, ok := s.store.CurrentSelection()
	if !ok {
		return mcp.NewToolResultText("null"), nil
	}
	return jsonResult(detail(r))
}
