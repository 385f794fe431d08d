// Package assistant talks to an OpenAI-compatible API to transcribe recordings
// and answer questions about them.
package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/jwulff/voicememo/internal/memo"
)

var (
	// ErrTranscriptPending is returned by Reply when there is nothing to
	// discuss yet.
	ErrTranscriptPending = errors.New("transcript not available yet")
	// ErrEmptyReply is returned when the API answered with no content.
	ErrEmptyReply = errors.New("empty response from assistant")
)

// Options configures a Client.
type Options struct {
	APIKey          string
	BaseURL         string // empty means the OpenAI default
	ChatModel       string
	TranscribeModel string
	SystemPrompt    string
	HTTPClient      *http.Client
}

// Client wraps the go-openai client with voicememo's prompts.
type Client struct {
	api             *openai.Client
	chatModel       string
	transcribeModel string
	systemPrompt    string
	now             func() time.Time
}

// New builds a Client from opts.
func New(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	return &Client{
		api:             openai.NewClientWithConfig(cfg),
		chatModel:       opts.ChatModel,
		transcribeModel: opts.TranscribeModel,
		systemPrompt:    opts.SystemPrompt,
		now:             time.Now,
	}
}

// ChatModel returns the model used for replies.
func (c *Client) ChatModel() string {
	return c.chatModel
}

// Transcribe sends WAV audio to the transcription endpoint.
func (c *Client) Transcribe(ctx context.Context, filename string, wav []byte) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcribeModel,
		FilePath: filename,
		Reader:   bytes.NewReader(wav),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", filename, err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Reply asks the chat model to answer the last turn of rec's history. The
// returned message is not added to rec; the caller owns the history.
func (c *Client) Reply(ctx context.Context, rec memo.Recording) (memo.ChatMessage, error) {
	messages, err := c.buildMessages(rec)
	if err != nil {
		return memo.ChatMessage{}, err
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.chatModel,
		Messages: messages,
	})
	if err != nil {
		return memo.ChatMessage{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return memo.ChatMessage{}, ErrEmptyReply
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return memo.ChatMessage{}, ErrEmptyReply
	}

	return memo.NewChatMessage(memo.SenderAssistant, text, c.now()), nil
}

// buildMessages puts the transcript in the system prompt and maps the chat
// history onto user/assistant roles.
func (c *Client) buildMessages(rec memo.Recording) ([]openai.ChatCompletionMessage, error) {
	transcript, ok := rec.Transcript.Text()
	if !ok {
		return nil, ErrTranscriptPending
	}

	var system strings.Builder
	system.WriteString(c.systemPrompt)
	fmt.Fprintf(&system, "\n\nRecording: %s (%s, %.0f seconds)\n", rec.Name,
		rec.CreatedAt.Format("2006-01-02 15:04"), rec.DurationSeconds)
	system.WriteString("Transcript:\n")
	if strings.TrimSpace(transcript) == "" {
		system.WriteString("(no speech detected)")
	} else {
		system.WriteString(transcript)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(rec.ChatHistory)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system.String(),
	})
	for _, m := range rec.ChatHistory {
		role := openai.ChatMessageRoleUser
		if m.Sender == memo.SenderAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	return messages, nil
}
