// Package memo defines the recording, transcript, and chat types shared by the
// store, the TUI, and the collaborators that produce them.
package memo

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatMessage is one turn in a recording's chat history.
type ChatMessage struct {
	ID        string
	Sender    Sender
	Text      string
	Timestamp time.Time
}

// Recording is a unit of captured audio plus its transcript and chat history.
type Recording struct {
	ID              string
	Name            string
	AudioHandle     string // key into the audio blob store
	AudioURL        string // playable reference, blob:<handle>
	Transcript      Transcript
	ChatHistory     []ChatMessage
	CreatedAt       time.Time
	DurationSeconds float64
}

// NewRecording builds a recording with a fresh ID, a pending transcript, and
// an empty chat history.
func NewRecording(name, audioHandle string, createdAt time.Time, duration time.Duration) Recording {
	return Recording{
		ID:              uuid.NewString(),
		Name:            name,
		AudioHandle:     audioHandle,
		AudioURL:        BlobURL(audioHandle),
		Transcript:      PendingTranscript(),
		CreatedAt:       createdAt,
		DurationSeconds: duration.Seconds(),
	}
}

// NewChatMessage builds a chat message with a fresh ID.
func NewChatMessage(sender Sender, text string, ts time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: ts,
	}
}

// BlobURL returns the playable reference for an audio handle.
func BlobURL(handle string) string {
	return "blob:" + handle
}

// Duration returns the recording length as a time.Duration.
func (r Recording) Duration() time.Duration {
	return time.Duration(r.DurationSeconds * float64(time.Second))
}
