package memo

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTranscriptZeroValueIsPending(t *testing.T) {
	var tr Transcript
	require.True(t, tr.IsPending())

	text, ok := tr.Text()
	require.False(t, ok)
	require.Empty(t, text)
	require.Equal(t, PendingTranscript(), tr)
}

func TestAvailableTranscript(t *testing.T) {
	tr := AvailableTranscript("hello there")
	require.False(t, tr.IsPending())

	text, ok := tr.Text()
	require.True(t, ok)
	require.Equal(t, "hello there", text)
	require.Equal(t, "hello there", tr.String())
}

func TestAvailableEmptyTranscriptIsNotPending(t *testing.T) {
	tr := AvailableTranscript("")
	require.False(t, tr.IsPending())
	require.NotEqual(t, PendingTranscript(), tr)
}

func TestNewRecording(t *testing.T) {
	created := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	r := NewRecording("Standup", "h-1", created, 2500*time.Millisecond)

	require.NotEmpty(t, r.ID)
	require.Equal(t, "Standup", r.Name)
	require.Equal(t, "h-1", r.AudioHandle)
	require.Equal(t, "blob:h-1", r.AudioURL)
	require.True(t, r.Transcript.IsPending())
	require.Empty(t, r.ChatHistory)
	require.Equal(t, created, r.CreatedAt)
	require.InDelta(t, 2.5, r.DurationSeconds, 1e-9)
	require.Equal(t, 2500*time.Millisecond, r.Duration())
}

func TestNewRecordingIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		r := NewRecording("r", "h", time.Now(), time.Second)
		require.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestNewChatMessage(t *testing.T) {
	ts := time.Now()
	msg := NewChatMessage(SenderUser, "what was decided?", ts)

	require.NotEmpty(t, msg.ID)
	require.Equal(t, SenderUser, msg.Sender)
	require.Equal(t, "what was decided?", msg.Text)
	require.Equal(t, ts, msg.Timestamp)
	require.False(t, strings.Contains(msg.ID, " "))
}
