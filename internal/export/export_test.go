package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwulff/voicememo/internal/audiostore"
	"github.com/jwulff/voicememo/internal/memo"
)

func sampleRecording() memo.Recording {
	created := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	r := memo.NewRecording("Recording 2026-10-19 08:30:00", "", created, 95*time.Second)
	r.Transcript = memo.AvailableTranscript("Remember to water the plants.")
	r.ChatHistory = []memo.ChatMessage{
		memo.NewChatMessage(memo.SenderUser, "What should I remember?", created.Add(time.Minute)),
		memo.NewChatMessage(memo.SenderAssistant, "To water the plants.", created.Add(2*time.Minute)),
	}
	return r
}

func TestExportWritesAudioAndMarkdown(t *testing.T) {
	ctx := context.Background()
	blobs, err := audiostore.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	wav := []byte("RIFF....WAVEfmt ")
	handle, err := blobs.Put(ctx, "audio/wav", wav)
	require.NoError(t, err)

	rec := sampleRecording()
	rec.AudioHandle = handle

	dir := t.TempDir()
	exp := New(dir, blobs, "gpt-4o-mini")
	exp.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }

	res, err := exp.Export(ctx, rec)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, Slug(rec)), res.Dir)

	gotAudio, err := os.ReadFile(res.AudioPath)
	require.NoError(t, err)
	require.Equal(t, wav, gotAudio)

	gotMD, err := os.ReadFile(res.TranscriptPath)
	require.NoError(t, err)
	require.Contains(t, string(gotMD), "# Recording 2026-10-19 08:30:00")
	require.Contains(t, string(gotMD), "- Duration: 1m35s")
	require.Contains(t, string(gotMD), "- Model: `gpt-4o-mini`")
	require.Contains(t, string(gotMD), "- Generated: 2026-10-19T09:00:00Z")
	require.Contains(t, string(gotMD), "Remember to water the plants.")
	require.Contains(t, string(gotMD), "**You** [08:31:00]: What should I remember?")
	require.Contains(t, string(gotMD), "**Assistant** [08:32:00]: To water the plants.")
}

func TestExportMissingAudio(t *testing.T) {
	blobs, err := audiostore.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	rec := sampleRecording()
	rec.AudioHandle = "missing"

	_, err = New(t.TempDir(), blobs, "").Export(context.Background(), rec)
	require.ErrorIs(t, err, audiostore.ErrNotFound)
}

func TestExportNoDir(t *testing.T) {
	_, err := New("", nil, "").Export(context.Background(), sampleRecording())
	require.Error(t, err)
}

func TestRenderMarkdownPending(t *testing.T) {
	rec := memo.NewRecording("Quick note", "h", time.Now(), time.Second)

	md := RenderMarkdown(rec, Metadata{})
	require.Contains(t, md, "_No transcript available._")
	require.NotContains(t, md, "## Chat")
	require.NotContains(t, md, "- Model:")
}

func TestSlug(t *testing.T) {
	rec := memo.Recording{ID: "0123456789abcdef", Name: "Recording 2026-10-19 08:30:00"}
	require.Equal(t, "recording-2026-10-19-08-30-00-01234567", Slug(rec))

	rec = memo.Recording{ID: "abc", Name: "  ?? "}
	require.Equal(t, "recording-abc", Slug(rec))

	rec = memo.Recording{Name: "Team Sync!"}
	require.Equal(t, "team-sync", Slug(rec))
}
