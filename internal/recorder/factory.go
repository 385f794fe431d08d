package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwulff/voicememo/internal/audio"
	"github.com/jwulff/voicememo/internal/memo"
)

// ErrEmptyTake is returned when a take captured no audio.
var ErrEmptyTake = errors.New("recording captured no audio")

// BlobPutter stores encoded audio and returns its handle.
type BlobPutter interface {
	Put(ctx context.Context, mimeType string, data []byte) (string, error)
}

// Factory builds recordings from finished takes.
type Factory struct {
	blobs BlobPutter
}

// NewFactory returns a Factory that stores audio in blobs.
func NewFactory(blobs BlobPutter) *Factory {
	return &Factory{blobs: blobs}
}

// Finalize encodes the take as WAV, stores it, and returns the new recording
// with a pending transcript.
func (f *Factory) Finalize(ctx context.Context, t Take) (memo.Recording, error) {
	if len(t.PCM) == 0 {
		return memo.Recording{}, ErrEmptyTake
	}

	wav := audio.EncodeWAV(t.PCM, t.SampleRate)
	handle, err := f.blobs.Put(ctx, "audio/wav", wav)
	if err != nil {
		return memo.Recording{}, fmt.Errorf("store audio: %w", err)
	}

	return memo.NewRecording(RecordingName(t.StartedAt), handle, t.StartedAt, t.Duration), nil
}

// RecordingName is the display name given to a new recording.
func RecordingName(startedAt time.Time) string {
	return "Recording " + startedAt.Format("2006-01-02 15:04:05")
}
