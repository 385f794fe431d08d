// Package export writes a recording's audio, transcript, and chat log to disk.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/jwulff/voicememo/internal/audiostore"
	"github.com/jwulff/voicememo/internal/memo"
)

// BlobGetter fetches stored audio by handle.
type BlobGetter interface {
	Get(ctx context.Context, handle string) (audiostore.Blob, error)
}

// Result lists the files an export produced.
type Result struct {
	Dir            string
	AudioPath      string
	TranscriptPath string
}

// Exporter writes recordings under Dir.
type Exporter struct {
	dir   string
	blobs BlobGetter
	model string
	now   func() time.Time
}

// New returns an Exporter rooted at dir. model is recorded in the markdown
// metadata when non-empty.
func New(dir string, blobs BlobGetter, model string) *Exporter {
	return &Exporter{dir: dir, blobs: blobs, model: model, now: time.Now}
}

// Dir returns the export root.
func (e *Exporter) Dir() string {
	return e.dir
}

// Export writes <dir>/<slug>/recording.wav and transcript.md. Existing files
// for the same recording are overwritten.
func (e *Exporter) Export(ctx context.Context, rec memo.Recording) (Result, error) {
	if e.dir == "" {
		return Result{}, errors.New("export directory not configured")
	}

	blob, err := e.blobs.Get(ctx, rec.AudioHandle)
	if err != nil {
		return Result{}, fmt.Errorf("load audio for %s: %w", rec.Name, err)
	}

	dir := filepath.Join(e.dir, Slug(rec))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create export dir: %w", err)
	}

	res := Result{
		Dir:            dir,
		AudioPath:      filepath.Join(dir, "recording.wav"),
		TranscriptPath: filepath.Join(dir, "transcript.md"),
	}
	if err := os.WriteFile(res.AudioPath, blob.Data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write audio: %w", err)
	}

	md := RenderMarkdown(rec, Metadata{
		Model:     e.model,
		Generated: e.now().Format(time.RFC3339),
	})
	if err := os.WriteFile(res.TranscriptPath, []byte(md), 0o644); err != nil {
		return Result{}, fmt.Errorf("write transcript: %w", err)
	}
	return res, nil
}

// Slug turns a recording into a directory name: its lowercased name with
// runs of other characters collapsed to '-', plus the first eight characters
// of its ID.
func Slug(rec memo.Recording) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(rec.Name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimRight(b.String(), "-")
	if base == "" {
		base = "recording"
	}

	id := rec.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return base
	}
	return base + "-" + id
}
