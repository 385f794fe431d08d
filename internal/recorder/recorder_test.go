package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwulff/voicememo/internal/audio"
)

// fakeSource feeds chunks pushed by the test and closes on Stop.
type fakeSource struct {
	chunks  chan []byte
	once    sync.Once
	stopErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{chunks: make(chan []byte, 16)}
}

func (f *fakeSource) Chunks() <-chan []byte { return f.chunks }

func (f *fakeSource) Stop() error {
	f.once.Do(func() { close(f.chunks) })
	return f.stopErr
}

func openerFor(src *fakeSource) OpenFunc {
	return func(context.Context) (Source, error) { return src, nil }
}

func TestStartStopCollectsPCM(t *testing.T) {
	src := newFakeSource()
	rec := New(openerFor(src), audio.SampleRate)
	started := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return started }

	events, err := rec.Start(context.Background())
	require.NoError(t, err)
	require.True(t, rec.Recording())

	src.chunks <- make([]byte, 16000)
	src.chunks <- make([]byte, 16000)

	ev := <-events
	require.Equal(t, EventLevel, ev.Kind)

	take, err := rec.Stop()
	require.NoError(t, err)
	require.False(t, rec.Recording())
	require.Len(t, take.PCM, 32000)
	require.Equal(t, audio.SampleRate, take.SampleRate)
	require.Equal(t, started, take.StartedAt)
	require.Equal(t, time.Second, take.Duration)

	var last Event
	for ev := range events {
		last = ev
	}
	require.Equal(t, EventStopped, last.Kind)
	require.Equal(t, time.Second, last.Elapsed)
}

func TestStartTwiceFails(t *testing.T) {
	rec := New(openerFor(newFakeSource()), audio.SampleRate)

	_, err := rec.Start(context.Background())
	require.NoError(t, err)

	_, err = rec.Start(context.Background())
	require.ErrorIs(t, err, ErrAlreadyRecording)

	_, err = rec.Stop()
	require.NoError(t, err)
}

func TestStopWithoutStart(t *testing.T) {
	rec := New(openerFor(newFakeSource()), audio.SampleRate)

	_, err := rec.Stop()
	require.ErrorIs(t, err, ErrNotRecording)
}

func TestStartOpenError(t *testing.T) {
	boom := errors.New("no pulse server")
	rec := New(func(context.Context) (Source, error) { return nil, boom }, audio.SampleRate)

	_, err := rec.Start(context.Background())
	require.ErrorIs(t, err, boom)
	require.False(t, rec.Recording())
}

func TestStopReturnsSourceError(t *testing.T) {
	src := newFakeSource()
	src.stopErr = errors.New("stream already closed")
	rec := New(openerFor(src), audio.SampleRate)

	_, err := rec.Start(context.Background())
	require.NoError(t, err)
	src.chunks <- make([]byte, 320)

	take, err := rec.Stop()
	require.Error(t, err)
	require.Contains(t, err.Error(), "stream already closed")
	require.Len(t, take.PCM, 320)
}

func TestRecorderCanRecordAgainAfterStop(t *testing.T) {
	var sources []*fakeSource
	rec := New(func(context.Context) (Source, error) {
		src := newFakeSource()
		sources = append(sources, src)
		return src, nil
	}, audio.SampleRate)

	for i := 0; i < 3; i++ {
		_, err := rec.Start(context.Background())
		require.NoError(t, err)
		_, err = rec.Stop()
		require.NoError(t, err)
	}
	require.Len(t, sources, 3)
}

type memBlobs struct {
	data map[string][]byte
	err  error
}

func (m *memBlobs) Put(_ context.Context, _ string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	handle := "h" + string(rune('0'+len(m.data)))
	m.data[handle] = data
	return handle, nil
}

func TestFactoryFinalize(t *testing.T) {
	blobs := &memBlobs{}
	f := NewFactory(blobs)
	started := time.Date(2026, 10, 19, 14, 3, 22, 0, time.UTC)

	rec, err := f.Finalize(context.Background(), Take{
		PCM:        make([]byte, 64000),
		SampleRate: audio.SampleRate,
		StartedAt:  started,
		Duration:   2 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, "Recording 2026-10-19 14:03:22", rec.Name)
	require.Equal(t, "blob:"+rec.AudioHandle, rec.AudioURL)
	require.Equal(t, started, rec.CreatedAt)
	require.InDelta(t, 2.0, rec.DurationSeconds, 1e-9)
	require.True(t, rec.Transcript.IsPending())

	info, err := audio.ParseWAVHeader(blobs.data[rec.AudioHandle])
	require.NoError(t, err)
	require.Equal(t, 64000, info.DataBytes)
}

func TestFactoryRejectsEmptyTake(t *testing.T) {
	f := NewFactory(&memBlobs{})

	_, err := f.Finalize(context.Background(), Take{SampleRate: audio.SampleRate})
	require.ErrorIs(t, err, ErrEmptyTake)
}

func TestFactoryBlobError(t *testing.T) {
	f := NewFactory(&memBlobs{err: errors.New("disk full")})

	_, err := f.Finalize(context.Background(), Take{PCM: []byte{1, 2}, SampleRate: audio.SampleRate})
	require.Error(t, err)
	require.Contains(t, err.Error(), "store audio")
}
