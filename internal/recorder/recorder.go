package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jwulff/voicememo/internal/audio"
)

var (
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

// Source is a running PCM stream. Chunks must be closed after Stop.
type Source interface {
	Chunks() <-chan []byte
	Stop() error
}

// OpenFunc starts a new Source.
type OpenFunc func(ctx context.Context) (Source, error)

// PulseOpener opens the configured Pulse input for each take.
func PulseOpener(input, fallback string) OpenFunc {
	return func(ctx context.Context) (Source, error) {
		device, err := audio.SelectDevice(ctx, input, fallback)
		if err != nil {
			return nil, err
		}
		capture, err := audio.StartCapture(ctx, device)
		if err != nil {
			return nil, err
		}
		return capture, nil
	}
}

// Recorder runs at most one take at a time.
type Recorder struct {
	open       OpenFunc
	sampleRate int
	now        func() time.Time

	mu     sync.Mutex
	active *take
}

type take struct {
	source    Source
	startedAt time.Time
	pcm       []byte
	done      chan struct{}
	cancel    context.CancelFunc
}

// New returns a Recorder that opens sources with open.
func New(open OpenFunc, sampleRate int) *Recorder {
	return &Recorder{open: open, sampleRate: sampleRate, now: time.Now}
}

// Recording reports whether a take is running.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Start begins a take. The returned channel carries level events and is closed
// after a final EventStopped once the take ends.
func (r *Recorder) Start(ctx context.Context) (<-chan Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return nil, ErrAlreadyRecording
	}

	takeCtx, cancel := context.WithCancel(ctx)
	src, err := r.open(takeCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open audio source: %w", err)
	}

	t := &take{
		source:    src,
		startedAt: r.now(),
		done:      make(chan struct{}),
		cancel:    cancel,
	}
	r.active = t

	events := make(chan Event, 16)
	go r.drain(t, events)
	return events, nil
}

// drain collects PCM until the source closes its chunk channel.
func (r *Recorder) drain(t *take, events chan<- Event) {
	defer close(events)
	defer close(t.done)

	for chunk := range t.source.Chunks() {
		t.pcm = append(t.pcm, chunk...)
		ev := Event{
			Kind:    EventLevel,
			Level:   audio.Level(chunk),
			Elapsed: audio.PCMDuration(t.pcm, r.sampleRate),
		}
		// Level events are advisory; drop them rather than stall capture.
		select {
		case events <- ev:
		default:
		}
	}

	select {
	case events <- Event{Kind: EventStopped, Elapsed: audio.PCMDuration(t.pcm, r.sampleRate)}:
	default:
	}
}

// Stop ends the running take and returns what was captured.
func (r *Recorder) Stop() (Take, error) {
	r.mu.Lock()
	t := r.active
	r.active = nil
	r.mu.Unlock()

	if t == nil {
		return Take{}, ErrNotRecording
	}

	stopErr := t.source.Stop()
	<-t.done
	t.cancel()

	result := Take{
		PCM:        t.pcm,
		SampleRate: r.sampleRate,
		StartedAt:  t.startedAt,
		Duration:   audio.PCMDuration(t.pcm, r.sampleRate),
	}
	if stopErr != nil {
		return result, fmt.Errorf("stop audio source: %w", stopErr)
	}
	return result, nil
}
