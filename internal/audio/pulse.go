// Package audio captures microphone PCM from PulseAudio and encodes it.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const (
	// SampleRate is the capture rate for every take, 16 kHz mono s16le.
	SampleRate = 16000

	chunkSizeBytes = 3200 // 100ms @ 16kHz mono s16
	appName        = "voicememo"
)

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	Available   bool
	Muted       bool
	Default     bool
}

// ListDevices returns the Pulse input sources.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName(appName))
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}

	var infos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &infos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          info.SourceName,
			Description: info.Device,
			Available:   portAvailable(info),
			Muted:       info.Mute,
			Default:     info.SourceName == defaultSource.ID(),
		})
	}
	return devices, nil
}

// SelectDevice resolves the input and fallback preferences against the live
// device list.
func SelectDevice(ctx context.Context, input, fallback string) (Device, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Device{}, err
	}
	return SelectFromDevices(devices, input, fallback)
}

// SelectFromDevices picks the preferred input, else the fallback, else the
// default source. "default" or an empty preference means the default source.
func SelectFromDevices(devices []Device, input, fallback string) (Device, error) {
	if len(devices) == 0 {
		return Device{}, errors.New("no audio input devices found")
	}

	find := func(term string) *Device {
		term = strings.TrimSpace(strings.ToLower(term))
		for i := range devices {
			if term == "" || term == "default" {
				if devices[i].Default {
					return &devices[i]
				}
				continue
			}
			if deviceMatches(devices[i], term) {
				return &devices[i]
			}
		}
		return nil
	}

	usable := func(d *Device) bool { return d != nil && d.Available && !d.Muted }

	primary := find(input)
	if usable(primary) {
		return *primary, nil
	}
	if fb := find(fallback); usable(fb) {
		return *fb, nil
	}
	if primary == nil {
		return Device{}, fmt.Errorf("audio input %q did not match any device", input)
	}
	if primary.Muted {
		return Device{}, fmt.Errorf("audio input %q is muted and no usable fallback", primary.ID)
	}
	return Device{}, fmt.Errorf("audio input %q is unavailable and no usable fallback", primary.ID)
}

func deviceMatches(d Device, term string) bool {
	return strings.Contains(strings.ToLower(d.ID), term) ||
		strings.Contains(strings.ToLower(d.Description), term)
}

// Capture streams PCM chunks from one Pulse source.
type Capture struct {
	client *pulse.Client
	stream *pulse.RecordStream

	chunks chan []byte
	stopCh chan struct{}

	mu       sync.Mutex
	pending  []byte
	stopped  bool
	inflight sync.WaitGroup
}

// StartCapture opens a 16 kHz mono record stream on device.
func StartCapture(ctx context.Context, device Device) (*Capture, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName(appName),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}

	source, err := client.SourceByID(device.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", device.ID, err)
	}

	c := &Capture{
		client: client,
		chunks: make(chan []byte, 64),
		stopCh: make(chan struct{}),
	}

	writer := pulse.NewWriter(writerFunc(c.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(chunkSizeBytes),
		pulse.RecordMediaName("voice memo"),
	)
	if err != nil {
		_ = c.Stop()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}
	c.stream = stream
	stream.Start()

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop()
		case <-c.stopCh:
		}
	}()

	return c, nil
}

// Chunks returns the PCM stream. It is closed by Stop.
func (c *Capture) Chunks() <-chan []byte {
	return c.chunks
}

// Stop halts the stream, flushes residual PCM, and closes Chunks. Safe to call
// more than once.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	close(c.stopCh)
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}

	c.inflight.Wait()

	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(pending) > 0 {
		select {
		case c.chunks <- pending:
		default:
		}
	}
	close(c.chunks)
	return nil
}

func (c *Capture) onPCM(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return 0, io.EOF
	}
	c.inflight.Add(1)
	c.pending = append(c.pending, buf...)
	var ready [][]byte
	for len(c.pending) >= chunkSizeBytes {
		chunk := make([]byte, chunkSizeBytes)
		copy(chunk, c.pending[:chunkSizeBytes])
		c.pending = c.pending[chunkSizeBytes:]
		ready = append(ready, chunk)
	}
	c.mu.Unlock()
	defer c.inflight.Done()

	for _, chunk := range ready {
		select {
		case <-c.stopCh:
			return 0, io.EOF
		case c.chunks <- chunk:
		}
	}
	return len(buf), nil
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}

// portAvailable reports whether the active port is plugged in. PulseAudio
// availability values: unknown=0, no=1, yes=2.
func portAvailable(info *pulseproto.GetSourceInfoReply) bool {
	if len(info.Ports) == 0 {
		return true
	}
	for _, port := range info.Ports {
		if port.Name == info.ActivePortName {
			return port.Available != 1
		}
	}
	return true
}
