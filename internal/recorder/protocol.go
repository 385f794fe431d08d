// Package recorder turns microphone capture into voice memo recordings. A
// Recorder runs one take at a time and streams level events while it runs; a
// Factory turns a finished take into a memo.Recording.
package recorder

import "time"

// Event kinds streamed during a take.
const (
	EventLevel   = "level"
	EventStopped = "stopped"
)

// Event is streamed to the UI while a take is running.
type Event struct {
	Kind    string
	Level   float32
	Elapsed time.Duration
}

// Take is the raw result of one recording session.
type Take struct {
	PCM        []byte
	SampleRate int
	StartedAt  time.Time
	Duration   time.Duration
}
