package app

import (
	"github.com/jwulff/voicememo/internal/export"
	"github.com/jwulff/voicememo/internal/memo"
	"github.com/jwulff/voicememo/internal/recorder"
)

// RecordingStartedMsg is sent when the recorder has opened the microphone.
type RecordingStartedMsg struct {
	Events <-chan recorder.Event
}

// RecordingStartErrorMsg is sent when the recorder could not start.
type RecordingStartErrorMsg struct {
	Err error
}

// RecorderEventMsg wraps a level or stop event from the running take.
type RecorderEventMsg struct {
	Event  recorder.Event
	events <-chan recorder.Event
}

// recorderClosedMsg is sent when a take's event channel has been drained.
type recorderClosedMsg struct {
	events <-chan recorder.Event
}

// RecordingCapturedMsg carries a finished recording ready to be added.
type RecordingCapturedMsg struct {
	Recording memo.Recording
}

// RecordingFailedMsg is sent when a take could not be turned into a recording.
type RecordingFailedMsg struct {
	Err error
}

// TranscriptReadyMsg carries the transcription result for a recording.
type TranscriptReadyMsg struct {
	ID   string
	Text string
}

// TranscriptFailedMsg is sent when transcription failed. The transcript stays
// pending.
type TranscriptFailedMsg struct {
	ID  string
	Err error
}

// ChatReplyMsg carries the assistant's answer for a recording.
type ChatReplyMsg struct {
	ID      string
	Message memo.ChatMessage
}

// ChatFailedMsg is sent when the assistant request failed.
type ChatFailedMsg struct {
	ID  string
	Err error
}

// ExportDoneMsg carries the files written by an export.
type ExportDoneMsg struct {
	Result export.Result
}

// ExportFailedMsg is sent when an export failed.
type ExportFailedMsg struct {
	Err error
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}
