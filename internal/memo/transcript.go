package memo

// Transcript is either pending or available with text. The zero value is
// pending.
type Transcript struct {
	text      string
	available bool
}

// PendingTranscript returns a transcript that has not been produced yet.
func PendingTranscript() Transcript {
	return Transcript{}
}

// AvailableTranscript returns a transcript holding text. Empty text is still
// available: the recording was transcribed and contained no speech.
func AvailableTranscript(text string) Transcript {
	return Transcript{text: text, available: true}
}

// Text returns the transcript text and whether it is available.
func (t Transcript) Text() (string, bool) {
	return t.text, t.available
}

// IsPending reports whether no transcript is available yet.
func (t Transcript) IsPending() bool {
	return !t.available
}

func (t Transcript) String() string {
	if !t.available {
		return "<pending>"
	}
	return t.text
}
