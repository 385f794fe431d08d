// Package store holds the session's ordered recordings and the current
// selection. It is the only stateful authority in voicememo.
//
// Every mutation rebuilds the ordered slice and, when the target is selected,
// the selection's cached copy from the same replaced value. Readers never see a
// partially applied update.
package store

import (
	"slices"
	"sync"

	"github.com/jwulff/voicememo/internal/memo"
)

// Store is the session state container. Writes are expected from a single
// goroutine (the TUI update loop); the lock lets other goroutines read.
type Store struct {
	mu         sync.RWMutex
	recordings []memo.Recording
	selected   *memo.Recording
}

// New returns an empty store with no selection.
func New() *Store {
	return &Store{}
}

// AddRecording prepends r and selects it.
func (s *Store) AddRecording(r memo.Recording) {
	r.ChatHistory = slices.Clone(r.ChatHistory)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]memo.Recording, 0, len(s.recordings)+1)
	next = append(next, r)
	next = append(next, s.recordings...)
	s.recordings = next

	sel := r
	s.selected = &sel
}

// SelectRecording selects the recording with id. An unknown id clears the
// selection.
func (s *Store) SelectRecording(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.selected = nil
		return
	}
	sel := s.recordings[i]
	s.selected = &sel
}

// CurrentSelection returns the selected recording, if any.
func (s *Store) CurrentSelection() (memo.Recording, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == nil {
		return memo.Recording{}, false
	}
	return *s.selected, true
}

// AllRecordings returns the recordings, most recent first.
func (s *Store) AllRecordings() []memo.Recording {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.recordings)
}

// Recording looks up one recording by id.
func (s *Store) Recording(id string) (memo.Recording, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return memo.Recording{}, false
	}
	return s.recordings[i], true
}

// Len returns the number of recordings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recordings)
}

// UpdateTranscript marks the transcript of recording id as available with
// text. An unknown id is ignored.
func (s *Store) UpdateTranscript(id, text string) {
	s.replace(id, func(r *memo.Recording) {
		r.Transcript = memo.AvailableTranscript(text)
	})
}

// UpdateChatHistory replaces the whole chat history of recording id. There is
// no append operation: callers pass the previous history plus any new
// messages. An unknown id is ignored.
func (s *Store) UpdateChatHistory(id string, history []memo.ChatMessage) {
	history = slices.Clone(history)
	s.replace(id, func(r *memo.Recording) {
		r.ChatHistory = history
	})
}

// replace rebuilds the ordered slice with one element changed by apply and
// resyncs the selection when it points at that element.
func (s *Store) replace(id string, apply func(*memo.Recording)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}

	updated := s.recordings[i]
	apply(&updated)

	next := slices.Clone(s.recordings)
	next[i] = updated
	s.recordings = next

	if s.selected != nil && s.selected.ID == id {
		sel := updated
		s.selected = &sel
	}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.recordings, func(r memo.Recording) bool {
		return r.ID == id
	})
}
