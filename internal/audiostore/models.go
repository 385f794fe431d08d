// Package audiostore keeps recorded audio blobs in SQLite for the lifetime of
// the session.
package audiostore

import "time"

// Blob is one stored audio clip.
type Blob struct {
	Handle    string
	MimeType  string
	Data      []byte
	CreatedAt time.Time
}

// Info is blob metadata without the payload.
type Info struct {
	Handle    string
	MimeType  string
	Size      int
	CreatedAt time.Time
}
