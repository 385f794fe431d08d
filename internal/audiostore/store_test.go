package audiostore

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	data := []byte("RIFF....WAVEfmt ")
	handle, err := store.Put(ctx, "audio/wav", data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if handle == "" {
		t.Fatal("handle should not be empty")
	}

	blob, err := store.Get(ctx, handle)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if blob.Handle != handle {
		t.Errorf("handle = %q, want %q", blob.Handle, handle)
	}
	if blob.MimeType != "audio/wav" {
		t.Errorf("mimeType = %q", blob.MimeType)
	}
	if !bytes.Equal(blob.Data, data) {
		t.Errorf("data = %q, want %q", blob.Data, data)
	}
}

func TestGetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, _ := store.Put(ctx, "audio/wav", []byte("one"))
	second, _ := store.Put(ctx, "audio/wav", []byte("second"))

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d blobs, want 2", len(infos))
	}
	if infos[0].Handle != second || infos[1].Handle != first {
		t.Errorf("order = %s, %s", infos[0].Handle, infos[1].Handle)
	}
	if infos[0].Size != 6 {
		t.Errorf("size = %d, want 6", infos[0].Size)
	}
	if !infos[1].CreatedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("createdAt = %v", infos[1].CreatedAt)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	handle, _ := store.Put(ctx, "audio/wav", []byte("x"))
	if err := store.Delete(ctx, handle); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, handle); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, handle); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestMemoryStoresAreIsolated(t *testing.T) {
	a := openTestStore(t)
	b := openTestStore(t)
	ctx := context.Background()

	handle, _ := a.Put(ctx, "audio/wav", []byte("only in a"))
	if _, err := b.Get(ctx, handle); !errors.Is(err, ErrNotFound) {
		t.Errorf("store b should not see store a's blob, err = %v", err)
	}
}
