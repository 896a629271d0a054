package testsupport

import (
	"context"
	"testing"

	"trailgrab/internal/config"
	"trailgrab/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewMediaItem inserts a media item for tests using the provided store.
func NewMediaItem(t testing.TB, st *store.Store, title string, year int) *store.MediaItem {
	t.Helper()

	item, err := st.AddMedia(context.Background(), &store.MediaItem{
		Title:   title,
		Year:    year,
		IsMovie: true,
	})
	if err != nil {
		t.Fatalf("store.AddMedia: %v", err)
	}
	return item
}
